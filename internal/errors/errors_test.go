package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestOpError(t *testing.T) {
	err := &OpError{Op: "update", ID: "a/b", Err: ErrNotFound}
	assert.Equal(t, `could not update "a/b": not found`, err.Error())
	assert.ErrorIs(t, err, ErrNotFound)

	noID := NewOpError("list", "", "boom")
	assert.Equal(t, "could not list: boom", noID.Error())
}

func TestValidationError(t *testing.T) {
	assert.Equal(t, "method: unsupported", ValidationError{Field: "method", Message: "unsupported"}.Error())
	assert.Equal(t, "bad", ValidationError{Message: "bad"}.Error())
}

func TestClassifyError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ClassifyError(nil))
	})

	t.Run("wrapped sentinel", func(t *testing.T) {
		ui := ClassifyError(fmt.Errorf("list: %w", ErrBackendUnavailable))
		require.NotNil(t, ui)
		assert.Equal(t, "Backend Unavailable", ui.Title)
		assert.Equal(t, SeverityError, ui.Severity)
	})

	t.Run("deadline", func(t *testing.T) {
		ui := ClassifyError(context.DeadlineExceeded)
		assert.Equal(t, "Request Timeout", ui.Title)
	})

	t.Run("op error unwraps to sentinel", func(t *testing.T) {
		ui := ClassifyError(&OpError{Op: "read", ID: "x", Err: ErrNotFound})
		assert.Equal(t, "Request Not Found", ui.Title)
	})

	t.Run("op error with plain cause", func(t *testing.T) {
		ui := ClassifyError(NewOpError("create", "x", "disk full"))
		assert.Equal(t, "Operation Failed", ui.Title)
		assert.Equal(t, "disk full", ui.Details)
		assert.Empty(t, ui.Actions, "only unavailable and timeout causes offer retry")
	})

	t.Run("op error wrapping unavailable offers retry", func(t *testing.T) {
		ui := ClassifyError(&OpError{Op: "load", ID: "x", Err: ErrBackendUnavailable})
		require.Len(t, ui.Actions, 1)
		assert.Equal(t, "Retry", ui.Actions[0].Label)
	})

	t.Run("validation", func(t *testing.T) {
		ui := ClassifyError(ValidationError{Field: "database", Message: "unknown database"})
		assert.Equal(t, "Validation Error", ui.Title)
		assert.Equal(t, "unknown database", ui.Message)
	})

	t.Run("already classified", func(t *testing.T) {
		orig := &UIError{Title: "Custom"}
		assert.Same(t, orig, ClassifyError(orig))
	})

	t.Run("fallback", func(t *testing.T) {
		ui := ClassifyError(errors.New("weird"))
		assert.Equal(t, "Unexpected Error", ui.Title)
	})
}

func TestClassifyGRPCError(t *testing.T) {
	t.Run("unavailable offers retry", func(t *testing.T) {
		ui := ClassifyGRPCError(status.Error(codes.Unavailable, "connection refused"))
		assert.Equal(t, "Backend Unavailable", ui.Title)
		require.Len(t, ui.Actions, 1)
		assert.Equal(t, "Retry", ui.Actions[0].Label)
		assert.Contains(t, ui.Details, "connection refused")
	})

	t.Run("unknown code falls back to message", func(t *testing.T) {
		ui := ClassifyGRPCError(status.Error(codes.DataLoss, "gone"))
		assert.Equal(t, "Request Failed", ui.Title)
		assert.Equal(t, "gone", ui.Message)
	})

	t.Run("non status error", func(t *testing.T) {
		ui := ClassifyGRPCError(ErrNotFound)
		assert.Equal(t, "Request Not Found", ui.Title)
	})

	t.Run("rich details", func(t *testing.T) {
		st, err := status.New(codes.InvalidArgument, "bad").WithDetails(&errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{{Field: "name", Description: "required"}},
		})
		require.NoError(t, err)
		ui := ClassifyGRPCError(st.Err())
		assert.Contains(t, ui.Details, "name: required")
	})
}

func TestFromGRPCStatus(t *testing.T) {
	assert.ErrorIs(t, FromGRPCStatus(status.Error(codes.NotFound, "a/b")), ErrNotFound)
	assert.ErrorIs(t, FromGRPCStatus(status.Error(codes.Unavailable, "down")), ErrBackendUnavailable)
	assert.ErrorIs(t, FromGRPCStatus(status.Error(codes.DeadlineExceeded, "slow")), ErrTimeout)

	plain := errors.New("plain")
	assert.Same(t, plain, FromGRPCStatus(plain))
	assert.Nil(t, FromGRPCStatus(nil))

	other := status.Error(codes.Internal, "x")
	assert.Equal(t, other, FromGRPCStatus(other))
}
