package errors

import (
	"fmt"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type grpcPresentation struct {
	severity ErrorSeverity
	title    string
	message  string
	recovery []string
	retry    bool
}

var grpcPresentations = map[codes.Code]grpcPresentation{
	codes.Unavailable: {
		severity: SeverityError,
		title:    "Backend Unavailable",
		message:  "The backend is not responding.",
		recovery: []string{"Check that the backend is running", "Verify the backend address"},
		retry:    true,
	},
	codes.DeadlineExceeded: {
		severity: SeverityError,
		title:    "Request Timeout",
		message:  "The backend took too long to respond.",
		recovery: []string{"Try again", "Increase the timeout setting"},
		retry:    true,
	},
	codes.NotFound: {
		severity: SeverityWarning,
		title:    "Request Not Found",
		message:  "The request no longer exists.",
		recovery: []string{"Refresh the request list"},
	},
	codes.AlreadyExists: {
		severity: SeverityError,
		title:    "Already Exists",
		message:  "A request with that name already exists.",
		recovery: []string{"Use a different name"},
	},
	codes.InvalidArgument: {
		severity: SeverityError,
		title:    "Invalid Request",
		message:  "The backend rejected the request data.",
		recovery: []string{"Check field values"},
	},
	codes.Unimplemented: {
		severity: SeverityWarning,
		title:    "Not Supported",
		message:  "The backend does not support this operation.",
		recovery: []string{"Verify the backend version"},
	},
	codes.Canceled: {
		severity: SeverityInfo,
		title:    "Request Cancelled",
		message:  "The operation was cancelled.",
	},
	codes.Internal: {
		severity: SeverityError,
		title:    "Backend Error",
		message:  "The backend encountered an unexpected error.",
		recovery: []string{"Try again later"},
		retry:    true,
	},
}

// ClassifyGRPCError converts an error returned by the gRPC backend transport
// into a UIError. Non-status errors fall back to ClassifyError.
func ClassifyGRPCError(err error) *UIError {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return ClassifyError(err)
	}

	details := fmt.Sprintf("gRPC: %s - %s", st.Code(), st.Message())
	if extra := formatStatusDetails(st); extra != "" {
		details += "\n\n" + extra
	}

	p, known := grpcPresentations[st.Code()]
	if !known {
		p = grpcPresentation{
			severity: SeverityError,
			title:    "Request Failed",
			message:  st.Message(),
			recovery: []string{"Try again"},
		}
	}

	uiErr := &UIError{
		Err:      err,
		Severity: p.severity,
		Title:    p.title,
		Message:  p.message,
		Recovery: p.recovery,
		Details:  details,
	}
	if uiErr.Recovery == nil {
		uiErr.Recovery = []string{}
	}
	if p.retry {
		uiErr.Actions = []ErrorAction{{Label: "Retry"}}
	}
	return uiErr
}

// FromGRPCStatus maps a gRPC status onto the package sentinels so callers can
// use errors.Is without knowing which transport produced the error. The
// status message is kept as the error text.
func FromGRPCStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || err == nil {
		return err
	}
	var sentinel error
	switch st.Code() {
	case codes.Unavailable:
		sentinel = ErrBackendUnavailable
	case codes.NotFound:
		sentinel = ErrNotFound
	case codes.DeadlineExceeded:
		sentinel = ErrTimeout
	case codes.Canceled:
		sentinel = ErrUserCancelled
	default:
		return err
	}
	return fmt.Errorf("%w: %s", sentinel, st.Message())
}

// formatStatusDetails renders the rich error details attached to a status.
func formatStatusDetails(st *status.Status) string {
	var sections []string
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.BadRequest:
			if len(d.GetFieldViolations()) == 0 {
				continue
			}
			lines := []string{"Field Violations:"}
			for _, fv := range d.GetFieldViolations() {
				lines = append(lines, fmt.Sprintf("  %s: %s", fv.GetField(), fv.GetDescription()))
			}
			sections = append(sections, strings.Join(lines, "\n"))

		case *errdetails.ErrorInfo:
			lines := []string{"Error Info: " + d.GetReason()}
			if d.GetDomain() != "" {
				lines = append(lines, "  Domain: "+d.GetDomain())
			}
			for k, v := range d.GetMetadata() {
				lines = append(lines, fmt.Sprintf("  %s: %s", k, v))
			}
			sections = append(sections, strings.Join(lines, "\n"))

		case *errdetails.DebugInfo:
			lines := []string{"Debug Info:"}
			if d.GetDetail() != "" {
				lines = append(lines, "  "+d.GetDetail())
			}
			for _, entry := range d.GetStackEntries() {
				lines = append(lines, "  "+entry)
			}
			sections = append(sections, strings.Join(lines, "\n"))

		case *errdetails.RetryInfo:
			if delay := d.GetRetryDelay(); delay != nil {
				sections = append(sections, fmt.Sprintf("Retry after: %v", delay.AsDuration()))
			}

		case *errdetails.RequestInfo:
			sections = append(sections, "Request ID: "+d.GetRequestId())

		default:
			sections = append(sections, fmt.Sprintf("Detail: %v", detail))
		}
	}
	return strings.Join(sections, "\n\n")
}
