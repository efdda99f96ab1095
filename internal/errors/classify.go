package errors

import (
	"context"
	"errors"
)

// ErrorSeverity indicates the severity of an error for UI presentation.
type ErrorSeverity int

const (
	SeverityInfo    ErrorSeverity = iota // User should know, not blocking
	SeverityWarning                      // Degraded functionality
	SeverityError                        // Operation failed, can retry
	SeverityFatal                        // Application must exit
)

// ErrorAction represents a user action that can be taken in response to an error.
type ErrorAction struct {
	Label   string
	Handler func()
}

// UIError wraps an error with UI-friendly presentation metadata.
type UIError struct {
	Err      error
	Severity ErrorSeverity
	Title    string        // Short user-facing title
	Message  string        // Detailed user-facing message
	Recovery []string      // Suggested actions (bullet points)
	Actions  []ErrorAction // Buttons for user actions
	Details  string        // Technical details (collapsed by default)
}

func (e UIError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Title
}

// Unwrap returns the underlying error.
func (e UIError) Unwrap() error {
	return e.Err
}

var retry = []ErrorAction{{Label: "Retry"}}

// sentinelLooks maps known causes to their presentation, first match wins.
// Err and Details are filled in by ClassifyError.
var sentinelLooks = []struct {
	targets []error
	look    UIError
	details bool
}{
	{
		targets: []error{context.DeadlineExceeded},
		look: UIError{
			Severity: SeverityError,
			Title:    "Request Timeout",
			Message:  "The backend took too long to respond.",
			Recovery: []string{"Try again", "Increase the timeout in Preferences"},
			Actions:  []ErrorAction{{Label: "Retry"}, {Label: "Settings"}},
		},
	},
	{
		targets: []error{context.Canceled},
		look:    UIError{Severity: SeverityInfo, Title: "Request Cancelled", Message: "The operation was cancelled."},
	},
	{
		targets: []error{ErrUserCancelled},
		look:    UIError{Severity: SeverityInfo, Title: "Cancelled", Message: "Operation cancelled by user."},
	},
	{
		targets: []error{ErrBackendUnavailable},
		look: UIError{
			Severity: SeverityError,
			Title:    "Backend Unavailable",
			Message:  "Unable to reach the backend service.",
			Recovery: []string{"Check that the backend is running", "Verify the backend address in settings"},
			Actions:  retry,
		},
		details: true,
	},
	{
		targets: []error{ErrNotFound},
		look: UIError{
			Severity: SeverityWarning,
			Title:    "Request Not Found",
			Message:  "The request no longer exists.",
			Recovery: []string{"Refresh the request list"},
		},
		details: true,
	},
	{
		targets: []error{ErrUnknownKind, ErrKindMismatch},
		look: UIError{
			Severity: SeverityError,
			Title:    "Unsupported Request",
			Message:  "The request kind is not supported here.",
			Recovery: []string{"Reopen the request"},
		},
		details: true,
	},
	{
		targets: []error{ErrTimeout},
		look: UIError{
			Severity: SeverityError,
			Title:    "Operation Timeout",
			Message:  "The operation timed out.",
			Recovery: []string{"Try again", "Increase the timeout in Preferences"},
			Actions:  retry,
		},
	},
}

// ClassifyError converts an error into a UIError with severity, title,
// message and recovery suggestions. Known causes are found through any
// wrapping, OpError included.
func ClassifyError(err error) *UIError {
	if err == nil {
		return nil
	}

	var uiErr *UIError
	if errors.As(err, &uiErr) {
		return uiErr
	}

	for _, s := range sentinelLooks {
		for _, target := range s.targets {
			if !errors.Is(err, target) {
				continue
			}
			ui := s.look
			ui.Err = err
			if s.details {
				ui.Details = err.Error()
			}
			return &ui
		}
	}

	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Validation Error",
			Message:  validationErr.Message,
			Recovery: []string{"Correct the field value and try again"},
			Details:  validationErr.Error(),
		}
	}

	var opErr *OpError
	if errors.As(err, &opErr) {
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Operation Failed",
			Message:  opErr.Error(),
			Recovery: []string{"Try again"},
			Details:  opErr.Err.Error(),
		}
	}

	return &UIError{
		Err:      err,
		Severity: SeverityError,
		Title:    "Unexpected Error",
		Message:  "An unexpected error occurred.",
		Recovery: []string{"Try again"},
		Details:  err.Error(),
	}
}
