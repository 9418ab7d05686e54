package cli

import (
	"errors"

	"github.com/thenoetrevino/sitebook/internal/apperr"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: Database errors, unexpected failures,
	// or any error that doesn't fit the specific categories below.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required flags or no organization selected.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: Unreadable files or data that cannot be processed.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: Bad dates, empty names, unknown statuses or resolutions.
	ExitValidation = 5

	// ExitConflict indicates the change collides with existing state.
	// Use for: Unresolved schedule conflicts, already signed contracts.
	ExitConflict = 6

	// ExitUnavailable indicates a dependency did not answer in time.
	ExitUnavailable = 7
)

// CodedError carries the exit code a failed command should end with. The
// message has already been reported by the formatter.
type CodedError struct {
	Code int
	Err  error
}

func (e *CodedError) Error() string { return e.Err.Error() }

func (e *CodedError) Unwrap() error { return e.Err }

// ExitCode returns the code the process should exit with for err
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *CodedError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return codeFor(apperr.Classify(err))
}

func codeFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return ExitValidation
	case apperr.KindNotFound, apperr.KindForbidden:
		return ExitNotFound
	case apperr.KindConflict:
		return ExitConflict
	case apperr.KindTooLarge:
		return ExitDataErr
	case apperr.KindUnauthenticated:
		return ExitUsage
	case apperr.KindUnavailable:
		return ExitUnavailable
	default:
		return ExitError
	}
}

// errorCode is the machine readable code printed in JSON errors
func errorCode(kind apperr.Kind) string {
	switch kind {
	case apperr.KindValidation:
		return "VALIDATION_ERROR"
	case apperr.KindNotFound, apperr.KindForbidden:
		return "NOT_FOUND"
	case apperr.KindConflict:
		return "CONFLICT"
	case apperr.KindTooLarge:
		return "TOO_LARGE"
	case apperr.KindUnauthenticated:
		return "UNAUTHENTICATED"
	case apperr.KindUnavailable:
		return "UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}
