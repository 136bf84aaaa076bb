package exitcode

import (
	"net/http"
	"os"
	"strings"

	"github.com/felixgeelhaar/authdemo/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition, including API
	// rejections other than 401/403
	GeneralError = 1

	// UsageError indicates invalid command usage or a failed local validation
	UsageError = 2

	// PersistenceError indicates the local session slot could not be used
	PersistenceError = 3

	// Declined indicates the user answered no to a confirmation
	Declined = 4

	// AuthError indicates the API rejected the credentials or token
	AuthError = 5

	// NetworkError indicates the API could not be reached
	NetworkError = 6

	// Interrupted indicates the process received SIGINT or SIGTERM
	Interrupted = 130
)

// ErrDeclined is returned by commands whose confirmation was refused.
var ErrDeclined = errors.New(errors.KindValidation, errors.ErrCodeDeclined, "Operación cancelada")

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code. Classified errors map by
// kind; anything else falls back to cobra's usage messages.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if errors.CodeOf(err) == errors.ErrCodeDeclined {
		return Declined
	}

	switch errors.KindOf(err) {
	case errors.KindValidation:
		return UsageError
	case errors.KindNetwork:
		return NetworkError
	case errors.KindPersistence:
		return PersistenceError
	case errors.KindAPI:
		switch errors.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return AuthError
		}
		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") ||
		strings.Contains(errMsg, "unknown flag") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts ") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments or input)"
	case PersistenceError:
		return "Local session storage error"
	case Declined:
		return "Cancelled by user"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
