package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies an error by where it came from and how it must be surfaced.
type Kind string

const (
	// KindValidation is a local precondition failure. It never reaches the network.
	KindValidation Kind = "validation"
	// KindAPI means the server answered with a non-success status.
	KindAPI Kind = "api"
	// KindNetwork means the request itself failed (offline, DNS, timeout).
	KindNetwork Kind = "network"
	// KindPersistence means the local session slot could not be read or written.
	KindPersistence Kind = "persistence"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error codes
const (
	// Local validation (AUTH-001 to AUTH-099)
	ErrCodeUsernameTooShort ErrorCode = "AUTH-001"
	ErrCodePasswordTooShort ErrorCode = "AUTH-002"
	ErrCodePasswordTooLong  ErrorCode = "AUTH-003"
	ErrCodePasswordMismatch ErrorCode = "AUTH-004"
	ErrCodeNoRefreshToken   ErrorCode = "AUTH-005"
	ErrCodeSessionEnded     ErrorCode = "AUTH-006"
	ErrCodeMissingInput     ErrorCode = "AUTH-007"
	ErrCodeNotAuthenticated ErrorCode = "AUTH-008"

	// Server responses (API-001 to API-099)
	ErrCodeAPIRejected ErrorCode = "API-001"
	ErrCodeAPIDecode   ErrorCode = "API-002"

	// Transport (NET-001 to NET-099)
	ErrCodeNetwork ErrorCode = "NET-001"

	// Local persistence (STORE-001 to STORE-099)
	ErrCodeStoreCorrupt ErrorCode = "STORE-001"
	ErrCodeStoreRead    ErrorCode = "STORE-002"
	ErrCodeStoreWrite   ErrorCode = "STORE-003"
	ErrCodeStoreOpen    ErrorCode = "STORE-004"

	// Command line (CLI-001 to CLI-099)
	ErrCodeDeclined ErrorCode = "CLI-001"
)

// ConnectionMessage is shown for every transport failure.
const ConnectionMessage = "Error de conexión. Verifica que la API esté en línea."

// Error is a classified error with a user-facing message.
type Error struct {
	Kind        Kind
	Code        ErrorCode
	Message     string
	Status      int
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error
func New(kind Kind, code ErrorCode, message string) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new Error wrapping an existing error
func Wrap(kind Kind, code ErrorCode, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// Validation creates a local validation error.
func Validation(code ErrorCode, message string) *Error {
	return New(KindValidation, code, message)
}

// API creates an error for a non-success response. The server detail is
// used verbatim when present, otherwise fallback.
func API(status int, detail, fallback string) *Error {
	msg := strings.TrimSpace(detail)
	if msg == "" {
		msg = fallback
	}
	e := New(KindAPI, ErrCodeAPIRejected, msg)
	e.Status = status
	return e
}

// Network creates a transport error. The message is always the generic
// connection message; the cause is kept for logs.
func Network(cause error) *Error {
	return Wrap(KindNetwork, ErrCodeNetwork, ConnectionMessage, cause).
		WithSuggestion("Check that the API is running and --api-url points to it")
}

// Persistence creates a local storage error.
func Persistence(code ErrorCode, message string, cause error) *Error {
	return Wrap(KindPersistence, code, message, cause)
}

// KindOf returns the Kind of err, or "" when err is not a classified error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a classified error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// CodeOf returns the ErrorCode of err, or "" when err is not a classified error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// StatusOf returns the HTTP status carried by an API error, or 0.
func StatusOf(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Status
	}
	return 0
}

// UserMessage returns the text to show a user for err. Classified errors
// show their message only; anything else shows err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
