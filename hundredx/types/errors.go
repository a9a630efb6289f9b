package types

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMissingKey is returned by every signing path when no private key is configured.
	ErrMissingKey = errors.New("hundredx: private key is required for signing")
	// ErrNotLoggedIn is wrapped by the validation error raised for private endpoints
	// used while the session is anonymous.
	ErrNotLoggedIn = errors.New("hundredx: session is not authenticated, call Login first")
	// ErrAuthentication means the login endpoint answered without a session token.
	ErrAuthentication = errors.New("hundredx: login did not return a session token")
	// ErrConfirmationTimeout is returned when a transaction receipt did not show up
	// within the poll budget.
	ErrConfirmationTimeout = errors.New("hundredx: timed out waiting for transaction receipt")
	// ErrNotFound means the exchange answered but returned nothing for the query.
	ErrNotFound = errors.New("hundredx: not found")
	// ErrAlreadyReferred marks a referral registration for an account that already has a referrer.
	ErrAlreadyReferred = errors.New("hundredx: account already has a referrer")
)

// ValidationError is raised for bad user input before any network call.
type ValidationError struct {
	Field  string
	Reason string
	cause  error
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// WrapValidation builds a ValidationError that unwraps to cause.
func WrapValidation(cause error, field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), cause: cause}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "hundredx: invalid input: " + e.Reason
	}
	return fmt.Sprintf("hundredx: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.cause }

// ConfigError is raised at construction when the environment descriptor is incomplete.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("hundredx: bad configuration %s: %s", e.Key, e.Reason)
}

// TransportError carries everything needed to diagnose a non-200 response.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Payload    string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("hundredx %s %s: %d %s (payload: %s)", e.Method, e.URL, e.StatusCode, e.Body, e.Payload)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StatusCode returns the HTTP status carried by a TransportError in err, or 0.
func StatusCode(err error) int {
	var t *TransportError
	if errors.As(err, &t) {
		return t.StatusCode
	}
	return 0
}
