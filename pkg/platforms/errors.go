package platforms

import (
	"errors"
	"fmt"
)

// ErrNoPages is returned when the page list was fetched but is empty.
var ErrNoPages = errors.New("No pages found")

// ErrInvalidBody marks an upstream body that is not a JSON object.
var ErrInvalidBody = errors.New("response body is not a JSON object")

// ValidationError rejects an identifier or credential before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamFetchError reports a failed gateway call. Status is zero when no
// HTTP response was received. Err never contains credentials.
type UpstreamFetchError struct {
	Category Resource
	Status   int
	Payload  string
	Err      error
}

func (e *UpstreamFetchError) Error() string {
	msg := fmt.Sprintf("upstream fetch error (%s)", e.Category)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Payload != "" {
		msg += ": " + e.Payload
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// Responded reports whether the upstream answered with an HTTP status,
// as opposed to a transport-level failure.
func (e *UpstreamFetchError) Responded() bool { return e.Status != 0 }

// MalformedResponseError reports a body that parsed but lacks required structure.
type MalformedResponseError struct {
	Category Resource
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %s", e.Category, e.Reason)
}

// Category returns the resource category of an upstream or malformed-response
// error, or "validation" for validation errors, or "" otherwise.
func Category(err error) string {
	var (
		upErr  *UpstreamFetchError
		malErr *MalformedResponseError
		valErr *ValidationError
	)
	switch {
	case errors.As(err, &upErr):
		return string(upErr.Category)
	case errors.As(err, &malErr):
		return string(malErr.Category)
	case errors.As(err, &valErr):
		return "validation"
	case errors.Is(err, ErrNoPages):
		return string(ResourcePages)
	default:
		return ""
	}
}
