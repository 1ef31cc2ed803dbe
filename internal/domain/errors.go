package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrMalformedResponse = errors.New("malformed response")
	ErrSuperseded        = errors.New("superseded by a newer query")
)

// UpstreamError is a non-success answer from an external API.
// Status is the upstream HTTP status, or 0 when the API signalled failure in its body.
type UpstreamError struct {
	Service string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: upstream error: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("%s: upstream status %d: %s", e.Service, e.Status, e.Message)
}

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Service string
	Err     error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: network error: %v", e.Service, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError keeps the raw completion text for diagnostics.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() []error { return []error{ErrMalformedResponse, e.Err} }

func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
