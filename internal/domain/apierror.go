package domain

import (
	"errors"
	"fmt"
)

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Detail)
}

// RejectedError is a 2xx response without a usable payload.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "request was not successful"
	}
	return "request was not successful: " + e.Message
}

// DecodeError is a 2xx response whose body could not be parsed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode response: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// IsTransportError reports whether err came from the network rather than
// from a backend response.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	var rejected *RejectedError
	var decodeErr *DecodeError
	return !errors.As(err, &statusErr) && !errors.As(err, &rejected) && !errors.As(err, &decodeErr)
}
