package repository

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Custom error types
var (
	ErrLocationNotFound   = errors.New("location not found")
	ErrAPIKeyMissing      = errors.New("API key missing")
	ErrTransport          = errors.New("transport error")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrUnsupportedShape   = errors.New("unsupported provider shape")
	ErrUnsuccessfulStatus = errors.New("unsuccessful response")
)

// StatusError is returned for any non-2xx provider response. Status is
// the status line as received, e.g. "404 Not Found".
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	status := strings.TrimSpace(e.Status)
	if status == "" {
		status = strings.TrimSpace(fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code)))
	}
	return "unsuccessful response: " + status
}

func (e *StatusError) Unwrap() []error {
	if e.Code == http.StatusNotFound {
		return []error{ErrUnsuccessfulStatus, ErrLocationNotFound}
	}
	return []error{ErrUnsuccessfulStatus}
}

// TransportError wraps a failure to get any response at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// ParseError wraps a body that is not JSON or lacks a required field.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformedResponse, e.Err}
}
