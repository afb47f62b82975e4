package muse

import (
	"errors"
	"fmt"
	"net/http"
)

// RequestError is a failure reported by the remote API. StatusCode is 0
// when the request never produced an HTTP response (connection failure,
// timeout before headers).
type RequestError struct {
	Err        error
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("remote api: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote api: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the failure is worth retrying: server faults
// and transport-level failures are, client rejections (4xx) are not.
func (e *RequestError) Temporary() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode >= http.StatusInternalServerError ||
		e.StatusCode == http.StatusTooManyRequests
}

// AsRequestError extracts a RequestError from an error chain.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}
