package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/metamuse/musecore/internal/muse"
)

// Local validation errors. These are rejected before any network call and
// are never retried.
var (
	// ErrEmptyMessage indicates the message text was empty after trimming.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrWalletRequired indicates no wallet address is available.
	ErrWalletRequired = errors.New("wallet address required")

	// ErrNoActiveSession indicates no session has been initialized.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSendInFlight indicates a previous send has not resolved yet.
	ErrSendInFlight = errors.New("another send is in flight")

	// ErrControllerClosed indicates the controller was torn down.
	ErrControllerClosed = errors.New("session controller closed")
)

// SessionInitError is a terminal session-initialization failure, surfaced
// after the configured retries are exhausted.
type SessionInitError struct {
	Err       error
	SubjectID string
	Attempts  int
}

// Error implements the error interface.
func (e *SessionInitError) Error() string {
	return fmt.Sprintf("failed to initialize session for %s after %d attempts: %v",
		e.SubjectID, e.Attempts, e.Err)
}

// Unwrap returns the underlying error.
func (e *SessionInitError) Unwrap() error {
	return e.Err
}

// SendMessageError is a terminal message-send failure. The optimistic
// message has already been rolled back by the time the caller sees it.
type SendMessageError struct {
	Err       error
	SessionID string
	Attempts  int
}

// Error implements the error interface.
func (e *SendMessageError) Error() string {
	return fmt.Sprintf("failed to send message in session %s after %d attempts: %v",
		e.SessionID, e.Attempts, e.Err)
}

// Unwrap returns the underlying error.
func (e *SendMessageError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether an error is worth retrying. Server faults,
// timeouts, and connection-level failures are transient; local validation
// and server rejections (4xx) are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrWalletRequired) ||
		errors.Is(err, ErrNoActiveSession) ||
		errors.Is(err, ErrSendInFlight) ||
		errors.Is(err, ErrControllerClosed) {
		return false
	}

	// A superseded request is discarded, not retried.
	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if reqErr, ok := muse.AsRequestError(err); ok {
		return reqErr.Temporary()
	}

	// Fall back to message sniffing for transport errors that arrive
	// without structure.
	errMsg := strings.ToLower(err.Error())
	transientIndicators := []string{
		"timeout",
		"timed out",
		"connection refused",
		"connection reset",
		"temporarily unavailable",
		"service unavailable",
		"too many requests",
	}

	for _, indicator := range transientIndicators {
		if strings.Contains(errMsg, indicator) {
			return true
		}
	}

	return false
}
