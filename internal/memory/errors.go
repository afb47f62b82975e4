package memory

import (
	"errors"
	"fmt"
)

// ErrNoSubject indicates the cache was constructed without a subject id.
var ErrNoSubject = errors.New("subject id required")

// QueryError is a terminal memory-query failure. The previously loaded
// result set stays visible when one occurs.
type QueryError struct {
	Err       error
	SubjectID string
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("memory query for %s failed: %v", e.SubjectID, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}
