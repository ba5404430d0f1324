package database

import (
	"fmt"
	"time"
)

// QueryTimeoutError reports that a statement exceeded the per-request query
// deadline. Timed-out queries are never retried automatically.
type QueryTimeoutError struct {
	Timeout time.Duration
}

func (e *QueryTimeoutError) Error() string {
	return fmt.Sprintf("query timed out after %s", e.Timeout)
}

// QueryExecutionError wraps a driver-level failure. The wrapped error is kept
// for logs; callers surface only a sanitized message.
type QueryExecutionError struct {
	Err error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Err
}
