package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrInvalidReference = errors.New("invalid reference")
	ErrMalformedOutput  = errors.New("malformed model output")
)

// UpstreamError is a failed call to an external service. Retryable is set by the
// client wrapper that saw the raw failure.
type UpstreamError struct {
	Op        string
	Code      int
	Retryable bool
	Err       error
}

func (e *UpstreamError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: upstream error %d: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: upstream error: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a retryable UpstreamError.
func IsRetryable(err error) bool {
	var up *UpstreamError
	if errors.As(err, &up) {
		return up.Retryable
	}
	return false
}

// Violation is a single schema failure at a JSON pointer path.
type Violation struct {
	Path   string
	Reason string
}

// ValidationError aggregates every violation found in one model output.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		path := v.Path
		if path == "" {
			path = "/"
		}
		parts = append(parts, path+": "+v.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedOutput, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrMalformedOutput }
