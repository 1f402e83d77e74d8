package model

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors surfaced to the operator without mutating state.
var (
	// ErrJobNotFound is returned when an action references an unknown job id.
	ErrJobNotFound = errors.New("job not found")

	// ErrNoProposal is returned when an approve action arrives for a job
	// without a drafted proposal.
	ErrNoProposal = errors.New("no proposal generated yet")

	// ErrInvalidURL is returned for listings whose URL is missing or lacks
	// an http(s) scheme.
	ErrInvalidURL = errors.New("invalid job url")
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
