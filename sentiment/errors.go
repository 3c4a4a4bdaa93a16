package sentiment

import (
	"fmt"

	"review-sentiment/models"
)

// ConnectivityError means the scoring service failed its liveness probe.
type ConnectivityError struct {
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("sentiment service at %s is unreachable: %v", e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// ScoringError means one scoring call failed. Transport errors, timeouts,
// non-2xx statuses and malformed bodies all collapse into it.
type ScoringError struct {
	Model models.Model
	Cause string
	Err   error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("%s scoring failed: %s", e.Model, e.Cause)
}

func (e *ScoringError) Unwrap() error { return e.Err }
