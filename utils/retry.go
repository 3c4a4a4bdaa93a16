package utils

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig holds the parameters for the retry strategy.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *Logger
}

// Do executes fn with exponential back-off, stopping early if ctx is done.
func (r *RetryConfig) Do(ctx context.Context, operationName string, fn func() error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		if r.Logger != nil {
			r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
				operationName, attempt, attempts, lastErr, delay)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s aborted after %d attempts: %w", operationName, attempt, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, lastErr)
}
