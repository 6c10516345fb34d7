// Package retry implements fixed-delay retry with typed error gating.
package retry

import (
	"context"
	"time"

	"cfe-etl/internal/logging"
)

// Policy controls how Do re-attempts a failing operation.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int

	// Delay is the fixed pause between attempts.
	Delay time.Duration

	// Retryable decides whether an error is worth another attempt. When nil
	// every error is retried.
	Retryable func(error) bool

	// Logger receives a warning per failed attempt. When nil the default
	// logger is used.
	Logger logging.Logger
}

// DefaultPolicy matches the pipeline's standard settings for calls to the
// completion service: three attempts with a two second pause.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
	}
}

// Do runs fn until it succeeds, the policy is exhausted, the error is not
// retryable, or ctx is cancelled. It returns the last error seen.
func (p Policy) Do(ctx context.Context, op string, fn func() error) error {
	log := p.Logger
	if log == nil {
		log = logging.GetLogger()
	}

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		log.WithError(lastErr).Warn("attempt failed, retrying",
			logging.Field{Key: "operation", Value: op},
			logging.Field{Key: "attempt", Value: attempt},
			logging.Field{Key: "max_attempts", Value: attempts})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay):
		}
	}
	return lastErr
}
