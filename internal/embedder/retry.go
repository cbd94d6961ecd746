package embedder

import (
	"context"
	"time"
)

// RetryConfig configures exponential backoff retry behavior
type RetryConfig struct {
	InitialDelay time.Duration // Delay before the first retry
	MaxDelay     time.Duration // Ceiling for a single backoff step
	Multiplier   float64       // Exponential backoff multiplier
	MaxElapsed   time.Duration // Total retry budget per call
}

// DefaultRetryConfig returns the backoff used for embedding API calls: a
// half second doubling up to 30s, with roughly two minutes of total budget.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		MaxElapsed:   2 * time.Minute,
	}
}

// retryWithBackoff executes fn until it succeeds, retryable rejects the
// error, the elapsed budget would be exceeded by the next sleep, or the
// context ends. The last error is returned on exhaustion.
func retryWithBackoff[T any](ctx context.Context, config RetryConfig, retryable func(error) bool, fn func() (T, error)) (T, error) {
	var zero T
	start := time.Now()
	backoff := config.InitialDelay

	for {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if !retryable(err) {
			return zero, err
		}
		if time.Since(start)+backoff > config.MaxElapsed {
			return zero, err
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * config.Multiplier)
		if backoff > config.MaxDelay {
			backoff = config.MaxDelay
		}
	}
}
