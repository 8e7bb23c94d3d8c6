// Package retry wraps a fallible remote call with exponential backoff for a
// designated class of transient errors. Any other error propagates on first
// occurrence, and the final attempt's error propagates unchanged.
package retry

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 1500 * time.Millisecond
	DefaultJitter      = 0.2
)

type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Jitter scales each delay by a uniform factor in [1-Jitter, 1+Jitter]
	// to avoid thundering herds.
	Jitter float64
	// Retryable reports whether an error is transient. Required.
	Retryable func(error) bool
	// Sleep is swapped out in tests; nil means time.Sleep.
	Sleep func(time.Duration)
}

// DefaultConfig returns the production retry policy for the given
// transient-error predicate.
func DefaultConfig(retryable func(error) bool) Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Jitter:      DefaultJitter,
		Retryable:   retryable,
	}
}

// Do invokes op up to cfg.MaxAttempts times, sleeping
// BaseDelay * 2^(attempt-1) (jittered) between transient failures.
func Do[T any](cfg Config, logger *zap.Logger, op func() (T, error)) (T, error) {
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var zero T
	for attempt := 1; ; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}
		if cfg.Retryable == nil || !cfg.Retryable(err) || attempt == cfg.MaxAttempts {
			return zero, err
		}

		delay := cfg.BaseDelay << (attempt - 1)
		delay = time.Duration(float64(delay) * (1 + cfg.Jitter*(2*rand.Float64()-1)))

		logger.Warn("Transient upstream failure, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", cfg.MaxAttempts),
			zap.Duration("sleep", delay),
			zap.Error(err),
		)
		sleep(delay)
	}
}
