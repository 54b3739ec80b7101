package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrPending is returned by an Operation whose result is not available yet.
// It is the only error that makes a Strategy try again.
var ErrPending = errors.New("result not yet available")

// ErrExhausted is returned when every attempt ended with ErrPending.
var ErrExhausted = errors.New("attempt budget exhausted")

// Strategy defines the interface for retry strategies
type Strategy interface {
	// Execute runs the operation until it stops reporting ErrPending or the
	// attempt budget runs out
	Execute(ctx context.Context, operation Operation) error

	// MaxAttempts returns the attempt budget
	MaxAttempts() int

	// Name returns the name of the strategy for logging
	Name() string
}

// Operation is a function that can be retried. attempt starts at 1.
type Operation func(attempt int) error

// NewStrategy creates a retry strategy based on configuration
func NewStrategy(config Config) Strategy {
	switch config.Kind {
	case KindNone:
		slog.Debug("Polling disabled, using NoRetryStrategy")
		return NewNoRetryStrategy()
	case KindExponential:
		slog.Debug("Using ExponentialBackoffStrategy",
			"max_attempts", config.MaxAttempts,
			"initial_delay", config.InitialDelay,
			"max_delay", config.MaxDelay,
		)
		return NewExponentialBackoffStrategy(config.MaxAttempts, config.InitialDelay, config.MaxDelay)
	default:
		slog.Debug("Using FixedDelayStrategy",
			"max_attempts", config.MaxAttempts,
			"delay", config.InitialDelay,
		)
		return NewFixedDelayStrategy(config.MaxAttempts, config.InitialDelay)
	}
}

// execute is the loop shared by all strategies. next returns the delay to
// wait after the given attempt.
func execute(ctx context.Context, name string, maxAttempts int, next func(attempt int) time.Duration, operation Operation) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := operation(attempt)
		if err == nil {
			if attempt > 1 {
				slog.Debug("Operation completed after polling",
					"strategy", name,
					"attempt", attempt,
				)
			}
			return nil
		}

		if !errors.Is(err, ErrPending) {
			return err
		}

		if attempt == maxAttempts {
			break
		}

		delay := next(attempt)
		slog.Debug("Result pending, waiting before next attempt",
			"strategy", name,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"retry_in", delay,
		)

		if delay <= 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("context cancelled during retry: %w", err)
			}
			continue
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts", ErrExhausted, maxAttempts)
}
