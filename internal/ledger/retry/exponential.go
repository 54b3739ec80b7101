package retry

import (
	"context"
	"time"
)

// ExponentialBackoffStrategy doubles the delay after every pending attempt,
// capped at maxDelay
type ExponentialBackoffStrategy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewExponentialBackoffStrategy creates a new ExponentialBackoffStrategy
func NewExponentialBackoffStrategy(maxAttempts int, initialDelay, maxDelay time.Duration) *ExponentialBackoffStrategy {
	if maxDelay < initialDelay {
		maxDelay = initialDelay
	}
	return &ExponentialBackoffStrategy{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}
}

// Execute runs the operation with exponential backoff between attempts
func (s *ExponentialBackoffStrategy) Execute(ctx context.Context, operation Operation) error {
	return execute(ctx, s.Name(), s.maxAttempts, s.delayAfter, operation)
}

// delayAfter returns the wait following the given attempt (1-based)
func (s *ExponentialBackoffStrategy) delayAfter(attempt int) time.Duration {
	delay := s.initialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= s.maxDelay {
			return s.maxDelay
		}
	}
	return delay
}

// MaxAttempts returns the attempt budget
func (s *ExponentialBackoffStrategy) MaxAttempts() int {
	return s.maxAttempts
}

// Name returns the strategy name
func (s *ExponentialBackoffStrategy) Name() string {
	return "ExponentialBackoff"
}
