package retry

import (
	"context"
	"time"
)

// FixedDelayStrategy waits the same delay between attempts
type FixedDelayStrategy struct {
	maxAttempts int
	delay       time.Duration
}

// NewFixedDelayStrategy creates a new FixedDelayStrategy
func NewFixedDelayStrategy(maxAttempts int, delay time.Duration) *FixedDelayStrategy {
	return &FixedDelayStrategy{
		maxAttempts: maxAttempts,
		delay:       delay,
	}
}

// Execute runs the operation, sleeping a fixed delay between attempts
func (s *FixedDelayStrategy) Execute(ctx context.Context, operation Operation) error {
	return execute(ctx, s.Name(), s.maxAttempts, func(int) time.Duration { return s.delay }, operation)
}

// MaxAttempts returns the attempt budget
func (s *FixedDelayStrategy) MaxAttempts() int {
	return s.maxAttempts
}

// Name returns the strategy name
func (s *FixedDelayStrategy) Name() string {
	return "FixedDelay"
}
