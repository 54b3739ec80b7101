package retry

import (
	"context"
)

// NoRetryStrategy executes operations exactly once
// A pending result is reported as exhausted right away
type NoRetryStrategy struct{}

// NewNoRetryStrategy creates a new NoRetryStrategy
func NewNoRetryStrategy() *NoRetryStrategy {
	return &NoRetryStrategy{}
}

// Execute runs the operation once without retrying
func (s *NoRetryStrategy) Execute(ctx context.Context, operation Operation) error {
	return execute(ctx, s.Name(), 1, nil, operation)
}

// MaxAttempts returns the attempt budget
func (s *NoRetryStrategy) MaxAttempts() int {
	return 1
}

// Name returns the strategy name
func (s *NoRetryStrategy) Name() string {
	return "NoRetry"
}
