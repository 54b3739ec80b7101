package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExponentialBackoffStrategy_Success(t *testing.T) {
	strategy := NewExponentialBackoffStrategy(3, 10*time.Millisecond, 100*time.Millisecond)

	err := strategy.Execute(context.Background(), func(int) error {
		return nil // Success on first try
	})

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestExponentialBackoffStrategy_SuccessAfterPending(t *testing.T) {
	strategy := NewExponentialBackoffStrategy(5, time.Millisecond, 10*time.Millisecond)

	attempts := 0
	err := strategy.Execute(context.Background(), func(int) error {
		attempts++
		if attempts < 3 {
			return ErrPending
		}
		return nil // Success on 3rd attempt
	})

	if err != nil {
		t.Errorf("Expected no error after polling, got: %v", err)
	}

	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestExponentialBackoffStrategy_TransportErrorNotRetried(t *testing.T) {
	strategy := NewExponentialBackoffStrategy(5, time.Millisecond, 10*time.Millisecond)

	attempts := 0
	transportErr := errors.New("connection refused")
	err := strategy.Execute(context.Background(), func(int) error {
		attempts++
		return transportErr
	})

	if !errors.Is(err, transportErr) {
		t.Errorf("Expected transport error to propagate, got: %v", err)
	}

	if attempts != 1 {
		t.Errorf("Expected only 1 attempt for a transport error, got: %d", attempts)
	}
}

func TestExponentialBackoffStrategy_MaxAttemptsExceeded(t *testing.T) {
	strategy := NewExponentialBackoffStrategy(4, time.Millisecond, 5*time.Millisecond)

	attempts := 0
	err := strategy.Execute(context.Background(), func(int) error {
		attempts++
		return ErrPending
	})

	if !errors.Is(err, ErrExhausted) {
		t.Errorf("Expected ErrExhausted, got: %v", err)
	}

	if attempts != 4 {
		t.Errorf("Expected 4 attempts, got: %d", attempts)
	}
}

func TestExponentialBackoffStrategy_ContextCancellation(t *testing.T) {
	strategy := NewExponentialBackoffStrategy(10, 100*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := strategy.Execute(ctx, func(int) error {
		attempts++
		return ErrPending
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context cancellation, got: %v", err)
	}

	// Should have attempted at least once
	if attempts < 1 {
		t.Errorf("Expected at least 1 attempt, got: %d", attempts)
	}
}

func TestExponentialBackoffStrategy_DelayCapped(t *testing.T) {
	strategy := NewExponentialBackoffStrategy(10, 100*time.Millisecond, 500*time.Millisecond)

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 500 * time.Millisecond},
		{9, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := strategy.delayAfter(tt.attempt); got != tt.expected {
			t.Errorf("delayAfter(%d) = %v, expected %v", tt.attempt, got, tt.expected)
		}
	}
}
