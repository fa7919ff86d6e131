package retry

import (
	"context"
	"time"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// Executor orchestrates retry attempts with backoff and error classification.
// Safe for concurrent use; WithOnRetry returns a copy rather than mutating.
type Executor struct {
	classifier roomstat.ErrorClassifier
	strategy   roomstat.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new retry executor.
// Panics if classifier or strategy is nil.
func NewExecutor(classifier roomstat.ErrorClassifier, strategy roomstat.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// NewDefaultExecutor uses the PostgreSQL classifier and the package defaults
// from roomstat (DefaultRetryMaxAttempts, DefaultRetryInitialDelay, DefaultRetryMaxDelay).
func NewDefaultExecutor() *Executor {
	return NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(roomstat.DefaultRetryMaxAttempts,
			WithInitialDelay(roomstat.DefaultRetryInitialDelay),
			WithMaxDelay(roomstat.DefaultRetryMaxDelay),
		),
	)
}

// WithOnRetry returns a new Executor that calls callback before each retry.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation, retrying transient failures.
// It returns nil on success, the first fatal error, the last transient error
// once attempts are exhausted, or ctx.Err() if cancelled while waiting.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	lastErr := operation(ctx)
	if lastErr == nil || !e.classifier.IsTransient(lastErr) {
		return lastErr
	}

	maxAttempts := e.strategy.MaxAttempts()
	for attempt := 0; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		lastErr = operation(ctx)
		if lastErr == nil || !e.classifier.IsTransient(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
