package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	connFailure = &pgconn.PgError{Code: "08006", Message: "connection failure"}
	syntaxError = &pgconn.PgError{Code: "42601", Message: "syntax error"}
)

// flakyOperation fails with err until it has been called failures times.
type flakyOperation struct {
	calls    int
	failures int
	err      error
}

func (f *flakyOperation) run(ctx context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func fastBackoff(maxAttempts int) *ExponentialBackoff {
	return NewExponentialBackoff(maxAttempts, WithInitialDelay(time.Millisecond), WithJitter(0))
}

func TestExecutor_Execute(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		failures    int
		err         error
		wantErr     error
		wantCalls   int
	}{
		{name: "success first try", maxAttempts: 3, failures: 0, wantCalls: 1},
		{name: "success after retries", maxAttempts: 5, failures: 3, err: connFailure, wantCalls: 4},
		{name: "fatal error not retried", maxAttempts: 5, failures: 10, err: syntaxError, wantErr: syntaxError, wantCalls: 1},
		{name: "retries exhausted", maxAttempts: 3, failures: 100, err: connFailure, wantErr: connFailure, wantCalls: 4},
		{name: "no retries", maxAttempts: 0, failures: 100, err: connFailure, wantErr: connFailure, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(tt.maxAttempts))
			op := &flakyOperation{failures: tt.failures, err: tt.err}

			err := executor.Execute(context.Background(), op.run)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Execute() error = %v, want %v", err, tt.wantErr)
			}
			if op.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", op.calls, tt.wantCalls)
			}
		})
	}
}

func TestExecutor_Execute_TransientThenFatal(t *testing.T) {
	executor := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(5))

	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return connFailure
		}
		return syntaxError
	})

	if err != syntaxError {
		t.Errorf("expected syntax error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestExecutor_Execute_ContextCancelledDuringWait(t *testing.T) {
	executor := NewExecutor(NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(10, WithInitialDelay(time.Second), WithJitter(0)))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	op := &flakyOperation{failures: 100, err: connFailure}
	err := executor.Execute(ctx, op.run)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if op.calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", op.calls)
	}
}

func TestExecutor_WithOnRetry(t *testing.T) {
	base := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(3))

	var attempts []int
	executor := base.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	})

	op := &flakyOperation{failures: 2, err: connFailure}
	if err := executor.Execute(context.Background(), op.run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(attempts) != 2 || attempts[0] != 0 || attempts[1] != 1 {
		t.Errorf("unexpected retry attempts: %v", attempts)
	}
	if base.onRetry != nil {
		t.Error("WithOnRetry must not mutate the receiver")
	}
}

func TestNewExecutor_PanicsOnNilDependencies(t *testing.T) {
	tests := []struct {
		name       string
		classifier *PostgreSQLErrorClassifier
		strategy   *ExponentialBackoff
	}{
		{name: "nil classifier", strategy: fastBackoff(1)},
		{name: "nil strategy", classifier: NewPostgreSQLErrorClassifier()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			if tt.classifier == nil {
				NewExecutor(nil, tt.strategy)
			} else {
				NewExecutor(tt.classifier, nil)
			}
		})
	}
}
