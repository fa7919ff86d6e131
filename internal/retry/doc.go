// Package retry retries connection attempts that fail for transient reasons.
//
// An Executor combines an ErrorClassifier, which decides whether an error is
// worth retrying, with a BackoffStrategy, which decides how long to wait.
//
//	executor := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewExponentialBackoff(3))
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// Only connection setup is retried. A failed load or query is reported to
// the caller as is; whether to rerun the whole operation is the caller's call.
package retry
