package roomstat

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBConnection abstracts the store operations used by the schema manager,
// the entity loader and the query executor. Components receive it explicitly;
// there is no process-wide connection.
//
// Thread-Safety: Implementations follow their underlying pool's guarantees.
type DBConnection interface {
	// Exec executes a statement without returning any rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// QueryRow executes a query that is expected to return at most one row.
	// Always returns a non-nil Row. Errors are deferred until Row's Scan method is called.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// Query executes a query returning any number of rows.
	// The caller must Close the returned Rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// Begin starts a transaction. The caller must Commit or Rollback it.
	Begin(ctx context.Context) (Tx, error)

	// Acquire obtains a dedicated connection from the pool for statements
	// that cannot run in a transaction (CREATE DATABASE).
	// Caller must call Release() on the returned PooledConnection when done.
	Acquire(ctx context.Context) (PooledConnection, error)
}

// Tx is a single database transaction.
// Rollback after Commit is a no-op, so it is safe to defer.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// SendBatch queues all statements of b in one round trip.
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Row represents a single row returned by QueryRow.
type Row interface {
	// Scan reads the values from the row into dest values.
	// Returns an error if no row was found or if the scan fails.
	Scan(dest ...any) error
}

// Rows is a forward-only result set.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// PooledConnection represents a connection acquired from a pool.
// The caller must call Release() when done to return it to the pool.
type PooledConnection interface {
	// Exec executes a statement on this specific connection.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// Release returns the connection to the pool.
	Release()
}

// DatabaseManager defines database lifecycle operations.
type DatabaseManager interface {
	// Exists checks if a database exists.
	Exists(ctx context.Context, conn DBConnection, dbName string) (bool, error)

	// Create creates a new database.
	Create(ctx context.Context, conn DBConnection, dbName string) error

	// EnsureExists creates the database unless it exists and reports whether it did.
	EnsureExists(ctx context.Context, conn DBConnection, dbName string) (bool, error)
}
