package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

const (
	queryDatabaseExists = "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"

	// SQLSTATE duplicate_database
	codeDuplicateDatabase = "42P04"
)

// Manager implements database lifecycle operations using the DBConnection abstraction.
// Stateless and safe for concurrent use.
type Manager struct{}

// New creates a new Manager.
func New() *Manager {
	return &Manager{}
}

// Exists checks if a database exists.
func (m *Manager) Exists(ctx context.Context, conn roomstat.DBConnection, dbName string) (bool, error) {
	var exists bool
	if err := conn.QueryRow(ctx, queryDatabaseExists, dbName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check database existence: %w", err)
	}
	return exists, nil
}

// Create creates a new database. CREATE DATABASE cannot run inside a
// transaction, so it uses a dedicated pooled connection.
func (m *Manager) Create(ctx context.Context, conn roomstat.DBConnection, dbName string) error {
	if dbName == "" {
		return fmt.Errorf("%w: database name is empty", roomstat.ErrInvalidConfig)
	}

	pooledConn, err := conn.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer pooledConn.Release()

	query := fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{dbName}.Sanitize())
	if _, err := pooledConn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create database %q: %w", dbName, err)
	}
	return nil
}

// Drop removes a database if it exists.
func (m *Manager) Drop(ctx context.Context, conn roomstat.DBConnection, dbName string) error {
	pooledConn, err := conn.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer pooledConn.Release()

	query := fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", pgx.Identifier{dbName}.Sanitize())
	if _, err := pooledConn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to drop database %q: %w", dbName, err)
	}
	return nil
}

// EnsureExists creates dbName unless it already exists and reports whether
// it was created. Losing a creation race to another client is not an error.
func (m *Manager) EnsureExists(ctx context.Context, conn roomstat.DBConnection, dbName string) (bool, error) {
	exists, err := m.Exists(ctx, conn, dbName)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err := m.Create(ctx, conn, dbName); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeDuplicateDatabase {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var _ roomstat.DatabaseManager = (*Manager)(nil)
