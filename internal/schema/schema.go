// Package schema creates the room and student tables and the optional
// indexes that speed up the aggregation queries.
package schema

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

var (
	//go:embed schema.sql
	tablesDDL string

	//go:embed indexes.sql
	indexesDDL string
)

// Tables and Indexes return the embedded DDL.
func Tables() string  { return tablesDDL }
func Indexes() string { return indexesDDL }

// EnsureTables creates room and student if they do not exist.
func EnsureTables(ctx context.Context, conn roomstat.DBConnection) error {
	if _, err := conn.Exec(ctx, tablesDDL); err != nil {
		return fmt.Errorf("%w: create tables: %w", roomstat.ErrSchema, err)
	}
	return nil
}

// ApplyIndexes creates the query indexes. Safe to run repeatedly.
func ApplyIndexes(ctx context.Context, conn roomstat.DBConnection) error {
	if _, err := conn.Exec(ctx, indexesDDL); err != nil {
		return fmt.Errorf("%w: create indexes: %w", roomstat.ErrSchema, err)
	}
	return nil
}

// EnsureDatabaseOn creates name through an open maintenance connection.
func EnsureDatabaseOn(ctx context.Context, conn roomstat.DBConnection, mgr roomstat.DatabaseManager, name string) (bool, error) {
	created, err := mgr.EnsureExists(ctx, conn, name)
	if err != nil {
		return false, fmt.Errorf("%w: database %q: %w", roomstat.ErrSchema, name, err)
	}
	return created, nil
}
