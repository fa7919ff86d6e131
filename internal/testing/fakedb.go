package testing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// FakeConn is an in-memory roomstat.DBConnection for unit tests.
// Nil funcs fall back to success with empty results. Every statement is
// recorded in Statements.
type FakeConn struct {
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) roomstat.Row
	QueryFunc    func(ctx context.Context, sql string, args ...any) (roomstat.Rows, error)
	BeginFunc    func(ctx context.Context) (roomstat.Tx, error)
	AcquireFunc  func(ctx context.Context) (roomstat.PooledConnection, error)

	mu         sync.Mutex
	Statements []string
}

func (c *FakeConn) record(sql string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Statements = append(c.Statements, sql)
}

func (c *FakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.record(sql)
	if c.ExecFunc != nil {
		return c.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (c *FakeConn) QueryRow(ctx context.Context, sql string, args ...any) roomstat.Row {
	c.record(sql)
	if c.QueryRowFunc != nil {
		return c.QueryRowFunc(ctx, sql, args...)
	}
	return &FakeRow{}
}

func (c *FakeConn) Query(ctx context.Context, sql string, args ...any) (roomstat.Rows, error) {
	c.record(sql)
	if c.QueryFunc != nil {
		return c.QueryFunc(ctx, sql, args...)
	}
	return &FakeRows{}, nil
}

func (c *FakeConn) Begin(ctx context.Context) (roomstat.Tx, error) {
	if c.BeginFunc != nil {
		return c.BeginFunc(ctx)
	}
	return &FakeTx{}, nil
}

func (c *FakeConn) Acquire(ctx context.Context) (roomstat.PooledConnection, error) {
	if c.AcquireFunc != nil {
		return c.AcquireFunc(ctx)
	}
	return &FakePooledConn{}, nil
}

// FakeRow returns Values from Scan, or Err when set.
type FakeRow struct {
	Values []any
	Err    error
}

func (r *FakeRow) Scan(dest ...any) error {
	if r.Err != nil {
		return r.Err
	}
	return assign(dest, r.Values)
}

// FakeRows iterates over Data. Failure is reported by Err() after iteration.
type FakeRows struct {
	Data    [][]any
	Failure error
	pos     int
	Closed  bool
}

func (r *FakeRows) Next() bool {
	if r.Closed || r.pos >= len(r.Data) {
		return false
	}
	r.pos++
	return true
}

func (r *FakeRows) Scan(dest ...any) error {
	if r.pos == 0 || r.pos > len(r.Data) {
		return errors.New("scan called without a current row")
	}
	return assign(dest, r.Data[r.pos-1])
}

func (r *FakeRows) Err() error { return r.Failure }

func (r *FakeRows) Close() { r.Closed = true }

// assign copies values into scan destinations. Destinations implementing
// sql.Scanner (pgtype.Int8, pgtype.Text, ...) receive the raw value.
func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		if scanner, ok := d.(sql.Scanner); ok {
			if err := scanner.Scan(values[i]); err != nil {
				return fmt.Errorf("scan column %d: %w", i, err)
			}
			continue
		}
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("scan column %d: destination is not a pointer", i)
		}
		elem := target.Elem()
		if values[i] == nil {
			elem.Set(reflect.Zero(elem.Type()))
			continue
		}
		v := reflect.ValueOf(values[i])
		if !v.Type().AssignableTo(elem.Type()) {
			if !v.Type().ConvertibleTo(elem.Type()) {
				return fmt.Errorf("scan column %d: cannot assign %T to %s", i, values[i], elem.Type())
			}
			v = v.Convert(elem.Type())
		}
		elem.Set(v)
	}
	return nil
}

// FakeTx records batches and its final state.
type FakeTx struct {
	ExecFunc      func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc     func(ctx context.Context, sql string, args ...any) (roomstat.Rows, error)
	SendBatchFunc func(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	CommitErr     error

	Batches    []*pgx.Batch
	Committed  bool
	RolledBack bool
}

func (t *FakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.ExecFunc != nil {
		return t.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (t *FakeTx) Query(ctx context.Context, sql string, args ...any) (roomstat.Rows, error) {
	if t.QueryFunc != nil {
		return t.QueryFunc(ctx, sql, args...)
	}
	return &FakeRows{}, nil
}

// SendBatch reports every queued statement as inserting one row unless
// SendBatchFunc says otherwise.
func (t *FakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	t.Batches = append(t.Batches, b)
	if t.SendBatchFunc != nil {
		return t.SendBatchFunc(ctx, b)
	}
	tags := make([]pgconn.CommandTag, b.Len())
	for i := range tags {
		tags[i] = pgconn.NewCommandTag("INSERT 0 1")
	}
	return &FakeBatchResults{Tags: tags}
}

func (t *FakeTx) Commit(ctx context.Context) error {
	if t.RolledBack {
		return pgx.ErrTxClosed
	}
	if t.CommitErr != nil {
		return t.CommitErr
	}
	t.Committed = true
	return nil
}

func (t *FakeTx) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// FakeBatchResults returns Tags in order. ErrAt (1-based) makes that Exec fail with Err.
type FakeBatchResults struct {
	Tags  []pgconn.CommandTag
	ErrAt int
	Err   error
	pos   int
}

func (r *FakeBatchResults) Exec() (pgconn.CommandTag, error) {
	r.pos++
	if r.ErrAt > 0 && r.pos == r.ErrAt {
		return pgconn.CommandTag{}, r.Err
	}
	if r.pos > len(r.Tags) {
		return pgconn.CommandTag{}, errors.New("no result")
	}
	return r.Tags[r.pos-1], nil
}

func (r *FakeBatchResults) Query() (pgx.Rows, error) {
	return nil, errors.New("FakeBatchResults: Query not supported")
}

func (r *FakeBatchResults) QueryRow() pgx.Row {
	return &FakeRow{Err: errors.New("FakeBatchResults: QueryRow not supported")}
}

func (r *FakeBatchResults) Close() error { return nil }

// FakePooledConn records statements executed on an acquired connection.
type FakePooledConn struct {
	ExecFunc   func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Statements []string
	Released   bool
}

func (p *FakePooledConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.Statements = append(p.Statements, sql)
	if p.ExecFunc != nil {
		return p.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (p *FakePooledConn) Release() { p.Released = true }

var (
	_ roomstat.DBConnection     = (*FakeConn)(nil)
	_ roomstat.Tx               = (*FakeTx)(nil)
	_ roomstat.Rows             = (*FakeRows)(nil)
	_ roomstat.PooledConnection = (*FakePooledConn)(nil)
	_ pgx.BatchResults          = (*FakeBatchResults)(nil)
)
