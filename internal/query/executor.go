// Package query runs the four fixed room statistics queries and returns
// fully materialized, typed rows.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// Field is one named value of a result row. Value is int64, string,
// roomstat.Decimal or nil.
type Field struct {
	Name  string
	Value any
}

// Row keeps its fields in column order.
type Row []Field

// Get returns the value of the named field.
func (r Row) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Result is the complete output of one query.
type Result struct {
	Query   roomstat.QueryID
	Columns []string
	Rows    []Row
}

// Option configures an Executor.
type Option func(*Executor)

// WithReferenceDate fixes the date ages are computed against.
func WithReferenceDate(d roomstat.Date) Option {
	return func(e *Executor) {
		if !d.IsZero() {
			e.referenceDate = func() roomstat.Date { return d }
		}
	}
}

// Executor runs queries over an explicit connection.
type Executor struct {
	conn          roomstat.DBConnection
	referenceDate func() roomstat.Date
}

// NewExecutor creates an Executor. Without WithReferenceDate ages are
// computed against today's UTC date. Panics if conn is nil.
func NewExecutor(conn roomstat.DBConnection, opts ...Option) *Executor {
	if conn == nil {
		panic("conn cannot be nil")
	}
	e := &Executor{
		conn:          conn,
		referenceDate: func() roomstat.Date { return roomstat.DateOf(time.Now().UTC()) },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReferenceDate returns the date the next Run will use.
func (e *Executor) ReferenceDate() roomstat.Date {
	return e.referenceDate()
}

// Run executes one query. Any failure, including a cancelled context, is a
// *roomstat.QueryError and no partial result is returned.
func (e *Executor) Run(ctx context.Context, id roomstat.QueryID) (*Result, error) {
	def, ok := definitions[id]
	if !ok {
		return nil, &roomstat.QueryError{Query: id, Err: fmt.Errorf("unknown query (expected one of %v)", roomstat.AllQueries())}
	}

	var args []any
	if def.dated {
		args = append(args, e.referenceDate().Time)
	}

	rows, err := e.conn.Query(ctx, def.sql, args...)
	if err != nil {
		return nil, &roomstat.QueryError{Query: id, Err: err}
	}
	defer rows.Close()

	result := &Result{Query: id, Columns: Columns(id), Rows: []Row{}}
	for rows.Next() {
		row, err := scanRow(rows, def.columns)
		if err != nil {
			return nil, &roomstat.QueryError{Query: id, Err: err}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &roomstat.QueryError{Query: id, Err: err}
	}
	return result, nil
}

// RunAll runs every query in its fixed order and stops at the first failure.
func (e *Executor) RunAll(ctx context.Context) ([]*Result, error) {
	return e.RunSelected(ctx, roomstat.AllQueries())
}

// RunSelected runs ids in the given order.
func (e *Executor) RunSelected(ctx context.Context, ids []roomstat.QueryID) ([]*Result, error) {
	results := make([]*Result, 0, len(ids))
	for _, id := range ids {
		res, err := e.Run(ctx, id)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func scanRow(rows roomstat.Rows, columns []column) (Row, error) {
	dest := make([]any, len(columns))
	for i, c := range columns {
		if c.kind == kindInt {
			dest[i] = &pgtype.Int8{}
		} else {
			dest[i] = &pgtype.Text{}
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	row := make(Row, len(columns))
	for i, c := range columns {
		row[i].Name = c.name
		switch v := dest[i].(type) {
		case *pgtype.Int8:
			if v.Valid {
				row[i].Value = v.Int64
			}
		case *pgtype.Text:
			if !v.Valid {
				continue
			}
			if c.kind == kindText {
				row[i].Value = v.String
				continue
			}
			d, err := roomstat.ParseDecimal(v.String)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.name, err)
			}
			row[i].Value = d
		}
	}
	return row, nil
}
