// Package loader inserts rooms and students into the store in one
// transaction, rooms first, after checking that every student's room exists.
//
// Loading is idempotent by id: a record whose id is already stored is
// skipped, not updated. LoadSummary reports inserted and skipped counts.
package loader

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/roomstat/internal/entity"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

const (
	insertRoomSQL = `INSERT INTO room (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`

	insertStudentSQL = `INSERT INTO student (id, name, birthday, room, sex) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`

	existingRoomsSQL = `SELECT id FROM room WHERE id = ANY($1::bigint[])`

	// batchSize caps the statements queued in one pgx.Batch.
	batchSize = 1000
)

// Loader loads rooms and students through an explicit connection.
type Loader struct {
	conn   roomstat.DBConnection
	logger roomstat.Logger
}

// New creates a Loader. Panics if conn or logger is nil.
func New(conn roomstat.DBConnection, logger roomstat.Logger) *Loader {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Loader{conn: conn, logger: logger}
}

// Load parses both documents and loads them. Nothing is written unless both
// documents parse and every student's room exists.
func (l *Loader) Load(ctx context.Context, rooms, students io.Reader) (roomstat.LoadSummary, error) {
	roomRecords, err := entity.ParseRooms(rooms, "rooms")
	if err != nil {
		return roomstat.LoadSummary{}, err
	}
	studentRecords, err := entity.ParseStudents(students, "students")
	if err != nil {
		return roomstat.LoadSummary{}, err
	}
	return l.LoadRecords(ctx, roomRecords, studentRecords)
}

// LoadRecords inserts already parsed records. On any error the transaction
// is rolled back and the store is left unchanged.
func (l *Loader) LoadRecords(ctx context.Context, rooms []roomstat.Room, students []roomstat.Student) (summary roomstat.LoadSummary, err error) {
	start := time.Now()

	tx, err := l.conn.Begin(ctx)
	if err != nil {
		return summary, fmt.Errorf("begin load transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit.
		if rbErr := tx.Rollback(ctx); rbErr != nil && err == nil {
			err = fmt.Errorf("rollback load transaction: %w", rbErr)
		}
	}()

	if err := l.checkRoomReferences(ctx, tx, rooms, students); err != nil {
		return roomstat.LoadSummary{}, err
	}

	summary.RoomsInserted, err = insertAll(ctx, tx, insertRoomSQL, len(rooms), func(i int) []any {
		return []any{rooms[i].ID, rooms[i].Name}
	})
	if err != nil {
		return roomstat.LoadSummary{}, fmt.Errorf("insert rooms: %w", err)
	}
	summary.RoomsSkipped = len(rooms) - summary.RoomsInserted

	summary.StudentsInserted, err = insertAll(ctx, tx, insertStudentSQL, len(students), func(i int) []any {
		s := students[i]
		return []any{s.ID, s.Name, s.Birthday.Time, s.Room, string(s.Sex)}
	})
	if err != nil {
		return roomstat.LoadSummary{}, fmt.Errorf("insert students: %w", err)
	}
	summary.StudentsSkipped = len(students) - summary.StudentsInserted

	if err := tx.Commit(ctx); err != nil {
		return roomstat.LoadSummary{}, fmt.Errorf("commit load transaction: %w", err)
	}

	summary.Duration = time.Since(start)
	l.logger.Verbose("Loaded rooms: %d inserted, %d already present", summary.RoomsInserted, summary.RoomsSkipped)
	l.logger.Verbose("Loaded students: %d inserted, %d already present", summary.StudentsInserted, summary.StudentsSkipped)
	return summary, nil
}

// checkRoomReferences fails with the first student, in input order, whose
// room is neither in rooms nor already stored.
func (l *Loader) checkRoomReferences(ctx context.Context, tx roomstat.Tx, rooms []roomstat.Room, students []roomstat.Student) error {
	known := make(map[int64]bool, len(rooms))
	for _, r := range rooms {
		known[r.ID] = true
	}

	var unknown []int64
	pending := make(map[int64]bool)
	for _, s := range students {
		if !known[s.Room] && !pending[s.Room] {
			pending[s.Room] = true
			unknown = append(unknown, s.Room)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	l.logger.Verbose("Looking up %d referenced rooms not in the input", len(unknown))
	rows, err := tx.Query(ctx, existingRoomsSQL, unknown)
	if err != nil {
		return fmt.Errorf("look up existing rooms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("look up existing rooms: %w", err)
		}
		known[id] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("look up existing rooms: %w", err)
	}

	for _, s := range students {
		if !known[s.Room] {
			return &roomstat.ReferentialIntegrityError{StudentID: s.ID, RoomID: s.Room}
		}
	}
	return nil
}

// insertAll queues n inserts in batches of batchSize and returns the number
// of rows actually inserted.
func insertAll(ctx context.Context, tx roomstat.Tx, sql string, n int, args func(i int) []any) (int, error) {
	inserted := 0
	for offset := 0; offset < n; offset += batchSize {
		end := min(offset+batchSize, n)

		batch := &pgx.Batch{}
		for i := offset; i < end; i++ {
			batch.Queue(sql, args(i)...)
		}

		results := tx.SendBatch(ctx, batch)
		for i := offset; i < end; i++ {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return 0, fmt.Errorf("record %d: %w", i, err)
			}
			inserted += int(tag.RowsAffected())
		}
		if err := results.Close(); err != nil {
			return 0, fmt.Errorf("complete batch: %w", err)
		}
	}
	return inserted, nil
}
