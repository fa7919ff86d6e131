// Package services orchestrates the roomstat pipeline: parse the input
// documents, connect, ensure the schema, load, optionally index, then run
// and export the queries.
package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvka-141/roomstat/internal/entity"
	"github.com/vvka-141/roomstat/internal/export"
	"github.com/vvka-141/roomstat/internal/loader"
	"github.com/vvka-141/roomstat/internal/query"
	"github.com/vvka-141/roomstat/internal/schema"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// stdinPath names standard input as an input document.
const stdinPath = "-"

// RunReport summarizes a completed run.
type RunReport struct {
	Load roomstat.LoadSummary

	// Outputs lists where each exported document went, in query order.
	Outputs []string

	// DatabaseCreated is set when the run had to create the target database.
	DatabaseCreated bool

	ReferenceDate roomstat.Date
	Duration      time.Duration
}

// QueryOptions selects and exports query results without loading anything.
type QueryOptions struct {
	Queries   []roomstat.QueryID
	Format    roomstat.Format
	OutputDir string
	AsOf      roomstat.Date
}

// Pipeline runs load, query and export steps against one database.
//
// Pipeline is safe for concurrent use as long as the injected dependencies
// are.
type Pipeline struct {
	open   Opener
	dbm    roomstat.DatabaseManager
	logger roomstat.Logger
	stdin  io.Reader
	stdout io.Writer
}

// NewPipeline creates a Pipeline with all dependencies injected.
// stdin feeds an input path of "-" and stdout receives documents when the
// output directory is "-".
//
// Panics if any dependency is nil.
func NewPipeline(open Opener, dbm roomstat.DatabaseManager, logger roomstat.Logger, stdin io.Reader, stdout io.Writer) *Pipeline {
	if open == nil {
		panic("opener cannot be nil")
	}
	if dbm == nil {
		panic("databaseManager cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if stdin == nil {
		panic("stdin cannot be nil")
	}
	if stdout == nil {
		panic("stdout cannot be nil")
	}
	return &Pipeline{open: open, dbm: dbm, logger: logger, stdin: stdin, stdout: stdout}
}

// Run executes the whole pipeline. Both documents are parsed before any
// connection is made, so malformed input never touches the database.
func (p *Pipeline) Run(ctx context.Context, cfg *roomstat.RunConfig) (*RunReport, error) {
	if cfg == nil {
		return nil, fmt.Errorf("run config is required: %w", roomstat.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	rooms, students, err := p.parseInputs(cfg.RoomsPath, cfg.StudentsPath)
	if err != nil {
		return nil, err
	}

	report := &RunReport{}
	if cfg.CreateDatabase {
		report.DatabaseCreated, err = p.ensureDatabase(ctx, cfg.Connection, cfg.MaintenanceDatabase)
		if err != nil {
			return nil, err
		}
	}

	conn, release, err := p.connect(ctx, cfg.Connection)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := schema.EnsureTables(ctx, conn); err != nil {
		return nil, err
	}

	report.Load, err = loader.New(conn, p.logger).LoadRecords(ctx, rooms, students)
	if err != nil {
		return nil, err
	}

	if cfg.ApplyIndexes {
		p.logger.Verbose("Applying indexes")
		if err := schema.ApplyIndexes(ctx, conn); err != nil {
			return nil, err
		}
	}

	executor := query.NewExecutor(conn, query.WithReferenceDate(cfg.AsOf))
	report.ReferenceDate = executor.ReferenceDate()
	report.Outputs, err = p.exportQueries(ctx, executor, cfg.SelectedQueries(), cfg.Format, cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	return report, nil
}

// Load parses both documents and loads them into an existing schema,
// creating the tables first when they are missing.
func (p *Pipeline) Load(ctx context.Context, conn *roomstat.ConnectionConfig, roomsPath, studentsPath string) (roomstat.LoadSummary, error) {
	rooms, students, err := p.parseInputs(roomsPath, studentsPath)
	if err != nil {
		return roomstat.LoadSummary{}, err
	}

	db, release, err := p.connect(ctx, conn)
	if err != nil {
		return roomstat.LoadSummary{}, err
	}
	defer release()

	if err := schema.EnsureTables(ctx, db); err != nil {
		return roomstat.LoadSummary{}, err
	}
	return loader.New(db, p.logger).LoadRecords(ctx, rooms, students)
}

// Query runs the selected queries against data that is already loaded and
// exports each result.
func (p *Pipeline) Query(ctx context.Context, conn *roomstat.ConnectionConfig, opts QueryOptions) ([]string, error) {
	if _, err := roomstat.ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	ids := opts.Queries
	if len(ids) == 0 {
		ids = roomstat.AllQueries()
	}

	db, release, err := p.connect(ctx, conn)
	if err != nil {
		return nil, err
	}
	defer release()

	executor := query.NewExecutor(db, query.WithReferenceDate(opts.AsOf))
	return p.exportQueries(ctx, executor, ids, opts.Format, opts.OutputDir)
}

// Schema creates the database when asked to, then the tables and, if
// indexes is set, the indexes.
func (p *Pipeline) Schema(ctx context.Context, conn *roomstat.ConnectionConfig, maintenanceDB string, createDatabase, indexes bool) (bool, error) {
	created := false
	if createDatabase {
		var err error
		if created, err = p.ensureDatabase(ctx, conn, maintenanceDB); err != nil {
			return false, err
		}
	}

	db, release, err := p.connect(ctx, conn)
	if err != nil {
		return created, err
	}
	defer release()

	if err := schema.EnsureTables(ctx, db); err != nil {
		return created, err
	}
	if indexes {
		if err := schema.ApplyIndexes(ctx, db); err != nil {
			return created, err
		}
	}
	return created, nil
}

func (p *Pipeline) connect(ctx context.Context, conn *roomstat.ConnectionConfig) (roomstat.DBConnection, func(), error) {
	if conn == nil {
		return nil, nil, fmt.Errorf("connection is required: %w", roomstat.ErrInvalidConfig)
	}
	p.logger.Verbose("Connecting to database '%s'", conn.Database)
	return p.open(ctx, conn)
}

func (p *Pipeline) ensureDatabase(ctx context.Context, conn *roomstat.ConnectionConfig, maintenanceDB string) (bool, error) {
	if conn == nil {
		return false, fmt.Errorf("connection is required: %w", roomstat.ErrInvalidConfig)
	}
	if maintenanceDB == "" {
		maintenanceDB = roomstat.DefaultManagementDB
	}

	p.logger.Verbose("Ensuring database '%s' exists (via '%s')", conn.Database, maintenanceDB)
	maintenance, release, err := p.open(ctx, conn.WithDatabase(maintenanceDB))
	if err != nil {
		return false, err
	}
	defer release()

	created, err := schema.EnsureDatabaseOn(ctx, maintenance, p.dbm, conn.Database)
	if err != nil {
		return false, err
	}
	if created {
		p.logger.Info("Created database '%s'", conn.Database)
	}
	return created, nil
}

// exportQueries runs and renders every query before writing anything, so a
// failing query leaves no output behind. Files are numbered by query ordinal
// so a file name always identifies its query, whatever subset is selected.
func (p *Pipeline) exportQueries(ctx context.Context, executor *query.Executor, ids []roomstat.QueryID, format roomstat.Format, outputDir string) ([]string, error) {
	docs := make([][]byte, len(ids))
	for i, id := range ids {
		res, err := executor.Run(ctx, id)
		if err != nil {
			return nil, err
		}
		doc, err := export.Render(res, format)
		if err != nil {
			return nil, err
		}
		p.logger.Verbose("Rendered %s (%d rows)", id, len(res.Rows))
		docs[i] = doc
	}

	sink := export.NewSink(outputDir, p.stdout)
	outputs := make([]string, 0, len(ids))
	for i, id := range ids {
		where, err := sink.Write(export.OutputFileName(id.Ordinal(), id, format), docs[i])
		if err != nil {
			return outputs, err
		}
		p.logger.Verbose("Exported %s to %s", id, where)
		outputs = append(outputs, where)
	}
	return outputs, nil
}

func (p *Pipeline) parseInputs(roomsPath, studentsPath string) ([]roomstat.Room, []roomstat.Student, error) {
	var rooms []roomstat.Room
	err := p.withInput(roomsPath, func(r io.Reader) error {
		var err error
		rooms, err = entity.ParseRooms(r, roomsPath)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	var students []roomstat.Student
	err = p.withInput(studentsPath, func(r io.Reader) error {
		var err error
		students, err = entity.ParseStudents(r, studentsPath)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	p.logger.Verbose("Parsed %d rooms and %d students", len(rooms), len(students))
	return rooms, students, nil
}

func (p *Pipeline) withInput(path string, fn func(io.Reader) error) error {
	if path == stdinPath {
		return fn(p.stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return &roomstat.ParseError{Source: path, Index: -1, Err: err}
	}
	defer f.Close()
	return fn(f)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
