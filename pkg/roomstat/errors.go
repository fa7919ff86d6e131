package roomstat

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error kinds using errors.Is().
//
// Example usage:
//
//	_, err := loader.Load(ctx, rooms, students)
//	if errors.Is(err, roomstat.ErrReferentialIntegrity) {
//	    // A student points at a room that does not exist
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrParse indicates an input document is not well-formed or holds invalid records.
	ErrParse = errors.New("parse error")

	// ErrReferentialIntegrity indicates a student references a room that does not exist.
	ErrReferentialIntegrity = errors.New("referential integrity violation")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrQuery indicates an aggregation query failed.
	ErrQuery = errors.New("query failed")

	// ErrUnsupportedFormat indicates an unknown export format was requested.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExport indicates the output document could not be written.
	ErrExport = errors.New("export failed")

	// ErrSchema indicates table or index DDL could not be applied.
	ErrSchema = errors.New("schema setup failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// ParseError reports a malformed input document or an invalid record in it.
// Index is the zero-based position of the offending record, or -1 when the
// document itself could not be decoded.
type ParseError struct {
	Source string
	Index  int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("parse %s: record %d: %v", e.Source, e.Index, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports ErrParse so callers can match the kind without a type assertion.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ReferentialIntegrityError names the student whose room does not exist.
type ReferentialIntegrityError struct {
	StudentID int64
	RoomID    int64
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("student %d references unknown room %d", e.StudentID, e.RoomID)
}

func (e *ReferentialIntegrityError) Is(target error) bool { return target == ErrReferentialIntegrity }

// ConnectionError wraps a failure to reach or authenticate to the store.
type ConnectionError struct {
	Host     string
	Port     int
	Database string
	Err      error
}

func (e *ConnectionError) Error() string {
	if e.Host == "" {
		return fmt.Sprintf("connection failed: %v", e.Err)
	}
	return fmt.Sprintf("connection to %s:%d/%s failed: %v", e.Host, e.Port, e.Database, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnectionFailed }

// QueryError carries the query that failed and the underlying cause.
type QueryError struct {
	Query QueryID
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func (e *QueryError) Is(target error) bool { return target == ErrQuery }

// UnsupportedFormatError is returned for an export format other than json or xml.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q (expected one of: %s)", e.Format, strings.Join(FormatNames(), ", "))
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// ExportError wraps a failure to serialize or write an output document.
type ExportError struct {
	Sink string
	Err  error
}

func (e *ExportError) Error() string {
	if e.Sink == "" {
		return fmt.Sprintf("export: %v", e.Err)
	}
	return fmt.Sprintf("export to %s: %v", e.Sink, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

func (e *ExportError) Is(target error) bool { return target == ErrExport }

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return ExitUsageError
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrParse):
		return ExitParseError
	case errors.Is(err, ErrReferentialIntegrity):
		return ExitReferentialIntegrity
	case errors.Is(err, ErrQuery):
		return ExitQueryFailed
	case errors.Is(err, ErrExport):
		return ExitExportFailed
	}

	if isUsageError(err) {
		return ExitUsageError
	}

	// Connection failures that escaped the typed wrapper
	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// isUsageError recognizes cobra's argument and flag validation messages.
func isUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"requires at least",
		"required flag",
		"invalid argument",
		"missing required argument",
	} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
