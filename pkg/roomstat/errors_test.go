package roomstat_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, roomstat.ExitSuccess},
		{"general error", errors.New("something went wrong"), roomstat.ExitGeneralError},
		{"unknown flag", errors.New("unknown flag --foo"), roomstat.ExitUsageError},
		{"accepts args", errors.New("accepts 3 arg(s), received 0"), roomstat.ExitUsageError},
		{"unsupported format", &roomstat.UnsupportedFormatError{Format: "csv"}, roomstat.ExitUsageError},
		{"invalid config", fmt.Errorf("bad: %w", roomstat.ErrInvalidConfig), roomstat.ExitConfigError},
		{"connection", &roomstat.ConnectionError{Err: errors.New("refused")}, roomstat.ExitConnectionError},
		{"connection refused text", errors.New("dial tcp: connection refused"), roomstat.ExitConnectionError},
		{"parse", &roomstat.ParseError{Source: "rooms.json", Index: -1, Err: errors.New("eof")}, roomstat.ExitParseError},
		{"referential", &roomstat.ReferentialIntegrityError{StudentID: 1, RoomID: 9}, roomstat.ExitReferentialIntegrity},
		{"query", &roomstat.QueryError{Query: roomstat.QueryMixedSex, Err: errors.New("no table")}, roomstat.ExitQueryFailed},
		{"export", &roomstat.ExportError{Sink: "out.json", Err: errors.New("disk full")}, roomstat.ExitExportFailed},
		{"wrapped referential", fmt.Errorf("load failed: %w", &roomstat.ReferentialIntegrityError{StudentID: 1, RoomID: 2}), roomstat.ExitReferentialIntegrity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := roomstat.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestTypedErrors_UnwrapToCause(t *testing.T) {
	cause := errors.New("underlying")

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"parse", &roomstat.ParseError{Source: "s", Index: 0, Err: cause}, roomstat.ErrParse},
		{"connection", &roomstat.ConnectionError{Err: cause}, roomstat.ErrConnectionFailed},
		{"query", &roomstat.QueryError{Query: roomstat.QueryAgeSpread, Err: cause}, roomstat.ErrQuery},
		{"export", &roomstat.ExportError{Err: cause}, roomstat.ErrExport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("expected %v to match sentinel %v", tt.err, tt.sentinel)
			}
			if !errors.Is(tt.err, cause) {
				t.Errorf("expected %v to unwrap to its cause", tt.err)
			}
		})
	}
}

func TestReferentialIntegrityError_Message(t *testing.T) {
	err := &roomstat.ReferentialIntegrityError{StudentID: 42, RoomID: 7}
	want := "student 42 references unknown room 7"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var rie *roomstat.ReferentialIntegrityError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &rie) || rie.StudentID != 42 {
		t.Errorf("errors.As failed to recover the typed error")
	}
}

func TestParseError_Message(t *testing.T) {
	err := &roomstat.ParseError{Source: "students.json", Index: 3, Err: errors.New("sex must be M or F")}
	want := "parse students.json: record 3: sex must be M or F"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
