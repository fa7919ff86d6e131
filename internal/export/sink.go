package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// StdoutTarget selects the writer sink instead of an output directory.
const StdoutTarget = "-"

// Sink stores finished documents and returns where each one went.
type Sink interface {
	Write(name string, doc []byte) (string, error)
}

// OutputFileName numbers documents the way the query order does:
// OutputFileName(1, room-occupancy, json) is "output_1_room-occupancy.json".
func OutputFileName(index int, id roomstat.QueryID, format roomstat.Format) string {
	return fmt.Sprintf("output_%d_%s%s", index, id, format.Extension())
}

// NewSink returns a WriterSink on stdout for StdoutTarget and a FileSink
// rooted at target otherwise.
func NewSink(target string, stdout io.Writer) Sink {
	if target == StdoutTarget {
		return &WriterSink{W: stdout}
	}
	return &FileSink{Dir: target}
}

// FileSink writes each document to its own file in Dir.
type FileSink struct {
	Dir string
}

// Write stores doc as Dir/name. The document goes to a hidden temp file in
// Dir first and is renamed into place once fully written and closed.
func (s *FileSink) Write(name string, doc []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	target := filepath.Join(dir, name)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &roomstat.ExportError{Sink: target, Err: err}
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.NewString()))
	if err := writeFile(tmp, doc); err != nil {
		_ = os.Remove(tmp)
		return "", &roomstat.ExportError{Sink: target, Err: err}
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", &roomstat.ExportError{Sink: target, Err: err}
	}
	return target, nil
}

func writeFile(path string, doc []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriterSink writes every document to W one after another.
type WriterSink struct {
	W io.Writer
}

func (s *WriterSink) Write(name string, doc []byte) (string, error) {
	if _, err := s.W.Write(doc); err != nil {
		return "", &roomstat.ExportError{Sink: StdoutTarget, Err: fmt.Errorf("%s: %w", name, err)}
	}
	return StdoutTarget, nil
}
