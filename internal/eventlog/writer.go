package eventlog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/tuifocus/internal/model"
)

// Writer appends records to a log file. The file is opened per append so
// readers always see complete lines once Append returns.
type Writer struct {
	path string
}

// NewWriter returns a writer for path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the log file location.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one line for rec, creating the file and its directory.
func (w *Writer) Append(rec model.EventRecord) error {
	if w.path == "" {
		return fmt.Errorf("event log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	if _, err := f.WriteString(FormatLine(rec) + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("write event log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close event log: %w", err)
	}
	return nil
}

// ReadFile parses every valid line of the log at path in file order.
// A missing file yields no records and no error.
func ReadFile(ctx context.Context, path string, loc *time.Location) ([]model.EventRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of a read-only handle.
			_ = cerr
		}
	}()

	var records []model.EventRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rec, ok := ParseLine(scanner.Text(), loc); ok {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}
	return records, nil
}
