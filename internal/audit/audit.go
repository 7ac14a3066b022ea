// Package audit keeps a JSON-lines history of processed workbooks.
package audit

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry represents one processed file.
type Entry struct {
	RunID      string    `json:"run_id"`
	Timestamp  time.Time `json:"timestamp"`
	Machine    string    `json:"machine"`
	Command    string    `json:"command"`
	Column     string    `json:"column,omitempty"`
	InputFile  string    `json:"input_file"`
	OutputFile string    `json:"output_file,omitempty"`
	Rows       int       `json:"rows"`
	Merges     int       `json:"merges"`
	ExitCode   int       `json:"exit_code"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Logger appends entries to a file. All entries written through one Logger
// share a run ID.
type Logger struct {
	FilePath string
	Enabled  bool
	RunID    string

	mu sync.Mutex
}

// NewLogger creates a Logger with a fresh run ID.
func NewLogger(filePath string, enabled bool) *Logger {
	return &Logger{
		FilePath: filePath,
		Enabled:  enabled,
		RunID:    uuid.NewString(),
	}
}

// Log writes a single entry. It is best-effort and never fails the command.
func (l *Logger) Log(_ context.Context, entry Entry) error {
	if l == nil || !l.Enabled || l.FilePath == "" {
		return nil
	}

	if entry.RunID == "" {
		entry.RunID = l.RunID
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Machine == "" {
		entry.Machine, _ = os.Hostname()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.FilePath), 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(l.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	defer f.Close()

	_, _ = f.Write(data)
	return nil
}

// ReadEntries reads all entries from the log file.
func ReadEntries(filePath string) ([]Entry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue // skip malformed lines
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// FilterEntries returns entries at or after since whose input path contains file.
func FilterEntries(entries []Entry, since time.Time, file string, failedOnly bool) []Entry {
	var result []Entry
	for _, e := range entries {
		if !since.IsZero() && e.Timestamp.Before(since) {
			continue
		}
		if file != "" && !strings.Contains(e.InputFile, file) {
			continue
		}
		if failedOnly && e.ExitCode == 0 {
			continue
		}
		result = append(result, e)
	}
	return result
}

// Clear truncates the log file.
func Clear(filePath string) error {
	err := os.Truncate(filePath, 0)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
