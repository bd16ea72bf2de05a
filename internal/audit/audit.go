// Package audit keeps an append-only JSON lines log of tag changes.
//
// Every command invocation gets one batch ID so the entries written for a
// multi-file command can be grouped back together.
package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ohspite/xatag/internal/tags"
)

// Entry is one logged change to one file.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Batch     string    `json:"batch"`
	Command   string    `json:"cmd"`
	Path      string    `json:"path"`
	Before    tags.Dict `json:"before,omitempty"`
	After     tags.Dict `json:"after,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Logger appends entries to a log file. A disabled Logger does nothing.
type Logger struct {
	path    string
	enabled bool
	batch   string
	now     func() time.Time
	mu      sync.Mutex
}

// New returns a logger writing to path. If enabled is false the logger is
// a no-op.
func New(path string, enabled bool) *Logger {
	return &Logger{
		path:    path,
		enabled: enabled,
		batch:   uuid.NewString(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Enabled reports whether entries are written.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Batch returns the ID shared by every entry this logger writes.
func (l *Logger) Batch() string {
	return l.batch
}

// Log writes entry, filling in the timestamp and batch ID.
func (l *Logger) Log(entry Entry) error {
	if !l.Enabled() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}
	entry.Batch = l.batch
	entry.Before = entry.Before.Sorted()
	entry.After = entry.After.Sorted()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// LogChange records a file moving from before to after. Unchanged files
// are skipped.
func (l *Logger) LogChange(command, path string, before, after tags.Dict) error {
	if before.Equal(after) {
		return nil
	}
	return l.Log(Entry{Command: command, Path: path, Before: before, After: after})
}

// LogFailure records a file the command could not finish.
func (l *Logger) LogFailure(command, path string, cause error) error {
	return l.Log(Entry{Command: command, Path: path, Error: cause.Error()})
}

// Read returns every well-formed entry in the log. A missing log is empty.
func (l *Logger) Read() ([]Entry, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return entries, nil
}

// ReadBatch returns the entries written under batch.
func (l *Logger) ReadBatch(batch string) ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range all {
		if e.Batch == batch {
			out = append(out, e)
		}
	}
	return out, nil
}
