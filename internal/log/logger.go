// Package log records client activity as JSON lines under the state directory.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Events recorded by the client.
const (
	EventRegister           = "register"
	EventLogin              = "login"
	EventLogout             = "logout"
	EventIngestSucceeded    = "ingest_succeeded"
	EventIngestFailed       = "ingest_failed"
	EventGenerationStarted  = "generation_started"
	EventGenerationDone     = "generation_done"
	EventGenerationFailed   = "generation_failed"
	EventGenerationTimedOut = "generation_timed_out"
	EventGenerationCanceled = "generation_cancelled"
	EventDownloadCompleted  = "download_completed"
	EventDownloadFailed     = "download_failed"
)

// LogEvent is one line of log.jsonl.
type LogEvent struct {
	Time       time.Time              `json:"time"`
	Event      string                 `json:"event"`
	Username   string                 `json:"username,omitempty"`
	SessionID  string                 `json:"session,omitempty"`
	Origin     string                 `json:"origin,omitempty"`
	Source     string                 `json:"source,omitempty"`
	HandleID   string                 `json:"handle,omitempty"`
	Status     string                 `json:"status,omitempty"`
	Progress   int                    `json:"progress,omitempty"`
	Polls      int                    `json:"polls,omitempty"`
	Path       string                 `json:"path,omitempty"`
	Bytes      int64                  `json:"bytes,omitempty"`
	Error      string                 `json:"error,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// Logger appends events to log.jsonl.
// A nil *Logger discards events.
type Logger struct {
	path string
	mu   sync.Mutex
}

// NewLogger creates a Logger that writes to log.jsonl inside dir.
// dir is created when missing; existing history is kept.
func NewLogger(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	return &Logger{
		path: filepath.Join(dir, "log.jsonl"),
	}, nil
}

// Path returns the log file location.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes event as a single line, stamping Time when unset.
func (l *Logger) Append(event LogEvent) error {
	if l == nil {
		return nil
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write log event: %w", err)
	}

	return nil
}

// Record appends event, ignoring write errors.
func (l *Logger) Record(event LogEvent) {
	_ = l.Append(event)
}

// ReadAll returns every logged event, oldest first. A missing file yields
// no events.
func (l *Logger) ReadAll() ([]LogEvent, error) {
	if l == nil {
		return []LogEvent{}, nil
	}
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []LogEvent{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var events []LogEvent
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event LogEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse log line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	return events, nil
}

// Tail returns at most n of the most recent events.
func (l *Logger) Tail(n int) ([]LogEvent, error) {
	events, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	return events, nil
}
