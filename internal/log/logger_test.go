package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndReadAll(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	if err := l.Append(LogEvent{Event: EventIngestSucceeded, SessionID: "abc", Origin: "file"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append(LogEvent{Event: EventGenerationDone, SessionID: "abc", Polls: 3}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Event != EventIngestSucceeded || events[0].Origin != "file" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Polls != 3 {
		t.Errorf("Polls = %d, want 3", events[1].Polls)
	}
	if events[0].Time.IsZero() {
		t.Error("Time should be set automatically")
	}
}

func TestReadAllMissingFile(t *testing.T) {
	l, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestReadAllMalformedLine(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "log.jsonl"), []byte("{not json}\n"), 0600); err != nil {
		t.Fatal(err)
	}
	l, _ := NewLogger(dir)
	if _, err := l.ReadAll(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestTail(t *testing.T) {
	l, _ := NewLogger(t.TempDir())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		l.Record(LogEvent{Time: base.Add(time.Duration(i) * time.Minute), Event: EventLogin, Progress: i})
	}

	events, err := l.Tail(2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Progress != 3 || events[1].Progress != 4 {
		t.Errorf("Tail returned wrong events: %+v", events)
	}
}

func TestNilLoggerDiscards(t *testing.T) {
	var l *Logger
	if err := l.Append(LogEvent{Event: EventLogout}); err != nil {
		t.Errorf("nil logger Append: %v", err)
	}
	events, err := l.ReadAll()
	if err != nil || len(events) != 0 {
		t.Errorf("nil logger ReadAll = %v, %v", events, err)
	}
}
