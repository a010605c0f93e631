package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "state", "state.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKeyValueLifecycle(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Get("token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: got %v, want ErrNotFound", err)
	}

	if err := s.Set("token", "t1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("token", "t2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := s.Get("token")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "t2" {
		t.Errorf("Get = %q, want t2", got)
	}

	if err := s.Delete("token"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("token"); err != nil {
		t.Fatalf("Delete absent key: %v", err)
	}
	if _, err := s.Get("token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: got %v, want ErrNotFound", err)
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.Set("username", "ada"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_ = s.Close()

	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, err := s2.Get("username")
	if err != nil || got != "ada" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}

func TestSessionHistory(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().Add(-time.Hour)

	if err := s.RecordSession(Session{ID: "a", Origin: OriginFile, Source: "repo.zip", CreatedAt: base}); err != nil {
		t.Fatalf("RecordSession a: %v", err)
	}
	if err := s.RecordSession(Session{ID: "b", Origin: OriginGit, Source: "https://github.com/a/b.git", CreatedAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("RecordSession b: %v", err)
	}

	rec, err := s.GetSession("a")
	if err != nil || rec == nil {
		t.Fatalf("GetSession a = %v, %v", rec, err)
	}
	if rec.Origin != OriginFile || rec.Status != StatusIngested {
		t.Errorf("record a = %+v", rec)
	}

	if err := s.UpdateStatus("a", StatusDone); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	list, err := s.ListSessions(10)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d records, want 2", len(list))
	}
	if list[0].ID != "a" || list[0].Status != StatusDone {
		t.Errorf("most recently updated should be a/done, got %s/%s", list[0].ID, list[0].Status)
	}

	if err := s.ClearSessions(); err != nil {
		t.Fatalf("ClearSessions: %v", err)
	}
	list, _ = s.ListSessions(10)
	if len(list) != 0 {
		t.Errorf("history not cleared: %d rows", len(list))
	}
}

func TestGetSessionMissing(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.GetSession("missing")
	if err != nil || rec != nil {
		t.Errorf("GetSession(missing) = %v, %v; want nil, nil", rec, err)
	}
}

func TestOriginValid(t *testing.T) {
	if !OriginFile.Valid() || !OriginGit.Valid() {
		t.Error("known origins should be valid")
	}
	if Origin("ftp").Valid() {
		t.Error("ftp should not be a valid origin")
	}
}

func TestDeleteSessionAndUnlimitedList(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.RecordSession(Session{ID: id, Origin: OriginGit, Source: "https://example.com/" + id + ".git"}); err != nil {
			t.Fatalf("RecordSession(%s): %v", id, err)
		}
	}

	if err := s.DeleteSession("b"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := s.DeleteSession("missing"); err != nil {
		t.Errorf("deleting an absent id: %v", err)
	}

	list, err := s.ListSessions(0)
	if err != nil {
		t.Fatalf("ListSessions(0): %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d rows, want 2", len(list))
	}
	for _, r := range list {
		if r.ID == "b" {
			t.Error("deleted session still listed")
		}
	}
}
