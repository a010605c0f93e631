package views

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reposcribe/reposcribe-cli/internal/generate"
	"github.com/reposcribe/reposcribe-cli/internal/session"
)

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

// collect runs cmd and any batched commands, returning the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestLoginValidation(t *testing.T) {
	tests := []struct {
		name     string
		register bool
		fields   []string
		wantErr  string
	}{
		{"empty", false, nil, MsgCredentialsRequired},
		{"missing password", false, []string{"ada"}, MsgCredentialsRequired},
		{"short password", true, []string{"ada", "abc", "abc"}, MsgPasswordTooShort},
		{"mismatch", true, []string{"ada", "secret1", "secret2"}, MsgPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewLoginModel(tt.register, 80, 24)
			for i, f := range tt.fields {
				if i > 0 {
					m, _ = m.Update(tab)
				}
				m, _ = m.Update(typeText(f))
			}
			// Move to the last field so enter submits.
			for i := len(tt.fields); i < len(m.inputs); i++ {
				m, _ = m.Update(tab)
			}
			m, cmd := m.Update(enter)
			if m.Err() != tt.wantErr {
				t.Errorf("Err() = %q, want %q", m.Err(), tt.wantErr)
			}
			if cmd != nil || m.Busy() {
				t.Error("invalid form should not submit")
			}
		})
	}
}

func TestLoginSubmit(t *testing.T) {
	m := NewLoginModel(false, 80, 24)
	m, _ = m.Update(typeText("  ada "))
	m, _ = m.Update(enter) // advances to password
	m, _ = m.Update(typeText("secret1"))
	m, cmd := m.Update(enter)
	if !m.Busy() {
		t.Error("submit should mark the form busy")
	}

	var got *SubmitAuthMsg
	for _, msg := range collect(cmd) {
		if s, ok := msg.(SubmitAuthMsg); ok {
			got = &s
		}
	}
	if got == nil {
		t.Fatal("no SubmitAuthMsg")
	}
	if got.Username != "ada" || got.Password != "secret1" || got.Register {
		t.Errorf("submit = %+v", *got)
	}

	m.SetError("Invalid username or password")
	if m.Busy() || m.Err() == "" {
		t.Error("SetError should end the pending submit")
	}
}

func TestLoginSwitchAuth(t *testing.T) {
	m := NewLoginModel(false, 80, 24)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	msgs := collect(cmd)
	if len(msgs) != 1 || msgs[0] != (SwitchAuthMsg{Register: true}) {
		t.Errorf("msgs = %v", msgs)
	}
}

func TestDashboardUploadRequiresPath(t *testing.T) {
	m := NewDashboardModel("ada", 100, 30)
	m, cmd := m.Update(enter)
	if m.Err() != MsgSelectFile || cmd != nil {
		t.Errorf("Err() = %q, cmd = %v", m.Err(), cmd)
	}

	m, _ = m.Update(esc)
	if m.Err() != "" {
		t.Error("esc should dismiss the error")
	}

	m, _ = m.Update(typeText("repo.zip"))
	_, cmd = m.Update(enter)
	msgs := collect(cmd)
	if len(msgs) != 1 || msgs[0] != (SubmitUploadMsg{Path: "repo.zip"}) {
		t.Errorf("msgs = %v", msgs)
	}
}

func TestDashboardCloneValidation(t *testing.T) {
	m := NewDashboardModel("ada", 100, 30)
	m.SetTab(TabClone)

	m, _ = m.Update(typeText("not a url"))
	m, cmd := m.Update(enter)
	if !strings.Contains(m.Err(), "valid Git repository URL") || cmd != nil {
		t.Errorf("Err() = %q", m.Err())
	}

	m = NewDashboardModel("ada", 100, 30)
	m.SetTab(TabClone)
	m, _ = m.Update(typeText("https://github.com/a/b.git"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	m, cmd = m.Update(enter)
	if !strings.Contains(m.Err(), "required for private repositories") || cmd != nil {
		t.Errorf("Err() = %q", m.Err())
	}

	m, _ = m.Update(tab)
	m, _ = m.Update(typeText("u"))
	m, _ = m.Update(tab)
	m, _ = m.Update(typeText("p"))
	_, cmd = m.Update(enter)
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("msgs = %v", msgs)
	}
	sub, ok := msgs[0].(SubmitCloneMsg)
	if !ok || !sub.Request.Private || sub.Request.Username != "u" || sub.Request.Password != "p" {
		t.Errorf("submit = %+v", msgs[0])
	}
}

func TestDashboardIgnoresKeysWhileBusy(t *testing.T) {
	m := NewDashboardModel("ada", 100, 30)
	seq := m.StartIngest()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.ActiveTab() != TabUpload {
		t.Error("tab switched during ingestion")
	}

	if _, more := m.TickRamp(seq + 1); more {
		t.Error("stale ramp tick accepted")
	}
	if _, more := m.TickRamp(seq); !more || m.Progress() != 10 {
		t.Errorf("progress = %d", m.Progress())
	}
}

func TestDocumentationKeyGating(t *testing.T) {
	m := NewDocumentationModel(session.Session{ID: "abc", Origin: session.OriginFile}, 100, 30)
	m.Begin("h1")

	for _, k := range []string{"r", "d"} {
		if _, cmd := m.Update(typeText(k)); cmd != nil {
			t.Errorf("%q accepted while generating", k)
		}
	}

	md := m.Apply(generate.Update{HandleID: "h1", State: generate.Done, Progress: 100, Documentation: "# Hi\n"})
	if md != "# Hi\n" || m.Markdown() != md {
		t.Fatalf("Apply returned %q", md)
	}
	if !m.CanDownload() || !m.CanRegenerate() {
		t.Error("actions should be enabled after completion")
	}

	want := map[string]tea.Msg{"r": RegenerateRequestMsg{}, "d": DownloadRequestMsg{}}
	for k, msg := range want {
		_, cmd := m.Update(typeText(k))
		if got := collect(cmd); len(got) != 1 || got[0] != msg {
			t.Errorf("%q produced %v", k, got)
		}
	}

	m.StartDownload()
	if m.CanDownload() {
		t.Error("download enabled while one is in flight")
	}
	m.FinishDownload("README.md", nil)
	if !strings.Contains(m.View(), "Saved README.md") {
		t.Error("saved path not shown")
	}

	_, cmd := m.Update(esc)
	if got := collect(cmd); len(got) != 1 || got[0] != (BackMsg{}) {
		t.Errorf("esc produced %v", got)
	}
}

func TestDocumentationDownloadKeyDoesNotScroll(t *testing.T) {
	m := NewDocumentationModel(session.Session{ID: "abc", Origin: session.OriginFile}, 100, 30)
	m.Begin("h1")
	doc := "# Hi\n" + strings.Repeat("line\n", 200)
	m.Apply(generate.Update{HandleID: "h1", State: generate.Done, Progress: 100, Documentation: doc})

	m, cmd := m.Update(typeText("d"))
	if got := collect(cmd); len(got) != 1 || got[0] != (DownloadRequestMsg{}) {
		t.Errorf("d produced %v", got)
	}
	if m.viewport.YOffset != 0 {
		t.Errorf("d scrolled the document to %d", m.viewport.YOffset)
	}
	for _, k := range m.viewport.KeyMap.HalfPageDown.Keys() {
		if k == "d" {
			t.Error("viewport still binds d")
		}
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if m.viewport.YOffset == 0 {
		t.Error("ctrl+d did not scroll")
	}
	if !strings.Contains(m.renderFooter(), "PgUp/PgDn") {
		t.Error("paging keys not advertised")
	}
}

func TestDocumentationFailure(t *testing.T) {
	m := NewDocumentationModel(session.Session{ID: "abc", Origin: session.OriginGit}, 100, 30)
	m.Begin("h1")
	m.Apply(generate.Update{HandleID: "h1", State: generate.Generating, Status: "Analyzing", Progress: 40})
	if !strings.Contains(m.View(), "40% complete") {
		t.Error("progress not shown")
	}

	m.Apply(generate.Update{HandleID: "h1", State: generate.TimedOut, Message: generate.MsgTimedOut})
	if m.Err() != generate.MsgTimedOut {
		t.Errorf("Err() = %q", m.Err())
	}
	if !m.CanRegenerate() || m.CanDownload() {
		t.Error("timed out: regenerate only")
	}

	m, _ = m.Update(typeText("x"))
	if m.Err() != "" {
		t.Error("x should dismiss the error")
	}
}
