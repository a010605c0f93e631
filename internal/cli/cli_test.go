package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/reposcribe/reposcribe-cli/internal/api"
	"github.com/reposcribe/reposcribe-cli/internal/testutil"
	"github.com/reposcribe/reposcribe-cli/internal/tui"
)

type cliHarness struct {
	srv      *testutil.Server
	cfgPath  string
	stateDir string
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	srv := testutil.NewServer(t)
	dir := t.TempDir()
	stateDir := filepath.Join(dir, "state")

	cfg := fmt.Sprintf(`server:
  url: %s
generation:
  poll_interval_ms: 10
  timeout_ms: 5000
download:
  format: markdown
  dir: %s
state:
  dir: %s
render:
  style: notty
`, srv.BaseURL(), filepath.Join(dir, "downloads"), stateDir)

	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return &cliHarness{srv: srv, cfgPath: cfgPath, stateDir: stateDir}
}

// run executes the command tree with fresh flag values and returns stdout.
func (h *cliHarness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", h.cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (h *cliHarness) login(t *testing.T) {
	t.Helper()
	h.srv.AddUser("ada", "secret1")
	if _, err := h.run(t, "secret1\n", "login", "--username", "ada", "--password-stdin"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

// resetFlags restores every flag in the tree to its default so values do
// not leak between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestRegisterThenWhoami(t *testing.T) {
	h := newCLIHarness(t)

	out, err := h.run(t, "secret1\n", "register", "--username", "ada", "--password-stdin")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !strings.Contains(out, "ada") {
		t.Errorf("register output = %q", out)
	}

	out, err = h.run(t, "", "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	for _, want := range []string{"Username: ada", "Expires:", h.srv.BaseURL()} {
		if !strings.Contains(out, want) {
			t.Errorf("whoami output missing %q:\n%s", want, out)
		}
	}
}

func TestEphemeralLoginIsNotPersisted(t *testing.T) {
	h := newCLIHarness(t)

	if _, err := h.run(t, "secret1\n", "--ephemeral", "register", "--username", "ada", "--password-stdin"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := h.run(t, "", "whoami")
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("whoami after ephemeral register: err = %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	h := newCLIHarness(t)
	_, err := h.run(t, "abc\n", "register", "--username", "ada", "--password-stdin")
	if err == nil || !strings.Contains(err.Error(), "at least 6") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	h := newCLIHarness(t)
	_, err := h.run(t, "nope\n", "login", "--username", "ada", "--password-stdin")
	if err == nil || err.Error() != "Invalid username or password" {
		t.Fatalf("err = %v", err)
	}
}

func TestUploadRequiresLogin(t *testing.T) {
	h := newCLIHarness(t)
	archive := testutil.TempArchive(t, "repo.zip", 512)
	_, err := h.run(t, "", "upload", archive)
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("err = %v", err)
	}
	if len(h.srv.Uploads()) != 0 {
		t.Error("upload reached the server")
	}
}

func TestUploadGenerateDownload(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t)

	archive := testutil.TempArchive(t, "repo.zip", 4096)
	out, err := h.run(t, "", "upload", archive)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(out, "Session ID: abc") {
		t.Errorf("upload output = %q", out)
	}

	out, err = h.run(t, "", "generate", "--raw")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "# Hi\n" {
		t.Errorf("generate output = %q", out)
	}
	if n := h.srv.GenerateCalls(); n != 1 {
		t.Errorf("GenerateCalls() = %d, want 1", n)
	}

	dir := t.TempDir()
	if _, err := h.run(t, "", "download", "--dir", dir); err != nil {
		t.Fatalf("download: %v", err)
	}
	if _, err := h.run(t, "", "download", "--dir", dir); err != nil {
		t.Fatalf("second download: %v", err)
	}
	for _, name := range []string{"README.md", "README (1).md"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if string(data) != "# Hi\n" {
			t.Errorf("%s = %q", name, data)
		}
	}

	out, err = h.run(t, "", "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if !strings.Contains(out, "abc") || !strings.Contains(out, "done") || !strings.Contains(out, "repo.zip") {
		t.Errorf("sessions output:\n%s", out)
	}
}

func TestGenerateFailureReturnsServerError(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t)
	h.srv.SetProgress(
		api.GenerationProgress{Status: "Analyzing", Progress: 20},
		api.GenerationProgress{Status: "Failed", Error: "model unavailable"},
	)

	_, err := h.run(t, "", "generate", "--session", "abc")
	if err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("err = %v", err)
	}
	if n := h.srv.GenerateCalls(); n != 2 {
		t.Errorf("GenerateCalls() = %d, want 2", n)
	}
}

func TestGenerateWithoutSession(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t)

	_, err := h.run(t, "", "generate")
	if err == nil || err.Error() != tui.MsgNoSession {
		t.Fatalf("err = %v, want %q", err, tui.MsgNoSession)
	}
	if h.srv.GenerateCalls() != 0 {
		t.Error("generation requested without a session")
	}
}

func TestCloneFailureShowsServerMessage(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t)
	h.srv.SetCloneResponse(api.IngestResponse{Success: false, Message: "auth failed"})

	_, err := h.run(t, "", "clone", "https://github.com/a/b.git", "--private", "--username", "u", "--password", "p")
	if err == nil || err.Error() != "auth failed" {
		t.Fatalf("err = %v, want auth failed", err)
	}
	clones := h.srv.Clones()
	if len(clones) != 1 || clones[0].Username != "u" || clones[0].Password != "p" {
		t.Errorf("clones = %+v", clones)
	}

	out, _ := h.run(t, "", "session")
	if !strings.Contains(out, "No current session") {
		t.Errorf("session output = %q", out)
	}
}

func TestCloneRejectsInvalidURL(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t)

	_, err := h.run(t, "", "clone", "not a url")
	if err == nil || !strings.Contains(err.Error(), "valid Git repository URL") {
		t.Fatalf("err = %v", err)
	}
	if len(h.srv.Clones()) != 0 {
		t.Error("invalid URL reached the server")
	}
}

func TestSessionUseAndClear(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t)
	if _, err := h.run(t, "", "clone", "https://github.com/a/b.git"); err != nil {
		t.Fatalf("clone: %v", err)
	}
	if _, err := h.run(t, "", "session", "clear"); err != nil {
		t.Fatalf("session clear: %v", err)
	}
	if _, err := h.run(t, "", "session", "use", "missing"); err == nil {
		t.Error("using an unknown session should fail")
	}
	if _, err := h.run(t, "", "session", "use", "abc"); err != nil {
		t.Fatalf("session use: %v", err)
	}
	out, _ := h.run(t, "", "session")
	if !strings.Contains(out, "abc (git https://github.com/a/b.git)") {
		t.Errorf("session output = %q", out)
	}
}

func TestLogoutForgetsEverything(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t)
	if _, err := h.run(t, "", "clone", "https://github.com/a/b.git"); err != nil {
		t.Fatalf("clone: %v", err)
	}
	if _, err := h.run(t, "", "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := h.run(t, "", "whoami"); err == nil {
		t.Error("whoami succeeded after logout")
	}
	out, _ := h.run(t, "", "sessions")
	if !strings.Contains(out, "No sessions yet") {
		t.Errorf("sessions after logout:\n%s", out)
	}
}

func TestHealthAll(t *testing.T) {
	h := newCLIHarness(t)
	out, err := h.run(t, "", "health", "--all")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	for _, want := range []string{"Backend is running!", "git service is running", "documentation service is running"} {
		if !strings.Contains(out, want) {
			t.Errorf("health output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInitAndShow(t *testing.T) {
	h := newCLIHarness(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", path, "--server", "http://example.test/api", "config", "init"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	rootCmd.SetArgs([]string{"--config", path, "config", "init"})
	resetFlags(rootCmd)
	if err := rootCmd.Execute(); err == nil {
		t.Error("second init without --force should fail")
	}

	shown, err := h.run(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(shown, h.srv.BaseURL()) || !strings.Contains(shown, "poll_interval_ms: 10") {
		t.Errorf("config show:\n%s", shown)
	}
}

func TestLogShowsEvents(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t)
	_, _ = h.run(t, "", "logout")

	out, err := h.run(t, "", "log", "--limit", "5")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if !strings.Contains(out, "login") || !strings.Contains(out, "logout") || !strings.Contains(out, "user=ada") {
		t.Errorf("log output:\n%s", out)
	}
}

func TestSessionsPruneKeep(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t)
	if _, err := h.run(t, "", "clone", "https://github.com/a/old.git"); err != nil {
		t.Fatalf("clone: %v", err)
	}
	h.srv.SetCloneResponse(api.IngestResponse{Success: true, Message: "ok", SessionID: "def"})
	if _, err := h.run(t, "", "clone", "https://github.com/a/new.git"); err != nil {
		t.Fatalf("clone: %v", err)
	}

	out, err := h.run(t, "", "sessions", "prune", "--keep", "1", "--dry-run")
	if err != nil {
		t.Fatalf("prune dry-run: %v", err)
	}
	if !strings.Contains(out, "Would remove abc") {
		t.Errorf("dry-run output:\n%s", out)
	}

	if _, err := h.run(t, "", "sessions", "prune", "--keep", "1"); err != nil {
		t.Fatalf("prune: %v", err)
	}
	out, _ = h.run(t, "", "sessions", "--limit", "0")
	if strings.Contains(out, "old.git") || !strings.Contains(out, "def") {
		t.Errorf("sessions after prune:\n%s", out)
	}
}
