// env.go wires configuration, local state and the API client shared by
// every subcommand.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/reposcribe/reposcribe-cli/internal/api"
	"github.com/reposcribe/reposcribe-cli/internal/config"
	"github.com/reposcribe/reposcribe-cli/internal/generate"
	"github.com/reposcribe/reposcribe-cli/internal/ingest"
	"github.com/reposcribe/reposcribe-cli/internal/log"
	"github.com/reposcribe/reposcribe-cli/internal/render"
	"github.com/reposcribe/reposcribe-cli/internal/session"
	"github.com/reposcribe/reposcribe-cli/internal/state"
	"github.com/reposcribe/reposcribe-cli/internal/tui"
)

// env is the runtime assembled from the effective configuration.
type env struct {
	cfg      *config.Config
	logger   *log.Logger
	store    *session.Store
	auth     *state.AuthState
	sessions *state.SessionState
	client   *api.Client
	tmpDir   string // ephemeral state, removed on Close

	ctx    context.Context
	cancel context.CancelFunc
}

// openEnv loads configuration and opens the state database. Callers must
// Close the result.
func openEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}

	logger, err := log.NewLogger(cfg.State.Dir)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}

	dbPath := session.DefaultPath(cfg.State.Dir)
	var tmpDir string
	if ephemeral {
		if tmpDir, err = os.MkdirTemp("", "reposcribe-*"); err != nil {
			return nil, fmt.Errorf("creating ephemeral state: %w", err)
		}
		dbPath = session.DefaultPath(tmpDir)
	}
	store, err := session.NewStore(dbPath)
	if err != nil {
		if tmpDir != "" {
			_ = os.RemoveAll(tmpDir)
		}
		return nil, err
	}

	// Ephemeral runs keep login and the current session in memory only.
	var storage state.Storage = store
	if ephemeral {
		storage = state.NewMemoryStorage()
	}

	closeStore := func() {
		store.Close()
		if tmpDir != "" {
			_ = os.RemoveAll(tmpDir)
		}
	}
	sessions, err := state.NewSessionState(storage)
	if err != nil {
		closeStore()
		return nil, err
	}
	auth, err := state.NewAuthState(storage, sessions)
	if err != nil {
		closeStore()
		return nil, err
	}

	client := api.New(cfg.Server.URL,
		api.WithTokenSource(auth),
		api.WithTimeout(time.Duration(cfg.Server.RequestTimeout)*time.Second),
		api.WithUploadTimeout(time.Duration(cfg.Server.UploadTimeout)*time.Second),
	)

	ctx, cancel := context.WithCancel(context.Background())
	return &env{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		auth:     auth,
		sessions: sessions,
		client:   client,
		tmpDir:   tmpDir,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Close releases the state database.
func (e *env) Close() error {
	e.cancel()
	err := e.store.Close()
	if e.tmpDir != "" {
		_ = os.RemoveAll(e.tmpDir)
	}
	return err
}

func (e *env) ingester() *ingest.Ingester {
	return ingest.New(e.client, e.sessions, ingest.WithHistory(e.store), ingest.WithLogger(e.logger))
}

func (e *env) poller(interval, timeout time.Duration) *generate.Poller {
	if interval <= 0 {
		interval = e.cfg.Generation.PollInterval()
	}
	if timeout <= 0 {
		timeout = e.cfg.Generation.Timeout()
	}
	return generate.NewPoller(e.client,
		generate.WithInterval(interval),
		generate.WithTimeout(timeout),
		generate.WithLogger(e.logger),
		generate.WithStatusRecorder(e.store),
	)
}

func (e *env) renderer(style string) render.Renderer {
	if style == "" {
		style = e.cfg.Render.Style
	}
	r, err := render.New(style, e.cfg.Render.Width)
	if err != nil {
		return render.Plain{}
	}
	return r
}

// requireAuth fails unless a usable token is stored.
func (e *env) requireAuth() error {
	if !e.auth.IsAuthenticated() {
		return fmt.Errorf("not logged in; run: reposcribe login")
	}
	return nil
}

// sessionID resolves an explicit --session flag or the current session.
func (e *env) sessionID(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if id := e.sessions.ID(); id != "" {
		return id, nil
	}
	return "", errors.New(tui.MsgNoSession)
}

func (e *env) tuiDeps() tui.Deps {
	return tui.Deps{
		Cfg:        e.cfg,
		Client:     e.client,
		Auth:       e.auth,
		Sessions:   e.sessions,
		History:    e.store,
		Ingester:   e.ingester(),
		Controller: generate.NewController(e.ctx, e.poller(0, 0)),
		Renderer:   e.renderer(""),
		Logger:     e.logger,
	}
}
