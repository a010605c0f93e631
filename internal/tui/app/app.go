// Package app provides the main TUI application that wires all views together.
package app

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reposcribe/reposcribe-cli/internal/generate"
	"github.com/reposcribe/reposcribe-cli/internal/ingest"
	"github.com/reposcribe/reposcribe-cli/internal/log"
	"github.com/reposcribe/reposcribe-cli/internal/tui"
	"github.com/reposcribe/reposcribe-cli/internal/tui/commands"
	"github.com/reposcribe/reposcribe-cli/internal/tui/views"
)

// successDelay is how long an ingestion success message is shown before
// moving to the documentation screen.
const successDelay = time.Second

// sessionListLimit bounds the history shown on the dashboard.
const sessionListLimit = 50

// App is the main TUI application that wires all views together.
type App struct {
	model *tui.Model

	// View models
	loginView     views.LoginModel
	dashboardView views.DashboardModel
	docView       views.DocumentationModel
}

// New creates a new App. The first screen is the dashboard when a valid
// token is stored, otherwise login.
func New(deps tui.Deps) *App {
	model := tui.NewModel(deps)
	a := &App{model: model}
	switch model.State {
	case tui.StateDashboard:
		a.dashboardView = views.NewDashboardModel(model.Auth.Username(), model.Width, model.Height)
	default:
		a.loginView = views.NewLoginModel(false, model.Width, model.Height)
	}
	return a
}

// State returns the current screen.
func (a *App) State() tui.ViewState { return a.model.State }

// Dashboard returns the dashboard view model.
func (a *App) Dashboard() views.DashboardModel { return a.dashboardView }

// Documentation returns the documentation view model.
func (a *App) Documentation() views.DocumentationModel { return a.docView }

// Login returns the login view model.
func (a *App) Login() views.LoginModel { return a.loginView }

// Init returns the initial command for the TUI.
func (a *App) Init() tea.Cmd {
	if a.model.State == tui.StateDashboard {
		return a.dashboardInit()
	}
	return a.loginView.Init()
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		var cmd tea.Cmd
		switch a.model.State {
		case tui.StateLogin, tui.StateRegister:
			a.loginView, cmd = a.loginView.Update(msg)
		case tui.StateDashboard:
			a.dashboardView, cmd = a.dashboardView.Update(msg)
		case tui.StateDocumentation:
			a.docView, cmd = a.docView.Update(msg)
		}
		return a, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.CtrlC):
			if a.model.CtrlCPending {
				// Second press within timeout - exit
				a.stopGeneration()
				return a, tea.Quit
			}
			// First press - set pending and start timeout
			a.model.CtrlCPending = true
			return a, tea.Tick(time.Second, func(t time.Time) tea.Msg {
				return tui.CtrlCResetMsg{}
			})

		case key.Matches(msg, tui.DefaultKeyMap.Logout):
			if a.model.State == tui.StateDashboard || a.model.State == tui.StateDocumentation {
				return a.logout()
			}
		}

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return a, nil

	case tui.NavigateMsg:
		return a.navigate(msg.State)

	case tui.LogoutMsg:
		return a.logout()

	// Generation messages are filtered by handle before any routing so that
	// a superseded loop can never touch the screen.
	case tui.GenerationStartedMsg:
		return a.handleGenerationStarted(msg)
	case tui.GenerationUpdateMsg:
		return a.handleGenerationUpdate(msg)
	case tui.GenerationTickMsg:
		if a.model.State != tui.StateDocumentation || !a.isCurrent(msg.HandleID) {
			return a, nil
		}
		if h := a.model.Controller.Active(); h != nil {
			return a, commands.ListenGenerationCmd(h)
		}
		return a, nil
	case tui.GenerationClosedMsg:
		return a, nil
	case tui.DocumentRenderedMsg:
		if a.model.State == tui.StateDocumentation && msg.HandleID == a.docView.HandleID() {
			a.docView.SetRendered(msg.Rendered, msg.Err)
		}
		return a, nil
	}

	switch a.model.State {
	case tui.StateLogin, tui.StateRegister:
		return a.updateLogin(msg)
	case tui.StateDashboard:
		return a.updateDashboard(msg)
	case tui.StateDocumentation:
		return a.updateDocumentation(msg)
	}
	return a, nil
}

// View renders the current application state.
func (a *App) View() string {
	var content string

	// Sync Ctrl+C pending state to views
	a.loginView.SetCtrlCPending(a.model.CtrlCPending)
	a.dashboardView.SetCtrlCPending(a.model.CtrlCPending)
	a.docView.SetCtrlCPending(a.model.CtrlCPending)

	switch a.model.State {
	case tui.StateLogin, tui.StateRegister:
		content = a.loginView.View()
	case tui.StateDashboard:
		content = a.dashboardView.View()
	case tui.StateDocumentation:
		return a.docView.View()
	default:
		content = "Unknown state"
	}
	return a.centerContent(content)
}

// centerContent centers the given content both horizontally and vertically.
func (a *App) centerContent(content string) string {
	return lipgloss.Place(
		a.model.Width,
		a.model.Height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// ============================================================================
// Navigation
// ============================================================================

// navigate moves to the requested screen after applying route guards.
func (a *App) navigate(want tui.ViewState) (tea.Model, tea.Cmd) {
	target, notice := a.model.Guard(want)

	// Leaving the documentation screen stops its generation.
	if a.model.State == tui.StateDocumentation && target != tui.StateDocumentation {
		a.stopGeneration()
	}

	switch target {
	case tui.StateLogin, tui.StateRegister:
		register := target == tui.StateRegister
		if a.model.State != target {
			a.loginView = views.NewLoginModel(register, a.model.Width, a.model.Height)
		}
		a.model.State = target
		return a, a.loginView.Init()

	case tui.StateDashboard:
		if a.model.State != tui.StateDashboard {
			a.dashboardView = views.NewDashboardModel(a.model.Auth.Username(), a.model.Width, a.model.Height)
		}
		a.model.State = tui.StateDashboard
		a.model.Notice = notice
		if notice != "" {
			a.dashboardView.SetError(notice)
		}
		return a, a.dashboardInit()

	case tui.StateDocumentation:
		sess, _ := a.model.CurrentSession()
		if a.model.State == tui.StateDocumentation && a.docView.Session().ID == sess.ID && a.docView.Generating() {
			return a, nil
		}
		a.model.State = tui.StateDocumentation
		a.docView = views.NewDocumentationModel(sess, a.model.Width, a.model.Height)
		return a, tea.Batch(
			a.docView.Init(),
			commands.StartGenerationCmd(a.model.Controller, sess.ID),
		)
	}
	return a, nil
}

func (a *App) dashboardInit() tea.Cmd {
	cmds := []tea.Cmd{a.dashboardView.Init()}
	if a.model.History != nil {
		cmds = append(cmds, commands.LoadSessionsCmd(a.model.History, sessionListLimit))
	}
	if a.model.Client != nil {
		cmds = append(cmds, commands.HealthCmd(a.model.Client))
	}
	return tea.Batch(cmds...)
}

// logout clears both stores and returns to login.
func (a *App) logout() (tea.Model, tea.Cmd) {
	a.stopGeneration()
	username := a.model.Auth.Username()
	if err := a.model.Auth.Logout(); err != nil {
		if a.model.State == tui.StateDocumentation {
			a.docView.SetError(err.Error())
		} else {
			a.dashboardView.SetError(err.Error())
		}
		return a, nil
	}
	if a.model.History != nil {
		_ = a.model.History.ClearSessions()
	}
	a.model.Logger.Record(log.LogEvent{Event: log.EventLogout, Username: username})
	a.model.Notice = ""
	return a.navigate(tui.StateLogin)
}

func (a *App) stopGeneration() {
	if a.model.Controller != nil {
		a.model.Controller.Stop()
	}
}

func (a *App) isCurrent(handleID string) bool {
	return a.model.Controller != nil && a.model.Controller.IsCurrent(handleID)
}

// ============================================================================
// State Update Handlers
// ============================================================================

func (a *App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.loginView, cmd = a.loginView.Update(msg)

	switch msg := msg.(type) {
	case views.SwitchAuthMsg:
		if msg.Register {
			return a.navigate(tui.StateRegister)
		}
		return a.navigate(tui.StateLogin)

	case views.SubmitAuthMsg:
		if msg.Register {
			return a, tea.Batch(cmd, commands.RegisterCmd(a.model.Client, a.model.Auth, a.model.Logger, msg.Username, msg.Password))
		}
		return a, tea.Batch(cmd, commands.LoginCmd(a.model.Client, a.model.Auth, a.model.Logger, msg.Username, msg.Password))

	case tui.AuthResultMsg:
		if msg.Err != nil {
			a.loginView.SetError(msg.Err.Error())
			return a, nil
		}
		return a.navigate(tui.StateDashboard)
	}

	return a, cmd
}

func (a *App) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.dashboardView, cmd = a.dashboardView.Update(msg)

	switch msg := msg.(type) {
	case views.SubmitUploadMsg:
		seq := a.dashboardView.StartIngest()
		return a, tea.Batch(
			commands.UploadCmd(a.model.Ingester, msg.Path),
			commands.RampTickCmd(ingest.UploadTick, seq),
		)

	case views.SubmitCloneMsg:
		seq := a.dashboardView.StartIngest()
		return a, tea.Batch(
			commands.CloneCmd(a.model.Ingester, msg.Request),
			commands.RampTickCmd(ingest.CloneTick, seq),
		)

	case tui.RampTickMsg:
		barCmd, more := a.dashboardView.TickRamp(msg.Seq)
		if !more {
			return a, nil
		}
		interval := ingest.UploadTick
		if a.dashboardView.ActiveTab() == views.TabClone {
			interval = ingest.CloneTick
		}
		return a, tea.Batch(barCmd, commands.RampTickCmd(interval, msg.Seq))

	case tui.IngestResultMsg:
		barCmd := a.dashboardView.FinishIngest(msg.Result, msg.Err)
		if msg.Err != nil {
			return a, barCmd
		}
		var reload tea.Cmd
		if a.model.History != nil {
			reload = commands.LoadSessionsCmd(a.model.History, sessionListLimit)
		}
		return a, tea.Batch(barCmd, reload, commands.NavigateAfterCmd(successDelay, tui.StateDocumentation))

	case views.OpenSessionMsg:
		if err := a.model.Sessions.Set(msg.Session); err != nil {
			a.dashboardView.SetError(err.Error())
			return a, nil
		}
		return a.navigate(tui.StateDocumentation)
	}

	return a, cmd
}

func (a *App) updateDocumentation(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.docView, cmd = a.docView.Update(msg)

	switch msg := msg.(type) {
	case views.BackMsg:
		return a.navigate(tui.StateDashboard)

	case views.RegenerateRequestMsg:
		return a, commands.RegenerateCmd(a.model.Controller, a.docView.Session().ID)

	case views.DownloadRequestMsg:
		a.docView.StartDownload()
		cfg := a.model.Cfg
		return a, commands.DownloadCmd(a.model.Client, a.model.Logger, a.docView.Session().ID, cfg.Download.Format, cfg.Download.Dir)

	case tui.DownloadResultMsg:
		a.docView.FinishDownload(msg.Path, msg.Err)
		return a, nil

	case tui.ErrorMsg:
		if !errors.Is(msg.Err, generate.ErrGenerationInProgress) {
			a.docView.SetError(msg.Err.Error())
		}
		return a, nil
	}

	return a, cmd
}

// ============================================================================
// Generation
// ============================================================================

func (a *App) handleGenerationStarted(msg tui.GenerationStartedMsg) (tea.Model, tea.Cmd) {
	if a.model.State != tui.StateDocumentation || msg.Handle == nil || !a.isCurrent(msg.Handle.ID()) {
		return a, nil
	}
	if msg.Started || a.docView.HandleID() != msg.Handle.ID() {
		a.docView.Begin(msg.Handle.ID())
	}
	return a, commands.ListenGenerationCmd(msg.Handle)
}

func (a *App) handleGenerationUpdate(msg tui.GenerationUpdateMsg) (tea.Model, tea.Cmd) {
	if a.model.State != tui.StateDocumentation || !a.isCurrent(msg.HandleID) || msg.HandleID != a.docView.HandleID() {
		return a, nil
	}

	md := a.docView.Apply(msg.Update)
	if msg.Update.State.Terminal() {
		if md != "" && a.model.Renderer != nil {
			return a, commands.RenderDocumentCmd(a.model.Renderer, msg.HandleID, md)
		}
		return a, nil
	}

	h := a.model.Controller.Active()
	if h == nil {
		return a, nil
	}
	return a, commands.ListenGenerationCmd(h)
}
