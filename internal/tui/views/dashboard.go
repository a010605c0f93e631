package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reposcribe/reposcribe-cli/internal/ingest"
	"github.com/reposcribe/reposcribe-cli/internal/session"
	"github.com/reposcribe/reposcribe-cli/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// SubmitUploadMsg is sent when the user submits a path to upload.
type SubmitUploadMsg struct {
	Path string
}

// SubmitCloneMsg is sent when the user submits a repository to clone.
type SubmitCloneMsg struct {
	Request ingest.CloneRequest
}

// OpenSessionMsg is sent when the user picks a past session.
type OpenSessionMsg struct {
	Session session.Session
}

// MsgSelectFile is shown when upload is submitted without a path.
const MsgSelectFile = "Please select a file first"

// ============================================================================
// SessionItem
// ============================================================================

// SessionItem implements list.Item for the session history.
type SessionItem struct {
	record session.Record
}

// Title returns the session source for list display.
func (i SessionItem) Title() string {
	return fmt.Sprintf("%s %s", statusIcon(i.record.Status), i.record.Source)
}

// Description returns the origin, status and date for list display.
func (i SessionItem) Description() string {
	return fmt.Sprintf("%s · %s · %s · %s",
		i.record.Origin,
		i.record.Status,
		i.record.UpdatedAt.Format("Jan 02, 2006 15:04"),
		i.record.ID,
	)
}

// FilterValue returns the value used for filtering in the list.
func (i SessionItem) FilterValue() string {
	return i.record.Source
}

func statusIcon(status string) string {
	switch status {
	case session.StatusDone:
		return tui.StatusDoneIcon
	case session.StatusGenerating:
		return tui.StatusGeneratingIcon
	case session.StatusFailed, session.StatusTimedOut:
		return tui.StatusFailedIcon
	default:
		return tui.StatusIngestedIcon
	}
}

// ============================================================================
// DashboardModel
// ============================================================================

// Dashboard tabs.
const (
	TabUpload = iota
	TabClone
	TabSessions
	tabCount
)

// Clone form fields.
const (
	cloneURL = iota
	cloneUsername
	clonePassword
)

// maxDashboardWidth is the maximum width for the dashboard box.
const maxDashboardWidth = 100

// maxContentHeight is the maximum height for the session list.
const maxContentHeight = 12

// DashboardModel is the view model for the dashboard screen.
type DashboardModel struct {
	username  string
	activeTab int

	pathInput   textinput.Model
	cloneInputs []textinput.Model
	cloneFocus  int
	private     bool

	busy    bool
	seq     int
	ramp    ingest.Ramp
	bar     progress.Model
	err     string
	success string
	health  string

	sessions    []session.Record
	sessionsErr string
	sessionList list.Model

	width  int
	height int

	// Ctrl+C confirmation state
	ctrlCPending bool
}

// NewDashboardModel creates the dashboard for username.
func NewDashboardModel(username string, width, height int) DashboardModel {
	contentWidth := maxDashboardWidth - 8

	path := textinput.New()
	path.Placeholder = "path/to/repository.zip or a directory"
	path.CharLimit = 4096
	path.Width = contentWidth - 12
	path.Focus()

	inputs := make([]textinput.Model, 3)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 2048
		ti.Width = contentWidth - 12
		inputs[i] = ti
	}
	inputs[cloneURL].Placeholder = "https://github.com/user/repo.git"
	inputs[cloneUsername].Placeholder = "username"
	inputs[clonePassword].Placeholder = "password or personal access token"
	inputs[clonePassword].EchoMode = textinput.EchoPassword
	inputs[clonePassword].EchoCharacter = '•'

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("#2563EB")).
		BorderForeground(lipgloss.Color("#2563EB"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("#9CA3AF"))

	l := list.New(nil, delegate, contentWidth, maxContentHeight)
	l.Title = "Sessions"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return DashboardModel{
		username:    username,
		pathInput:   path,
		cloneInputs: inputs,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(contentWidth-10)),
		sessionList: l,
		width:       width,
		height:      height,
	}
}

// Init returns the initial command for the dashboard view.
func (m DashboardModel) Init() tea.Cmd {
	return textinput.Blink
}

// ActiveTab returns the selected tab.
func (m DashboardModel) ActiveTab() int { return m.activeTab }

// Busy reports whether an ingestion is in flight.
func (m DashboardModel) Busy() bool { return m.busy }

// Err returns the displayed error, if any.
func (m DashboardModel) Err() string { return m.err }

// Success returns the displayed success message, if any.
func (m DashboardModel) Success() string { return m.success }

// Progress returns the ingestion progress in percent.
func (m DashboardModel) Progress() int { return m.ramp.Value() }

// Update handles messages for the dashboard view.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.SwitchTab):
			if !m.busy {
				m.SetTab((m.activeTab + 1) % tabCount)
			}
			return m, nil
		case key.Matches(msg, tui.DefaultKeyMap.Escape):
			m.err = ""
			return m, nil
		}
		if m.busy {
			return m, nil
		}
		switch m.activeTab {
		case TabUpload:
			return m.updateUpload(msg)
		case TabClone:
			return m.updateClone(msg)
		case TabSessions:
			return m.updateSessions(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case progress.FrameMsg:
		pm, cmd := m.bar.Update(msg)
		m.bar = pm.(progress.Model)
		return m, cmd

	case tui.HealthMsg:
		if msg.Err != nil {
			m.health = "Failed to connect to backend"
		} else {
			m.health = msg.Message
		}
		return m, nil

	case tui.SessionsLoadMsg:
		if msg.Err != nil {
			m.sessions = nil
			m.sessionsErr = "Failed to load sessions: " + msg.Err.Error()
			return m, nil
		}
		m.sessions = msg.Records
		m.sessionsErr = ""
		items := make([]list.Item, len(m.sessions))
		for i, r := range m.sessions {
			items[i] = SessionItem{record: r}
		}
		return m, m.sessionList.SetItems(items)
	}

	return m.forward(msg)
}

// forward passes a message to the focused component.
func (m DashboardModel) forward(msg tea.Msg) (DashboardModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case TabUpload:
		m.pathInput, cmd = m.pathInput.Update(msg)
	case TabClone:
		m.cloneInputs[m.cloneFocus], cmd = m.cloneInputs[m.cloneFocus].Update(msg)
	case TabSessions:
		m.sessionList, cmd = m.sessionList.Update(msg)
	}
	return m, cmd
}

func (m DashboardModel) updateUpload(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	if msg.String() != tui.KeyEnter {
		return m.forward(msg)
	}
	path := strings.TrimSpace(m.pathInput.Value())
	if path == "" {
		m.err = MsgSelectFile
		return m, nil
	}
	m.err = ""
	m.success = ""
	return m, func() tea.Msg { return SubmitUploadMsg{Path: path} }
}

func (m DashboardModel) updateClone(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	if key.Matches(msg, tui.DefaultKeyMap.TogglePrivate) {
		m.private = !m.private
		if !m.private && m.cloneFocus != cloneURL {
			m.setCloneFocus(cloneURL)
		}
		return m, nil
	}

	switch msg.String() {
	case tui.KeyTab, tui.KeyDown:
		m.setCloneFocus((m.cloneFocus + 1) % m.cloneFieldCount())
		return m, nil
	case tui.KeyShiftTab, tui.KeyUp:
		n := m.cloneFieldCount()
		m.setCloneFocus((m.cloneFocus + n - 1) % n)
		return m, nil
	case tui.KeyEnter:
		req := ingest.CloneRequest{
			URL:      strings.TrimSpace(m.cloneInputs[cloneURL].Value()),
			Private:  m.private,
			Username: m.cloneInputs[cloneUsername].Value(),
			Password: m.cloneInputs[clonePassword].Value(),
		}
		if err := ingest.ValidateGitURL(req.URL); err != nil {
			m.err = err.Error()
			return m, nil
		}
		if err := ingest.ValidateCredentials(req.Private, req.Username, req.Password); err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.err = ""
		m.success = ""
		return m, func() tea.Msg { return SubmitCloneMsg{Request: req} }
	}
	return m.forward(msg)
}

func (m DashboardModel) updateSessions(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	if msg.String() == tui.KeyEnter && m.sessionList.FilterState() != list.Filtering {
		if item, ok := m.sessionList.SelectedItem().(SessionItem); ok {
			sess := item.record.Session
			return m, func() tea.Msg { return OpenSessionMsg{Session: sess} }
		}
		return m, nil
	}
	return m.forward(msg)
}

func (m DashboardModel) cloneFieldCount() int {
	if m.private {
		return 3
	}
	return 1
}

func (m *DashboardModel) setCloneFocus(i int) {
	m.cloneInputs[m.cloneFocus].Blur()
	m.cloneFocus = i
	m.cloneInputs[m.cloneFocus].Focus()
}

// SetTab switches to tab and focuses its first field.
func (m *DashboardModel) SetTab(tab int) {
	m.activeTab = tab
	m.pathInput.Blur()
	m.cloneInputs[m.cloneFocus].Blur()
	switch tab {
	case TabUpload:
		m.pathInput.Focus()
	case TabClone:
		m.cloneInputs[m.cloneFocus].Focus()
	}
}

// SetError shows a dismissible error banner.
func (m *DashboardModel) SetError(msg string) {
	m.err = msg
}

// StartIngest marks an ingestion in flight and returns its sequence number
// for ramp ticks.
func (m *DashboardModel) StartIngest() int {
	m.busy = true
	m.err = ""
	m.success = ""
	m.ramp.Reset()
	m.seq++
	return m.seq
}

// TickRamp advances the simulated progress for ingestion seq. It reports
// whether ticking should continue.
func (m *DashboardModel) TickRamp(seq int) (tea.Cmd, bool) {
	if !m.busy || seq != m.seq {
		return nil, false
	}
	return m.bar.SetPercent(float64(m.ramp.Tick()) / 100), true
}

// FinishIngest ends the in-flight ingestion with its outcome.
func (m *DashboardModel) FinishIngest(res *ingest.Result, err error) tea.Cmd {
	m.busy = false
	if err != nil {
		m.err = err.Error()
		m.ramp.Fail()
		return m.bar.SetPercent(0)
	}
	m.success = fmt.Sprintf("✓ %s Session ID: %s", res.Message, res.Session.ID)
	m.ramp.Complete()
	return m.bar.SetPercent(1)
}

// View renders the dashboard view.
func (m DashboardModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render(fmt.Sprintf("Welcome, %s!", m.username)))
	if m.health != "" {
		b.WriteString("  " + tui.DimStyle.Render(m.health))
	}
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Choose how you want to provide your code repository for documentation generation."))
	b.WriteString("\n\n")

	b.WriteString(renderTabs(m.activeTab))
	b.WriteString("\n\n")

	switch m.activeTab {
	case TabUpload:
		b.WriteString("ZIP file or directory (max 500MB)\n")
		b.WriteString(m.pathInput.View())
	case TabClone:
		b.WriteString("Repository URL\n")
		b.WriteString(m.cloneInputs[cloneURL].View())
		b.WriteString("\n\n")
		check := "[ ]"
		if m.private {
			check = "[x]"
		}
		b.WriteString(check + " Private repository " + tui.DimStyle.Render("("+tui.DefaultKeyMap.TogglePrivate.Help().Key+")"))
		if m.private {
			b.WriteString("\n\nUsername\n")
			b.WriteString(m.cloneInputs[cloneUsername].View())
			b.WriteString("\n\nPassword / Token\n")
			b.WriteString(m.cloneInputs[clonePassword].View())
		}
	case TabSessions:
		switch {
		case m.sessionsErr != "":
			b.WriteString(tui.ErrorStyle.Render(m.sessionsErr))
		case len(m.sessions) == 0:
			b.WriteString(tui.DimStyle.Render("No sessions yet"))
		default:
			b.WriteString(m.sessionList.View())
		}
	}
	b.WriteString("\n\n")

	if m.busy || m.ramp.Value() > 0 {
		b.WriteString(m.bar.View())
		b.WriteString(fmt.Sprintf(" %d%%", m.ramp.Value()))
		b.WriteString("\n\n")
	}
	if m.err != "" {
		b.WriteString(tui.ErrorBannerStyle.Render(m.err + "  " + tui.DimStyle.Render("(esc to dismiss)")))
		b.WriteString("\n\n")
	}
	if m.success != "" {
		b.WriteString(tui.SuccessBannerStyle.Render(m.success))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderFooter())

	boxWidth := maxDashboardWidth
	if m.width-4 < boxWidth {
		boxWidth = m.width - 4
	}
	return tui.BoxStyle.Width(boxWidth).Render(b.String())
}

// renderTabs renders the tab bar with active highlighting.
func renderTabs(activeTab int) string {
	tabs := []string{"Upload ZIP File", "Clone from Git", "Sessions"}
	var rendered []string

	for i, tab := range tabs {
		if i == activeTab {
			rendered = append(rendered, tui.ActiveTabStyle.Render(tab))
		} else {
			rendered = append(rendered, tui.InactiveTabStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderFooter renders the footer with relevant keybindings for the current tab.
func (m DashboardModel) renderFooter() string {
	keys := tui.DefaultKeyMap
	hints := []string{tui.HelpText(keys.SwitchTab)}

	switch m.activeTab {
	case TabUpload:
		hints = append(hints, "Enter: Upload")
	case TabClone:
		hints = append(hints, "Enter: Clone", "Tab: Next field")
	case TabSessions:
		hints = append(hints, "Enter: Open session", "/: Filter")
	}
	hints = append(hints, tui.HelpText(keys.Logout))

	hintsStr := tui.DimStyle.Render(strings.Join(hints, " · "))

	ctrlCHint := tui.DimStyle.Render(tui.HelpText(keys.CtrlC))
	if m.ctrlCPending {
		ctrlCHint = tui.WarningStyle.Render("Press Ctrl+C again to exit")
	}

	return hintsStr + " · " + ctrlCHint
}

// SetCtrlCPending sets the Ctrl+C pending state for display.
func (m *DashboardModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}
