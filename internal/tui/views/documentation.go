package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/reposcribe/reposcribe-cli/internal/generate"
	"github.com/reposcribe/reposcribe-cli/internal/session"
	"github.com/reposcribe/reposcribe-cli/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// BackMsg is sent when the user leaves the documentation screen.
type BackMsg struct{}

// RegenerateRequestMsg is sent when the user asks to generate again.
type RegenerateRequestMsg struct{}

// DownloadRequestMsg is sent when the user asks to download.
type DownloadRequestMsg struct{}

// ============================================================================
// DocumentationModel
// ============================================================================

// DocumentationModel shows generation progress and the finished document.
type DocumentationModel struct {
	session  session.Session
	handleID string

	state    generate.State
	status   string
	percent  int
	markdown string
	rendered string

	err         string
	downloading bool
	downloaded  string

	viewport viewport.Model
	bar      progress.Model
	spinner  spinner.Model
	width    int
	height   int

	// Ctrl+C confirmation state
	ctrlCPending bool
}

// NewDocumentationModel creates the documentation screen for sess.
func NewDocumentationModel(sess session.Session, width, height int) DocumentationModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := DocumentationModel{
		session: sess,
		state:   generate.Idle,
		bar:     progress.New(progress.WithDefaultGradient()),
		spinner: sp,
	}
	m.resize(width, height)
	return m
}

// Init returns the initial command for the documentation view.
func (m DocumentationModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// State returns the generation state shown.
func (m DocumentationModel) State() generate.State { return m.state }

// HandleID returns the generation handle being displayed.
func (m DocumentationModel) HandleID() string { return m.handleID }

// Err returns the displayed error, if any.
func (m DocumentationModel) Err() string { return m.err }

// Markdown returns the generated document.
func (m DocumentationModel) Markdown() string { return m.markdown }

// Session returns the session shown.
func (m DocumentationModel) Session() session.Session { return m.session }

// Generating reports whether a generation is in flight.
func (m DocumentationModel) Generating() bool { return m.state == generate.Generating }

// CanRegenerate reports whether regenerate is enabled.
func (m DocumentationModel) CanRegenerate() bool { return !m.Generating() }

// CanDownload reports whether download is enabled.
func (m DocumentationModel) CanDownload() bool {
	return m.markdown != "" && !m.Generating() && !m.downloading
}

// Begin resets the screen for a new generation driven by handleID. Prior
// output is discarded.
func (m *DocumentationModel) Begin(handleID string) {
	m.handleID = handleID
	m.state = generate.Generating
	m.status = generate.MsgGenerating
	m.percent = 0
	m.markdown = ""
	m.rendered = ""
	m.err = ""
	m.downloaded = ""
	m.viewport.SetContent("")
}

// Apply folds a generation update into the screen. It returns the markdown
// to render when the update completes the generation.
func (m *DocumentationModel) Apply(u generate.Update) (toRender string) {
	m.state = u.State
	if u.Status != "" {
		m.status = u.Status
	}
	m.percent = u.Progress

	switch u.State {
	case generate.Done:
		m.markdown = u.Documentation
		m.rendered = u.Documentation
		m.viewport.SetContent(m.rendered)
		m.viewport.GotoTop()
		return u.Documentation
	case generate.Failed, generate.TimedOut:
		m.err = u.Message
	}
	return ""
}

// SetRendered replaces the raw markdown with its rendering.
func (m *DocumentationModel) SetRendered(out string, err error) {
	if err != nil {
		return
	}
	m.rendered = out
	m.viewport.SetContent(out)
	m.viewport.GotoTop()
}

// StartDownload marks a download in flight.
func (m *DocumentationModel) StartDownload() {
	m.downloading = true
	m.downloaded = ""
}

// FinishDownload records a download outcome.
func (m *DocumentationModel) FinishDownload(path string, err error) {
	m.downloading = false
	if err != nil {
		m.err = err.Error()
		return
	}
	m.downloaded = path
}

// SetError shows a dismissible error banner.
func (m *DocumentationModel) SetError(msg string) {
	m.err = msg
}

// Update handles messages for the documentation view.
func (m DocumentationModel) Update(msg tea.Msg) (DocumentationModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		keys := tui.DefaultKeyMap
		switch {
		case key.Matches(msg, keys.Escape):
			return m, func() tea.Msg { return BackMsg{} }
		case key.Matches(msg, keys.Dismiss):
			m.err = ""
			return m, nil
		case key.Matches(msg, keys.Regenerate):
			if !m.CanRegenerate() {
				return m, nil
			}
			return m, func() tea.Msg { return RegenerateRequestMsg{} }
		case key.Matches(msg, keys.Download):
			if !m.CanDownload() {
				return m, nil
			}
			return m, func() tea.Msg { return DownloadRequestMsg{} }
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.bar.Update(msg)
		m.bar = pm.(progress.Model)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *DocumentationModel) resize(width, height int) {
	m.width = width
	m.height = height

	w := width - 8
	if w < 20 {
		w = 20
	}
	h := height - 12
	if h < 5 {
		h = 5
	}
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(w, h)
		// d downloads here, so half-page down is ctrl+d alone.
		m.viewport.KeyMap.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))
	} else {
		m.viewport.Width = w
		m.viewport.Height = h
	}
	m.bar.Width = w - 10
}

// View renders the documentation view.
func (m DocumentationModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Generated Documentation"))
	b.WriteString("  ")
	b.WriteString(tui.DimStyle.Render(fmt.Sprintf("%s · %s · %s", m.session.Origin, m.session.Source, m.session.ID)))
	b.WriteString("\n\n")

	if m.err != "" {
		b.WriteString(tui.ErrorBannerStyle.Render(m.err + "  " + tui.DimStyle.Render("(x to dismiss, r to retry)")))
		b.WriteString("\n\n")
	}
	if m.downloaded != "" {
		b.WriteString(tui.SuccessBannerStyle.Render("Saved " + m.downloaded))
		b.WriteString("\n\n")
	}

	switch {
	case m.Generating():
		b.WriteString(m.spinner.View() + " " + m.status)
		b.WriteString("\n\n")
		b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
		b.WriteString("\n")
		b.WriteString(tui.DimStyle.Render(fmt.Sprintf("%d%% complete", m.percent)))
	case m.markdown != "":
		b.WriteString(m.viewport.View())
	default:
		b.WriteString(tui.DimStyle.Render("No documentation yet."))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderFooter())

	return tui.BoxStyle.Width(m.width - 4).Render(b.String())
}

// renderFooter renders key hints, dimming disabled actions.
func (m DocumentationModel) renderFooter() string {
	hint := func(text string, enabled bool) string {
		if enabled {
			return text
		}
		return tui.DimStyle.Strikethrough(true).Render(text)
	}

	keys := tui.DefaultKeyMap
	hints := []string{
		tui.HelpText(keys.Escape),
		hint(tui.HelpText(keys.Regenerate), m.CanRegenerate()),
		hint(tui.HelpText(keys.Download), m.CanDownload()),
	}
	if m.markdown != "" {
		hints = append(hints, "j/k: Scroll", "PgUp/PgDn: Page")
	}

	ctrlCHint := tui.HelpText(keys.CtrlC)
	if m.ctrlCPending {
		ctrlCHint = tui.WarningStyle.Render("Press Ctrl+C again to exit")
	}
	return tui.DimStyle.Render(strings.Join(hints, " · ")) + " · " + ctrlCHint
}

// SetCtrlCPending sets the Ctrl+C pending state for display.
func (m *DocumentationModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}
