// Package views provides TUI view components for the reposcribe application.
package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reposcribe/reposcribe-cli/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// SubmitAuthMsg is sent when the user submits the login or register form.
type SubmitAuthMsg struct {
	Register bool
	Username string
	Password string
}

// SwitchAuthMsg is sent when the user toggles between login and register.
type SwitchAuthMsg struct {
	Register bool
}

// Validation messages for the auth form.
const (
	MsgCredentialsRequired = "Please enter username and password"
	MsgPasswordMismatch    = "Passwords do not match"
	MsgPasswordTooShort    = "Password must be at least 6 characters"
)

const minPasswordLen = 6

// ============================================================================
// LoginModel
// ============================================================================

const (
	fieldUsername = iota
	fieldPassword
	fieldConfirm
)

// LoginModel is the view model for the login and register screens.
type LoginModel struct {
	register bool
	inputs   []textinput.Model
	focus    int
	err      string
	busy     bool
	spinner  spinner.Model
	width    int
	height   int

	// Ctrl+C confirmation state
	ctrlCPending bool
}

// NewLoginModel creates the form. register adds a password confirmation
// field.
func NewLoginModel(register bool, width, height int) LoginModel {
	n := 2
	if register {
		n = 3
	}
	inputs := make([]textinput.Model, n)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 128
		ti.Width = 40
		switch i {
		case fieldUsername:
			ti.Placeholder = "username"
		case fieldPassword:
			ti.Placeholder = "password"
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		case fieldConfirm:
			ti.Placeholder = "confirm password"
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}
	inputs[fieldUsername].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return LoginModel{
		register: register,
		inputs:   inputs,
		spinner:  sp,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the login view.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Register reports whether the form is in register mode.
func (m LoginModel) Register() bool { return m.register }

// Update handles messages for the login view.
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case tui.KeyTab, tui.KeyDown:
			m.setFocus((m.focus + 1) % len(m.inputs))
			return m, nil
		case tui.KeyShiftTab, tui.KeyUp:
			m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, nil
		case tui.KeyEsc:
			m.err = ""
			return m, nil
		case tui.KeyCtrlR:
			register := !m.register
			return m, func() tea.Msg { return SwitchAuthMsg{Register: register} }
		case tui.KeyEnter:
			if m.focus < len(m.inputs)-1 && m.inputs[m.focus].Value() != "" {
				m.setFocus(m.focus + 1)
				return m, nil
			}
			return m.submit()
		}

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit validates the form and emits SubmitAuthMsg.
func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[fieldUsername].Value())
	password := m.inputs[fieldPassword].Value()

	if username == "" || password == "" {
		m.err = MsgCredentialsRequired
		return m, nil
	}
	if m.register {
		if len(password) < minPasswordLen {
			m.err = MsgPasswordTooShort
			return m, nil
		}
		if password != m.inputs[fieldConfirm].Value() {
			m.err = MsgPasswordMismatch
			return m, nil
		}
	}

	m.err = ""
	m.busy = true
	register := m.register
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return SubmitAuthMsg{Register: register, Username: username, Password: password}
	})
}

func (m *LoginModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

// SetError ends a pending submit with an error.
func (m *LoginModel) SetError(msg string) {
	m.busy = false
	m.err = msg
}

// Err returns the displayed error, if any.
func (m LoginModel) Err() string { return m.err }

// Busy reports whether a submit is in flight.
func (m LoginModel) Busy() bool { return m.busy }

// View renders the login view.
func (m LoginModel) View() string {
	var b strings.Builder

	title := "Reposcribe - Sign in"
	if m.register {
		title = "Reposcribe - Create account"
	}
	b.WriteString(tui.TitleStyle.Render(title))
	b.WriteString("\n\n")

	labels := []string{"Username", "Password", "Confirm"}
	for i, in := range m.inputs {
		label := labels[i]
		if i == m.focus {
			label = tui.SelectedStyle.Render(label)
		} else {
			label = tui.DimStyle.Render(label)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(10).Render(label), in.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.err != "" {
		b.WriteString(tui.ErrorBannerStyle.Render(m.err))
		b.WriteString("\n\n")
	}
	if m.busy {
		action := "Signing in..."
		if m.register {
			action = "Creating account..."
		}
		b.WriteString(m.spinner.View() + " " + action)
		b.WriteString("\n\n")
	}

	switchHint := "Ctrl+R: Create an account"
	if m.register {
		switchHint = "Ctrl+R: Back to sign in"
	}
	hints := tui.DimStyle.Render(strings.Join([]string{"Enter: Submit", "Tab: Next field", switchHint}, " · "))

	ctrlCHint := tui.DimStyle.Render("Ctrl+C: Exit")
	if m.ctrlCPending {
		ctrlCHint = tui.WarningStyle.Render("Press Ctrl+C again to exit")
	}
	b.WriteString(hints + " · " + ctrlCHint)

	boxWidth := 64
	if m.width-4 < boxWidth {
		boxWidth = m.width - 4
	}
	return tui.BoxStyle.Width(boxWidth).Render(b.String())
}

// SetCtrlCPending sets the Ctrl+C pending state for display.
func (m *LoginModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}
