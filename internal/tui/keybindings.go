package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the TUI's command key bindings. Form navigation keys
// (tab, arrows, enter) are handled by the views directly.
type KeyMap struct {
	// Global
	CtrlC  key.Binding
	Logout key.Binding
	Escape key.Binding

	// Auth
	SwitchAuth key.Binding

	// Dashboard
	SwitchTab     key.Binding
	TogglePrivate key.Binding

	// Documentation
	Regenerate key.Binding
	Download   key.Binding
	Dismiss    key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	CtrlC: key.NewBinding(
		key.WithKeys(KeyCtrlC),
		key.WithHelp("Ctrl+C", "Exit"),
	),
	Logout: key.NewBinding(
		key.WithKeys(KeyCtrlL),
		key.WithHelp("Ctrl+L", "Logout"),
	),
	Escape: key.NewBinding(
		key.WithKeys(KeyEsc),
		key.WithHelp("Esc", "Back"),
	),
	SwitchAuth: key.NewBinding(
		key.WithKeys(KeyCtrlR),
		key.WithHelp("Ctrl+R", "Login/Register"),
	),
	SwitchTab: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("Ctrl+T", "Switch tabs"),
	),
	TogglePrivate: key.NewBinding(
		key.WithKeys(KeyCtrlP),
		key.WithHelp("ctrl+p", "private repository"),
	),
	Regenerate: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "Regenerate"),
	),
	Download: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "Download"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "Dismiss"),
	),
}

// HelpText formats a binding as "Key: Description" for footers.
func HelpText(b key.Binding) string {
	h := b.Help()
	return h.Key + ": " + h.Desc
}
