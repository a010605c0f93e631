// Package render turns generated markdown into styled terminal output.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Styles accepted by New.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
	StyleASCII = "ascii"
)

// Renderer renders markdown for display.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Markdown renders with glamour. Headings, fenced code and GFM tables are
// supported.
type Markdown struct {
	style string
	width int
	tr    *glamour.TermRenderer
}

// New creates a Markdown renderer for style wrapped at width columns. A
// non-positive width disables wrapping.
func New(style string, width int) (*Markdown, error) {
	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		style = StyleAuto
	}

	opts := []glamour.TermRendererOption{glamour.WithEmoji()}
	switch style {
	case StyleAuto:
		opts = append(opts, glamour.WithAutoStyle())
	case StyleDark, StyleLight, StyleNoTTY, StyleASCII:
		opts = append(opts, glamour.WithStandardStyle(style))
	default:
		return nil, fmt.Errorf("unknown render style %q", style)
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}
	return &Markdown{style: style, width: width, tr: tr}, nil
}

// Render implements Renderer.
func (m *Markdown) Render(markdown string) (string, error) {
	out, err := m.tr.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// Width returns the wrap width.
func (m *Markdown) Width() int { return m.width }

// WithWidth returns a renderer with the same style wrapped at width.
func (m *Markdown) WithWidth(width int) (*Markdown, error) {
	if width == m.width {
		return m, nil
	}
	return New(m.style, width)
}

// Plain returns markdown unchanged. It is used when output is not a
// terminal.
type Plain struct{}

// Render implements Renderer.
func (Plain) Render(markdown string) (string, error) { return markdown, nil }
