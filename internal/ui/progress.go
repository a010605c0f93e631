// Package ui provides terminal output helpers for reposcribe subcommands.
// This file implements the progress line shown during uploads, clones and
// generation.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const barWidth = 30

// ProgressDisplay renders a single live-updating progress line. On a TTY the
// line is redrawn in place; otherwise a line is printed whenever the status
// text changes or progress crosses a 10% step. Safe for concurrent use.
type ProgressDisplay struct {
	mu         sync.Mutex
	out        io.Writer
	label      string
	status     string
	percent    int
	isTTY      bool
	drawn      bool
	started    time.Time
	lastStep   int
	lastStatus string
}

// NewProgressDisplay creates a display on stdout.
func NewProgressDisplay(label string) *ProgressDisplay {
	return NewProgressDisplayTo(os.Stdout, label, term.IsTerminal(int(os.Stdout.Fd())))
}

// NewProgressDisplayTo creates a display writing to out.
func NewProgressDisplayTo(out io.Writer, label string, isTTY bool) *ProgressDisplay {
	return &ProgressDisplay{out: out, label: label, isTTY: isTTY, started: time.Now(), lastStep: -1}
}

// SetPercent updates the percentage.
func (p *ProgressDisplay) SetPercent(percent int) {
	p.Update(percent, "")
}

// Update sets the percentage and, if non-empty, the status text.
func (p *ProgressDisplay) Update(percent int, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	p.percent = percent
	if status != "" {
		p.status = status
	}
	p.render()
}

// Finish ends the display with a final message.
func (p *ProgressDisplay) Finish(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isTTY && p.drawn {
		fmt.Fprint(p.out, "\n")
	}
	if msg != "" {
		fmt.Fprintf(p.out, "%s [%s]\n", msg, formatDuration(time.Since(p.started)))
	}
}

func (p *ProgressDisplay) render() {
	if p.isTTY {
		fmt.Fprintf(p.out, "\r\033[2K%s", p.line())
		p.drawn = true
		return
	}

	step := p.percent / 10
	if step == p.lastStep && p.status == p.lastStatus {
		return
	}
	fmt.Fprintln(p.out, p.plainLine())
	p.lastStep = step
	p.lastStatus = p.status
}

// line formats the TTY line with a bar.
func (p *ProgressDisplay) line() string {
	filled := p.percent * barWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	s := fmt.Sprintf("\033[1m%s\033[0m %s %3d%%", p.label, bar, p.percent)
	if p.status != "" {
		s += "  \033[90m" + truncate(p.status, 50) + "\033[0m"
	}
	return s
}

// plainLine formats a line for non-TTY output.
func (p *ProgressDisplay) plainLine() string {
	s := fmt.Sprintf("[%s] %d%%", p.label, p.percent)
	if p.status != "" {
		s += " - " + p.status
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", h, m, s)
}
