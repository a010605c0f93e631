package tui

import (
	"fmt"
	"io"
)

// FallbackRunner handles non-TTY execution by guiding users to CLI commands.
type FallbackRunner struct {
	out io.Writer
}

// NewFallbackRunner creates a new FallbackRunner.
func NewFallbackRunner(out io.Writer) *FallbackRunner {
	return &FallbackRunner{out: out}
}

// Run prints the non-interactive equivalents of the TUI screens.
func (f *FallbackRunner) Run() error {
	fmt.Fprintln(f.out, "Non-TTY environment detected.")
	fmt.Fprintln(f.out, "Use the subcommands instead:")
	fmt.Fprintln(f.out, "  reposcribe login --username <name> --password-stdin")
	fmt.Fprintln(f.out, "  reposcribe upload <repo.zip|dir>   or   reposcribe clone <url>")
	fmt.Fprintln(f.out, "  reposcribe generate --out README.md")
	fmt.Fprintln(f.out, "  reposcribe download")
	return nil
}
