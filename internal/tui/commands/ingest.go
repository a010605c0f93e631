package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reposcribe/reposcribe-cli/internal/ingest"
	"github.com/reposcribe/reposcribe-cli/internal/session"
	"github.com/reposcribe/reposcribe-cli/internal/tui"
)

// UploadCmd uploads the archive or directory at path.
func UploadCmd(ing *ingest.Ingester, path string) tea.Cmd {
	return func() tea.Msg {
		res, err := ing.Upload(context.Background(), path, nil)
		return tui.IngestResultMsg{Origin: session.OriginFile, Result: res, Err: err}
	}
}

// CloneCmd asks the server to clone a repository.
func CloneCmd(ing *ingest.Ingester, req ingest.CloneRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := ing.Clone(context.Background(), req, nil)
		return tui.IngestResultMsg{Origin: session.OriginGit, Result: res, Err: err}
	}
}

// RampTickCmd schedules the next simulated progress step. seq identifies
// the ingestion the tick belongs to.
func RampTickCmd(interval time.Duration, seq int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tui.RampTickMsg{Seq: seq}
	})
}

// NavigateAfterCmd requests a screen change after d.
func NavigateAfterCmd(d time.Duration, state tui.ViewState) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return tui.NavigateMsg{State: state}
	})
}
