package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reposcribe/reposcribe-cli/internal/export"
	"github.com/reposcribe/reposcribe-cli/internal/log"
	"github.com/reposcribe/reposcribe-cli/internal/tui"
)

// DownloadCmd fetches the documentation for sessionID and saves it in dir.
func DownloadCmd(d export.Downloader, logger *log.Logger, sessionID, format, dir string) tea.Cmd {
	return func() tea.Msg {
		path, n, err := export.Download(context.Background(), d, sessionID, format, dir)
		if err != nil {
			logger.Record(log.LogEvent{Event: log.EventDownloadFailed, SessionID: sessionID, Error: err.Error()})
			return tui.DownloadResultMsg{Err: err}
		}
		logger.Record(log.LogEvent{Event: log.EventDownloadCompleted, SessionID: sessionID, Path: path, Bytes: n})
		return tui.DownloadResultMsg{Path: path}
	}
}
