// download.go implements the "reposcribe download" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reposcribe/reposcribe-cli/internal/export"
	"github.com/reposcribe/reposcribe-cli/internal/log"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download generated documentation",
	Long: `Download the documentation generated for the current session (or
--session). The server's file name is used, falling back to README.md;
existing files are never replaced.`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

var (
	downloadSessionFlag string
	formatFlag          string
	dirFlag             string
)

func init() {
	downloadCmd.Flags().StringVar(&downloadSessionFlag, "session", "", "Session ID (default: current session)")
	downloadCmd.Flags().StringVar(&formatFlag, "format", "", "markdown or html (default: download.format)")
	downloadCmd.Flags().StringVar(&dirFlag, "dir", "", "Target directory (default: download.dir)")
}

func runDownload(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.requireAuth(); err != nil {
		return err
	}
	id, err := e.sessionID(downloadSessionFlag)
	if err != nil {
		return err
	}

	format := formatFlag
	if format == "" {
		format = e.cfg.Download.Format
	}
	if format != "markdown" && format != "html" {
		return fmt.Errorf("--format must be markdown or html, got %q", format)
	}
	dir := dirFlag
	if dir == "" {
		dir = e.cfg.Download.Dir
	}

	path, n, err := export.Download(cmd.Context(), e.client, id, format, dir)
	if err != nil {
		e.logger.Record(log.LogEvent{Event: log.EventDownloadFailed, SessionID: id, Error: err.Error()})
		return err
	}
	e.logger.Record(log.LogEvent{Event: log.EventDownloadCompleted, SessionID: id, Path: path, Bytes: n})
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, n)
	return nil
}
