// generate.go implements the "reposcribe generate" command which follows a
// documentation generation to completion.
package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/reposcribe/reposcribe-cli/internal/export"
	"github.com/reposcribe/reposcribe-cli/internal/generate"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate documentation for a session",
	Long: `Request documentation for the current session (or --session) and poll
until the server returns it, reports an error, or the timeout passes.

The result is rendered to the terminal, or saved with --out without
replacing an existing file.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var (
	sessionFlag  string
	timeoutFlag  time.Duration
	intervalFlag time.Duration
	outFlag      string
	rawFlag      bool
	styleFlag    string
)

func init() {
	generateCmd.Flags().StringVar(&sessionFlag, "session", "", "Session ID (default: current session)")
	generateCmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "Give up after this long (default: generation.timeout_ms)")
	generateCmd.Flags().DurationVar(&intervalFlag, "interval", 0, "Delay between polls (default: generation.poll_interval_ms)")
	generateCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Save the markdown to this file instead of printing it")
	generateCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print markdown without rendering")
	generateCmd.Flags().StringVar(&styleFlag, "style", "", "Render style: auto, dark, light, notty, ascii")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.requireAuth(); err != nil {
		return err
	}
	id, err := e.sessionID(sessionFlag)
	if err != nil {
		return err
	}

	display := newDisplay(cmd, "Generating")
	res, err := e.poller(intervalFlag, timeoutFlag).Run(cmd.Context(), id, func(u generate.Update) {
		display.Update(u.Progress, u.Status)
	})
	if err != nil {
		display.Finish("")
		if res.Message != "" {
			return errors.New(res.Message)
		}
		return err
	}
	display.Finish("Documentation generated")

	if outFlag != "" {
		path, err := export.Save(filepath.Dir(outFlag), filepath.Base(outFlag), []byte(res.Documentation))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
		return nil
	}

	if rawFlag {
		fmt.Fprint(cmd.OutOrStdout(), res.Documentation)
		return nil
	}
	rendered, err := e.renderer(styleFlag).Render(res.Documentation)
	if err != nil {
		return fmt.Errorf("rendering documentation: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}
