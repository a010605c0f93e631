// log.go implements the "reposcribe log" command which prints recent events.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reposcribe/reposcribe-cli/internal/log"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent client events",
	Long: `Show recent events from the client's event log: logins, ingestions,
generations and downloads.`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

var logLimitFlag int

func init() {
	logCmd.Flags().IntVarP(&logLimitFlag, "limit", "n", 20, "Number of events to show (0 = all)")
}

func runLog(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	events, err := e.logger.Tail(logLimitFlag)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintf(out, "No events in %s\n", e.logger.Path())
		return nil
	}
	for _, ev := range events {
		fmt.Fprintln(out, formatEvent(ev))
	}
	return nil
}

// formatEvent renders one event as a single line.
func formatEvent(ev log.LogEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-22s", ev.Time.Local().Format("2006-01-02 15:04:05"), ev.Event)

	field := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, " %s=%s", k, v)
		}
	}
	field("user", ev.Username)
	field("session", ev.SessionID)
	field("origin", ev.Origin)
	field("source", ev.Source)
	field("status", ev.Status)
	if ev.Polls > 0 {
		field("polls", fmt.Sprint(ev.Polls))
	}
	field("path", ev.Path)
	if ev.DurationMs > 0 {
		field("took", fmt.Sprintf("%dms", ev.DurationMs))
	}
	if ev.Error != "" {
		fmt.Fprintf(&b, " error=%q", ev.Error)
	}
	return b.String()
}
