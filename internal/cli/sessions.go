// sessions.go implements "reposcribe sessions" and "reposcribe session".
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reposcribe/reposcribe-cli/internal/cleanup"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List past sessions",
	Long: `List repositories ingested from this machine, most recent first, with
the outcome of their last generation. The current session is marked with *.`,
	Args: cobra.NoArgs,
	RunE: runSessions,
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show or change the current session",
	Args:  cobra.NoArgs,
	RunE:  runSessionShow,
}

var sessionUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Make a past session current",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionUse,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the current session",
	Args:  cobra.NoArgs,
	RunE:  runSessionClear,
}

var sessionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old sessions from the history",
	Long: `Remove old sessions from the local history. The current session is
always kept.

By default, removes sessions not updated for state.history_max_age_days
(default 30). Use --keep to keep only the N most recent sessions instead.
Use --dry-run to preview what would be removed.`,
	Args: cobra.NoArgs,
	RunE: runSessionsPrune,
}

var (
	limitFlag  int
	keepFlag   int
	dryRunFlag bool
)

func init() {
	sessionsCmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum sessions to list (0 = all)")
	sessionsPruneCmd.Flags().IntVar(&keepFlag, "keep", 0, "Keep only the last N sessions (0 = use age-based pruning)")
	sessionsPruneCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Preview what would be removed without deleting")

	sessionsCmd.AddCommand(sessionsPruneCmd)
	sessionCmd.AddCommand(sessionUseCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	records, err := e.store.ListSessions(limitFlag)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions yet. Start one with: reposcribe upload <path> or reposcribe clone <url>")
		return nil
	}

	current := e.sessions.ID()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tORIGIN\tSTATUS\tUPDATED\tSOURCE")
	for _, r := range records {
		mark := ""
		if r.ID == current {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, r.ID, r.Origin, r.Status, r.UpdatedAt.Local().Format("2006-01-02 15:04"), r.Source)
	}
	return w.Flush()
}

func runSessionsPrune(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	current := e.sessions.ID()
	var pruned []string
	if keepFlag > 0 {
		pruned, err = cleanup.PruneKeepRecent(e.store, keepFlag, current, dryRunFlag)
	} else {
		maxAge := e.cfg.State.HistoryMaxAgeDays
		if maxAge <= 0 {
			maxAge = 30
		}
		pruned, err = cleanup.PruneByAge(e.store, maxAge, current, dryRunFlag)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(pruned) == 0 {
		fmt.Fprintln(out, "No sessions to remove")
		return nil
	}
	verb := "Removed"
	if dryRunFlag {
		verb = "Would remove"
	}
	for _, id := range pruned {
		fmt.Fprintf(out, "%s %s\n", verb, id)
	}
	fmt.Fprintf(out, "%s %d session(s)\n", verb, len(pruned))
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sess, ok := e.sessions.Current()
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "No current session")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s %s)\n", sess.ID, sess.Origin, sess.Source)
	return nil
}

func runSessionUse(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := e.store.GetSession(args[0])
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("unknown session %q; list them with: reposcribe sessions", args[0])
	}
	if err := e.sessions.Set(rec.Session); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Current session: %s\n", rec.ID)
	return nil
}

func runSessionClear(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.sessions.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Current session cleared")
	return nil
}
