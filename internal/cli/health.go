// health.go implements the "reposcribe health" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reposcribe/reposcribe-cli/internal/api"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server is reachable",
	Long: `Probe the server's health endpoint. With --all the upload, git and
documentation services are probed as well.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

var allFlag bool

func init() {
	healthCmd.Flags().BoolVar(&allFlag, "all", false, "Probe every service")
}

func runHealth(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	paths := []string{api.PathHealth}
	if allFlag {
		paths = append(paths, api.PathUploadHealth, api.PathGitHealth, api.PathDocumentHealth)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, p := range paths {
		h, err := e.client.Health(cmd.Context(), p)
		if err != nil {
			failed++
			fmt.Fprintf(out, "✗ %-24s %v\n", p, err)
			continue
		}
		fmt.Fprintf(out, "✓ %-24s %s\n", p, h.Message)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d health checks failed against %s", failed, len(paths), e.client.BaseURL())
	}
	return nil
}
