// ingest.go implements the upload and clone commands, which submit a
// repository and make the returned session current.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/reposcribe/reposcribe-cli/internal/ingest"
	"github.com/reposcribe/reposcribe-cli/internal/ui"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a ZIP archive or directory",
	Long: `Upload a repository as a ZIP archive (max 500MB). A directory is packed
into a temporary archive first, skipping .git and node_modules.

On success the new session becomes current and is used by generate and
download.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var cloneCmd = &cobra.Command{
	Use:   "clone <url>",
	Short: "Ask the server to clone a Git repository",
	Long: `Ask the server to clone a Git repository over HTTPS, SSH or git://.
Use --private with --username and --password (or a personal access token)
for repositories that need credentials.`,
	Args: cobra.ExactArgs(1),
	RunE: runClone,
}

var (
	privateFlag       bool
	cloneUserFlag     string
	clonePasswordFlag string
)

func init() {
	cloneCmd.Flags().BoolVar(&privateFlag, "private", false, "Repository requires credentials")
	cloneCmd.Flags().StringVar(&cloneUserFlag, "username", "", "Git username for a private repository")
	cloneCmd.Flags().StringVar(&clonePasswordFlag, "password", "", "Git password or personal access token")
}

func runUpload(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.requireAuth(); err != nil {
		return err
	}

	display := newDisplay(cmd, "Uploading")
	res, err := e.ingester().Upload(cmd.Context(), args[0], display.SetPercent)
	if err != nil {
		display.Finish("")
		return err
	}
	display.Finish(res.Message)
	printSession(cmd, res)
	return nil
}

func runClone(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.requireAuth(); err != nil {
		return err
	}

	req := ingest.CloneRequest{
		URL:      args[0],
		Private:  privateFlag,
		Username: cloneUserFlag,
		Password: clonePasswordFlag,
	}
	display := newDisplay(cmd, "Cloning")
	res, err := e.ingester().Clone(cmd.Context(), req, display.SetPercent)
	if err != nil {
		display.Finish("")
		return err
	}
	display.Finish(res.Message)
	printSession(cmd, res)
	return nil
}

func printSession(cmd *cobra.Command, res *ingest.Result) {
	fmt.Fprintf(cmd.OutOrStdout(), "Session ID: %s\n", res.Session.ID)
}

// newDisplay draws progress on stderr so stdout carries only results.
func newDisplay(cmd *cobra.Command, label string) *ui.ProgressDisplay {
	out := cmd.ErrOrStderr()
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return ui.NewProgressDisplayTo(out, label, isTTY)
}
