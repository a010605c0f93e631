// Package cli defines Cobra command definitions for the reposcribe CLI.
// This file contains the root command, global flags, and Execute.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reposcribe/reposcribe-cli/internal/tui"
	"github.com/reposcribe/reposcribe-cli/internal/tui/app"
)

var (
	configPath string
	serverURL  string
	ephemeral  bool
	version    = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "reposcribe",
	Short: "Generate documentation for a code repository",
	Long: `reposcribe submits a repository to a reposcribe server, by uploading a
ZIP archive or asking the server to clone a Git URL, then follows the
documentation generation and lets you read or download the result.

Run without a subcommand in a terminal to start the interactive interface.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch TUI if TTY, show help otherwise
		if !tui.IsTTY() {
			return cmd.Help()
		}

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		return tui.Run(app.New(e.tuiDeps()))
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.reposcribe/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server API base URL, overrides server.url")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep login and session state in memory for this run only")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(logCmd)
}
