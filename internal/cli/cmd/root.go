// Package cmd provides Cobra CLI commands for shade.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/shade/internal/cli"
)

var (
	app     *cli.App
	rootCmd = &cobra.Command{
		Use:   "shade",
		Short: "Light/dark/custom theme management for the desktop",
		Long: `Shade resolves the effective theme from your selection, an optional
forced override, the OS color scheme, and an optional day/night schedule,
then persists it for every subscribed application.

Resolution precedence, highest first:
  1. forced theme        (shade force <name>)
  2. day/night schedule  (shade schedule ...; only arbitrates light/dark)
  3. explicit selection  (shade set <name>)
  4. system preference   (shade set auto)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			var err error
			app, err = cli.NewApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetBuildInfo wires version information from main.
func SetBuildInfo(version, commit, buildDate string) {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate)
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}
