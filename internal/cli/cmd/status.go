package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/shade/internal/cli/styles"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current theme state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	state := app.Resolver.Snapshot()
	next := app.Resolver.NextScheduledChange(time.Now())

	fmt.Print(styles.RenderStatus(state, next))
	return nil
}
