package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/shade/internal/cli/styles"
	"github.com/bnema/shade/internal/domain/entity"
)

var (
	setTransitionType string
	setTransitionMs   int

	setCmd = &cobra.Command{
		Use:   "set <theme>",
		Short: "Select a theme (a configured theme name or \"auto\")",
		Long: `Select a theme. "auto" follows the OS color scheme (or the schedule
when one is active). Custom themes added with "shade themes add" can be
selected by name.`,
		Args: cobra.ExactArgs(1),
		RunE: runSet,
	}
)

func init() {
	setCmd.Flags().StringVar(&setTransitionType, "transition", "", "transition type for this change (e.g. fade)")
	setCmd.Flags().IntVar(&setTransitionMs, "duration", 0, "transition duration in milliseconds")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	var transition *entity.Transition
	if setTransitionType != "" || setTransitionMs > 0 {
		transition = &entity.Transition{Type: setTransitionType, DurationMs: setTransitionMs}
	}

	state, err := app.Resolver.SetTheme(cmd.Context(), args[0], transition)
	if err != nil {
		return err
	}

	fmt.Println(styles.RenderThemeChange(state))
	return nil
}
