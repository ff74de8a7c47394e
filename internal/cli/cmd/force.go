package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/shade/internal/cli/styles"
)

var (
	forceClear bool

	forceCmd = &cobra.Command{
		Use:   "force [theme]",
		Short: "Force a theme, overriding selection, schedule, and system",
		Long: `Force a theme for presentation or demo use. The override applies
immediately, bypassing the debounce window, and wins over every other
policy until cleared with --clear.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runForce,
	}
)

func init() {
	forceCmd.Flags().BoolVar(&forceClear, "clear", false, "clear the forced theme")
	rootCmd.AddCommand(forceCmd)
}

func runForce(cmd *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	if forceClear {
		if len(args) > 0 {
			return fmt.Errorf("--clear takes no theme argument")
		}
		state, err := app.Resolver.ClearForcedTheme(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(styles.RenderThemeChange(state))
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("a theme name is required (or --clear)")
	}

	state, err := app.Resolver.ForceTheme(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Println(styles.RenderThemeChange(state))
	return nil
}
