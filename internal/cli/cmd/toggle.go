package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/shade/internal/cli/styles"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("app not initialized")
		}

		state, err := app.Resolver.ToggleTheme(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(styles.RenderThemeChange(state))
		return nil
	},
}

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Advance to the next available theme",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("app not initialized")
		}

		state, err := app.Resolver.CycleTheme(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(styles.RenderThemeChange(state))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(cycleCmd)
}
