package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/shade/internal/cli/styles"
	"github.com/bnema/shade/internal/domain/entity"
)

var (
	themeVars []string

	themesCmd = &cobra.Command{
		Use:   "themes",
		Short: "Manage custom themes",
	}

	themesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List available themes",
		RunE:  runThemesList,
	}

	themesAddCmd = &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom theme",
		Long: `Add a custom theme with its CSS variables.

Example:
  shade themes add sepia --var background=#f4ecd8 --var foreground=#5b4636`,
		Args: cobra.ExactArgs(1),
		RunE: runThemesAdd,
	}

	themesRemoveCmd = &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a custom theme (built-ins are protected)",
		Args:  cobra.ExactArgs(1),
		RunE:  runThemesRemove,
	}
)

func init() {
	themesAddCmd.Flags().StringArrayVar(&themeVars, "var", nil, "CSS variable as key=value (repeatable)")

	themesCmd.AddCommand(themesListCmd)
	themesCmd.AddCommand(themesAddCmd)
	themesCmd.AddCommand(themesRemoveCmd)
	rootCmd.AddCommand(themesCmd)
}

func runThemesList(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	state := app.Resolver.Snapshot()
	for _, name := range state.AvailableThemes {
		marker := "  "
		if name == state.ResolvedTheme {
			marker = styles.Success.Render("* ")
		}
		label := name
		if _, custom := state.CustomThemes[name]; custom {
			label += styles.Muted.Render(" (custom)")
		}
		fmt.Println(marker + label)
	}
	fmt.Println("  " + entity.ThemeAuto + styles.Muted.Render(" (follow system)"))
	return nil
}

func runThemesAdd(cmd *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	variables := make(map[string]string, len(themeVars))
	for _, kv := range themeVars {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid --var %q, expected key=value", kv)
		}
		variables[key] = value
	}

	state, err := app.Resolver.AddCustomTheme(cmd.Context(), args[0], variables)
	if err != nil {
		return err
	}

	fmt.Println(styles.Success.Render("✓") + " added theme " + styles.Accent.Render(args[0]) +
		styles.Muted.Render(fmt.Sprintf(" (%d themes available)", len(state.AvailableThemes))))
	return nil
}

func runThemesRemove(cmd *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	state, err := app.Resolver.RemoveCustomTheme(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Println(styles.Success.Render("✓") + " removed theme " + args[0])
	fmt.Println(styles.RenderThemeChange(state))
	return nil
}
