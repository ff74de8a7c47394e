package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/shade/internal/cli/styles"
	"github.com/bnema/shade/internal/domain/entity"
)

var (
	scheduleLight string
	scheduleDark  string
	scheduleTz    string

	scheduleCmd = &cobra.Command{
		Use:   "schedule",
		Short: "Manage scheduled day/night switching",
	}

	scheduleEnableCmd = &cobra.Command{
		Use:   "enable",
		Short: "Enable scheduled switching",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := GetApp()
			if app == nil {
				return fmt.Errorf("app not initialized")
			}
			state, err := app.Resolver.EnableScheduling(cmd.Context(), true)
			if err != nil {
				return err
			}
			fmt.Println(styles.RenderThemeChange(state))
			return nil
		},
	}

	scheduleDisableCmd = &cobra.Command{
		Use:   "disable",
		Short: "Disable scheduled switching",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := GetApp()
			if app == nil {
				return fmt.Errorf("app not initialized")
			}
			state, err := app.Resolver.EnableScheduling(cmd.Context(), false)
			if err != nil {
				return err
			}
			fmt.Println(styles.RenderThemeChange(state))
			return nil
		},
	}

	scheduleSetCmd = &cobra.Command{
		Use:   "set",
		Short: "Set the daily light/dark window",
		Long: `Set the schedule boundaries. Times accept "HH:mm" or duration-of-day
syntax like "6h30m". The dark window may wrap midnight.`,
		RunE: runScheduleSet,
	}

	scheduleNextCmd = &cobra.Command{
		Use:   "next",
		Short: "Show the time until the next scheduled change",
		RunE: func(_ *cobra.Command, _ []string) error {
			app := GetApp()
			if app == nil {
				return fmt.Errorf("app not initialized")
			}
			next := app.Resolver.NextScheduledChange(time.Now())
			if next <= 0 {
				fmt.Println(styles.Muted.Render("scheduling is disabled"))
				return nil
			}
			fmt.Println("next scheduled change in " + styles.Accent.Render(next.Round(time.Second).String()))
			return nil
		},
	}
)

func init() {
	scheduleSetCmd.Flags().StringVar(&scheduleLight, "light", "", "time of day the light window starts (HH:mm)")
	scheduleSetCmd.Flags().StringVar(&scheduleDark, "dark", "", "time of day the dark window starts (HH:mm)")
	scheduleSetCmd.Flags().StringVar(&scheduleTz, "timezone", "", `IANA timezone id, or "local"`)

	scheduleCmd.AddCommand(scheduleEnableCmd)
	scheduleCmd.AddCommand(scheduleDisableCmd)
	scheduleCmd.AddCommand(scheduleSetCmd)
	scheduleCmd.AddCommand(scheduleNextCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runScheduleSet(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	current := app.Resolver.Snapshot().Schedule
	schedule := entity.Schedule{
		LightStart: current.LightStart,
		DarkStart:  current.DarkStart,
		Timezone:   current.Timezone,
	}
	if scheduleLight != "" {
		schedule.LightStart = scheduleLight
	}
	if scheduleDark != "" {
		schedule.DarkStart = scheduleDark
	}
	if scheduleTz != "" {
		schedule.Timezone = scheduleTz
	}

	state, err := app.Resolver.SetSchedule(cmd.Context(), schedule)
	if err != nil {
		return err
	}

	fmt.Println(styles.RenderThemeChange(state))
	return nil
}
