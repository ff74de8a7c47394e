package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/shade/internal/cli/styles"
	"github.com/bnema/shade/internal/domain/entity"
	"github.com/bnema/shade/internal/infrastructure/colorscheme"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the resolver and print theme changes until interrupted",
	Long: `Keep the resolver running: mirror OS color scheme flips, apply schedule
boundaries, and pick up state written by other shade processes. Each change
is printed as it commits. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	unsubscribe := app.Resolver.OnChange(func(state entity.State) {
		fmt.Println(time.Now().Format("15:04:05") + " " + styles.RenderThemeChange(state))
	})
	defer unsubscribe()

	unsubTransition := app.Resolver.OnTransition(func(active bool) {
		if active {
			fmt.Println(styles.Muted.Render("transition started"))
		}
	})
	defer unsubTransition()

	fmt.Println(styles.RenderThemeChange(app.Resolver.Snapshot()))

	monitor := colorscheme.NewMonitor(app.Scheme,
		time.Duration(app.Config.ColorScheme.PollIntervalMs)*time.Millisecond)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return monitor.Run(ctx)
	})
	g.Go(func() error {
		// Re-resolve on schedule boundaries while scheduling is enabled.
		for {
			next := app.Resolver.NextScheduledChange(time.Now())
			if next <= 0 {
				next = time.Minute
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(next):
				app.Resolver.RefreshSchedule(ctx)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
