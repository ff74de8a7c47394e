// Package cli wires the shade CLI: config, logging, state store, color
// scheme detection, and the theme resolver.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/shade/internal/application/port"
	"github.com/bnema/shade/internal/config"
	"github.com/bnema/shade/internal/domain/entity"
	"github.com/bnema/shade/internal/infrastructure/colorscheme"
	"github.com/bnema/shade/internal/infrastructure/persistence/filestore"
	"github.com/bnema/shade/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/shade/internal/logging"
	"github.com/bnema/shade/internal/theme"
)

// App holds the wired collaborators for CLI commands.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Ctx      context.Context
	Store    port.StateStore
	Scheme   *colorscheme.Resolver
	Resolver *theme.Resolver
}

// NewApp loads configuration and constructs the resolver stack. Config load
// failures degrade to defaults so the CLI stays usable.
func NewApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Defaults()
	}

	log := logging.New(logging.Config{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		TimeFormat: time.RFC3339,
	})
	ctx = logging.WithContext(ctx, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load config, using defaults")
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	scheme := colorscheme.NewDefaultResolver(cfg)

	schedule := entity.Schedule{
		LightStart: cfg.Schedule.LightStart,
		DarkStart:  cfg.Schedule.DarkStart,
		Timezone:   cfg.Schedule.Timezone,
	}
	resolver, err := theme.New(ctx, store, scheme, theme.Options{
		DefaultTheme:      cfg.DefaultTheme,
		Debounce:          time.Duration(cfg.DebounceMs) * time.Millisecond,
		Schedule:          &schedule,
		SchedulingEnabled: cfg.Schedule.Enabled,
		Transition: &entity.Transition{
			Type:       cfg.Transition.Type,
			DurationMs: cfg.Transition.DurationMs,
		},
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("initialize theme resolver: %w", err)
	}

	return &App{
		Config:   cfg,
		Log:      log,
		Ctx:      ctx,
		Store:    store,
		Scheme:   scheme,
		Resolver: resolver,
	}, nil
}

func newStore(ctx context.Context, cfg *config.Config) (port.StateStore, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		path := cfg.Storage.Path
		if path == "" {
			var err error
			path, err = config.GetDatabaseFile()
			if err != nil {
				return nil, fmt.Errorf("resolve state database path: %w", err)
			}
		}
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		path := cfg.Storage.Path
		if path == "" {
			var err error
			path, err = config.GetStateFile()
			if err != nil {
				return nil, fmt.Errorf("resolve state file path: %w", err)
			}
		}
		return filestore.New(path), nil
	}
}

// Close flushes any pending write and releases the resolver and store.
func (a *App) Close() error {
	if a.Resolver != nil {
		if err := a.Resolver.Flush(a.Ctx); err != nil && err != theme.ErrClosed {
			a.Log.Warn().Err(err).Msg("failed to flush pending theme state")
		}
		_ = a.Resolver.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
