package colorscheme

import (
	"context"
	"time"

	"github.com/bnema/shade/internal/application/port"
	"github.com/bnema/shade/internal/logging"
)

// DefaultPollInterval is how often the monitor re-evaluates the detector
// chain when no interval is configured.
const DefaultPollInterval = 10 * time.Second

// Monitor periodically refreshes a color scheme resolver so OS preference
// flips propagate as OnChange callbacks. It is the portable stand-in for a
// media-query change listener.
type Monitor struct {
	resolver port.ColorSchemeResolver
	interval time.Duration
}

// NewMonitor creates a monitor over the given resolver.
func NewMonitor(resolver port.ColorSchemeResolver, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{resolver: resolver, interval: interval}
}

// Run refreshes the resolver until ctx is cancelled. It always returns
// ctx.Err().
func (m *Monitor) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)
	log.Debug().Dur("interval", m.interval).Msg("color scheme monitor started")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("color scheme monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.resolver.Refresh()
		}
	}
}
