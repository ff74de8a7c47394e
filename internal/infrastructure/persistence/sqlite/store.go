// Package sqlite persists theme state in a single-row SQLite table. It is
// selected over the default file store when several applications share one
// state database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver for database/sql
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite for cross-platform compatibility

	"github.com/bnema/shade/internal/domain/entity"
	"github.com/bnema/shade/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS theme_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	payload TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// DefaultPollInterval is how often Watch polls for external writes.
const DefaultPollInterval = 2 * time.Second

// Store implements port.StateStore on a SQLite database. External changes
// are surfaced by polling the updated_at column; the store's own writes are
// remembered and skipped.
type Store struct {
	db       *sql.DB
	interval time.Duration

	mu       sync.Mutex
	lastSeen int64
}

// Open opens (creating if necessary) the state database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect state database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize state schema: %w", err)
	}
	return &Store{db: db, interval: DefaultPollInterval}, nil
}

// SetPollInterval overrides the external-change poll interval.
func (s *Store) SetPollInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// Load reads the stored state, or (nil, nil) when the row is absent.
func (s *Store) Load(ctx context.Context) (*entity.PersistedState, error) {
	var payload string
	var updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, updated_at FROM theme_state WHERE id = 1`,
	).Scan(&payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state row: %w", err)
	}

	var state entity.PersistedState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("parse state row: %w", err)
	}

	s.mu.Lock()
	s.lastSeen = updatedAt
	s.mu.Unlock()

	return &state, nil
}

// Save upserts the state row.
func (s *Store) Save(ctx context.Context, state *entity.PersistedState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	updatedAt := time.Now().UnixNano()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO theme_state (id, payload, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, string(payload), updatedAt)
	if err != nil {
		return fmt.Errorf("save state row: %w", err)
	}

	s.mu.Lock()
	s.lastSeen = updatedAt
	s.mu.Unlock()

	return nil
}

// Watch polls updated_at and invokes fn when another writer touched the row.
func (s *Store) Watch(ctx context.Context, fn func(*entity.PersistedState)) (func(), error) {
	watchCtx, cancel := context.WithCancel(ctx)
	log := logging.FromContext(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
				state, changed, err := s.loadIfChanged(watchCtx)
				if err != nil {
					if watchCtx.Err() == nil {
						log.Warn().Err(err).Msg("failed to poll state database")
					}
					continue
				}
				if changed && state != nil {
					fn(state)
				}
			}
		}
	}()

	return cancel, nil
}

func (s *Store) loadIfChanged(ctx context.Context) (*entity.PersistedState, bool, error) {
	var payload string
	var updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, updated_at FROM theme_state WHERE id = 1`,
	).Scan(&payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	if updatedAt == s.lastSeen {
		s.mu.Unlock()
		return nil, false, nil
	}
	s.lastSeen = updatedAt
	s.mu.Unlock()

	var state entity.PersistedState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, false, fmt.Errorf("parse state row: %w", err)
	}
	return &state, true, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
