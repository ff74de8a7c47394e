// Package filestore persists theme state as a JSON file and watches it for
// writes made by other processes.
package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/bnema/shade/internal/domain/entity"
	"github.com/bnema/shade/internal/logging"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// Store implements port.StateStore on a single JSON file. Saves are atomic
// (temp file + rename). Watch uses fsnotify on the parent directory so
// rename-based writers are seen too; the store's own writes are suppressed
// by content hash.
type Store struct {
	path string

	mu       sync.Mutex
	lastHash [sha256.Size]byte
	watcher  *fsnotify.Watcher
}

// New creates a store over the given file path. The file does not need to
// exist yet.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the stored state. A missing file is not an error: it returns
// (nil, nil).
func (s *Store) Load(_ context.Context) (*entity.PersistedState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state entity.PersistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.lastHash = sha256.Sum256(data)
	s.mu.Unlock()

	return &state, nil
}

// Save atomically replaces the stored state.
func (s *Store) Save(_ context.Context, state *entity.PersistedState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp state file: %w", err)
	}

	// Record the hash before the rename lands so the watch goroutine cannot
	// observe the new file first.
	s.mu.Lock()
	s.lastHash = sha256.Sum256(data)
	s.mu.Unlock()

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Watch invokes fn for every external change to the state file until ctx is
// cancelled or the returned stop function is called. Writes made through
// Save do not echo back.
func (s *Store) Watch(ctx context.Context, fn func(*entity.PersistedState)) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch state directory: %w", err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	log := logging.FromContext(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.path {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				state, changed, err := s.loadIfChanged()
				if err != nil {
					log.Warn().Err(err).Msg("failed to reload externally changed state")
					continue
				}
				if changed && state != nil {
					fn(state)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("state watcher error")
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			watcher.Close()
		})
	}
	return stop, nil
}

// loadIfChanged reads the file and reports whether its content differs from
// the last write or load seen by this store.
func (s *Store) loadIfChanged() (*entity.PersistedState, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	hash := sha256.Sum256(data)
	s.mu.Lock()
	if hash == s.lastHash {
		s.mu.Unlock()
		return nil, false, nil
	}
	s.lastHash = hash
	s.mu.Unlock()

	var state entity.PersistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, false, fmt.Errorf("parse state file %s: %w", s.path, err)
	}
	return &state, true, nil
}

// Close releases the watcher if one is active.
func (s *Store) Close() error {
	s.mu.Lock()
	watcher := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if watcher != nil {
		return watcher.Close()
	}
	return nil
}
