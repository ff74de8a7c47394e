package port

import (
	"context"

	"github.com/bnema/shade/internal/domain/entity"
)

// StateStore persists the durable subset of theme state and reports external
// changes to it.
type StateStore interface {
	// Load reads the stored state. Absent state is not an error: it returns
	// (nil, nil).
	Load(ctx context.Context) (*entity.PersistedState, error)

	// Save replaces the stored state.
	Save(ctx context.Context, state *entity.PersistedState) error

	// Watch invokes fn for every change made by another process until ctx is
	// cancelled or the returned stop function is called. The store's own
	// saves do not echo back.
	Watch(ctx context.Context, fn func(*entity.PersistedState)) (func(), error)

	// Close releases any resources held by the store.
	Close() error
}
