package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/shade/internal/domain/entity"
)

func testState(selected string) *entity.PersistedState {
	return &entity.PersistedState{
		SelectedTheme: selected,
		Schedule:      entity.Schedule{LightStart: "06:00", DarkStart: "18:00"},
		CustomThemes: []entity.CustomTheme{
			{Name: "sepia", Variables: map[string]string{"background": "#f4ecd8"}},
		},
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "state.json"))

	state, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := New(path)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testState("dark")))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "dark", loaded.SelectedTheme)
	assert.Equal(t, "06:00", loaded.Schedule.LightStart)
	require.Len(t, loaded.CustomThemes, 1)
	assert.Equal(t, "#f4ecd8", loaded.CustomThemes[0].Variables["background"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestStore_SaveNilState(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "state.json"))

	err := store.Save(context.Background(), nil)
	assert.Error(t, err)
}

func TestStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := New(path).Load(context.Background())
	assert.Error(t, err)
}

func TestStore_WatchSeesExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := New(path)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testState("light")))
	_, err := store.Load(ctx)
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []*entity.PersistedState
	stop, err := store.Watch(ctx, func(state *entity.PersistedState) {
		mu.Lock()
		seen = append(seen, state)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer stop()

	// Simulate another process rewriting the file.
	data, err := json.Marshal(testState("dark"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "dark", seen[0].SelectedTheme)
}

func TestStore_WatchIgnoresOwnSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := New(path)
	ctx := context.Background()

	var mu sync.Mutex
	var calls int
	stop, err := store.Watch(ctx, func(*entity.PersistedState) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, store.Save(ctx, testState("dark")))
	require.NoError(t, store.Save(ctx, testState("light")))

	// Give fsnotify time to deliver whatever it is going to deliver.
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}

func TestStore_WatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(filepath.Join(dir, "state.json"))
	ctx := context.Background()

	var mu sync.Mutex
	var calls int
	stop, err := store.Watch(ctx, func(*entity.PersistedState) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0644))

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}
