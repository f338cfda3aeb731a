package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/model"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	cfg := &model.Config{
		DatabaseType: "sqlite",
		DatabaseDir:  t.TempDir(),
		DatabaseFile: "test.db",
	}
	store, err := NewStorage(cfg, log.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCacheEmptySlot(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.CacheLoad(context.Background(), "treeData")
	assert.ErrorIs(t, err, ErrCacheEmpty)
}

func TestCacheSaveOverwritesSlot(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.CacheSave(ctx, "treeData", []byte(`{"name":"first"}`)))
	require.NoError(t, store.CacheSave(ctx, "treeData", []byte(`{"name":"second"}`)))
	require.NoError(t, store.CacheSave(ctx, "other", []byte(`{"name":"other"}`)))

	payload, err := store.CacheLoad(ctx, "treeData")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"second"}`, string(payload))

	require.NoError(t, store.CacheClear(ctx, "treeData"))
	_, err = store.CacheLoad(ctx, "treeData")
	assert.ErrorIs(t, err, ErrCacheEmpty)

	payload, err = store.CacheLoad(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"other"}`, string(payload))
}

func TestCacheDetectsCorruption(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		update string
		args   []interface{}
	}{
		{"checksum mismatch", `UPDATE cache_slots SET checksum = ? WHERE slot = ?`, []interface{}{[]byte("not-a-checksum"), "treeData"}},
		{"undecodable payload", `UPDATE cache_slots SET payload = ? WHERE slot = ?`, []interface{}{[]byte{0xff, 0xff, 0xff}, "treeData"}},
		{"unknown encoding", `UPDATE cache_slots SET encoding = ? WHERE slot = ?`, []interface{}{"zstd", "treeData"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStorage(t)
			require.NoError(t, store.CacheSave(ctx, "treeData", []byte(`{"name":"Root"}`)))

			_, err := store.db.Exec(ctx, tt.update, tt.args...)
			require.NoError(t, err)

			_, err = store.CacheLoad(ctx, "treeData")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCacheCorrupt))
		})
	}
}

func TestCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := &model.Config{DatabaseType: "sqlite", DatabaseDir: dir, DatabaseFile: "cache.db"}
	ctx := context.Background()

	store, err := NewStorage(cfg, log.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, store.CacheSave(ctx, "treeData", []byte("payload")))
	require.NoError(t, store.Close())

	store, err = NewStorage(cfg, log.NewNopLogger())
	require.NoError(t, err)
	defer store.Close()

	payload, err := store.CacheLoad(ctx, "treeData")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(payload))
}
