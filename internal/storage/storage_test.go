package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/strrl/llmchat/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, path string) *DuckDBStore {
	t.Helper()

	database, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	store, err := NewDuckDBStore(context.Background(), database)
	require.NoError(t, err)
	return store
}

func TestGetMissingItem(t *testing.T) {
	store := newTestStore(t, "")

	value, ok, err := store.GetItem(context.Background(), SessionKey)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSetAndGetItem(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "")

	require.NoError(t, store.SetItem(ctx, SessionKey, "abc123"))
	value, ok, err := store.GetItem(ctx, SessionKey)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc123", value)
}

func TestSetItemReplaces(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "")

	require.NoError(t, store.SetItem(ctx, "theme", "dark"))
	require.NoError(t, store.SetItem(ctx, "theme", "light"))

	value, _, err := store.GetItem(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", value)

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "")

	require.NoError(t, store.SetItem(ctx, SessionKey, "abc123"))
	require.NoError(t, store.RemoveItem(ctx, SessionKey))
	require.NoError(t, store.RemoveItem(ctx, SessionKey), "removing twice is fine")

	_, ok, err := store.GetItem(ctx, SessionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestItemsOrderedByKey(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	require.NoError(t, store.SetItem(ctx, "b", "2"))
	require.NoError(t, store.SetItem(ctx, "a", "1"))

	items, err := store.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Key)
	assert.Equal(t, "b", items[1].Key)
	assert.True(t, fixed.Equal(items[0].UpdatedAt.UTC()))
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.duckdb")

	database, err := db.Open(path)
	require.NoError(t, err)
	store, err := NewDuckDBStore(ctx, database)
	require.NoError(t, err)
	require.NoError(t, store.SetItem(ctx, SessionKey, "sticky"))
	require.NoError(t, database.Close())

	reopened := newTestStore(t, path)
	value, ok, err := reopened.GetItem(ctx, SessionKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sticky", value)
}
