package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "seller-1", KeySettings)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "seller-1", KeySettings, []byte(`{"version":2}`)))
	require.NoError(t, store.Put(ctx, "seller-2", KeySettings, []byte(`{"version":1}`)))

	value, ok, err := store.Get(ctx, "seller-1", KeySettings)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"version":2}`, string(value))

	require.NoError(t, store.Put(ctx, "seller-1", KeySettings, []byte(`{"version":3}`)))
	value, _, err = store.Get(ctx, "seller-1", KeySettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":3}`, string(value))

	require.NoError(t, store.Delete(ctx, "seller-1", KeySettings))
	_, ok, err = store.Get(ctx, "seller-1", KeySettings)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Get(ctx, "seller-2", KeySettings)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Error(t, store.Put(ctx, "", KeySettings, nil))
	assert.Error(t, store.Put(ctx, "seller-1", " ", nil))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemory()
	value := []byte("abc")
	require.NoError(t, store.Put(context.Background(), "o", "k", value))
	value[0] = 'z'
	got, _, err := store.Get(context.Background(), "o", "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	exerciseStore(t, store)
}

func TestSQLiteStoreReopenKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "buyer-1", KeySellerAccessToken, []byte("tok")))
	require.NoError(t, store.Close())

	store, err = OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	value, ok, err := store.Get(context.Background(), "buyer-1", KeySellerAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok", string(value))
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	assert.Error(t, err)
}
