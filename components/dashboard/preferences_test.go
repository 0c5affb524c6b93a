package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-market-dashboard/components/kvstore"
)

func TestInMemoryPreferenceStoreIsolatesViewersAndPanels(t *testing.T) {
	store := NewInMemoryPreferenceStore()
	ctx := context.Background()
	overrides := LayoutOverrides{HiddenWidgets: map[string]bool{"w1": true}}
	require.NoError(t, store.SaveLayoutOverrides(ctx, adminViewer, overrides))

	overrides.HiddenWidgets["w2"] = true
	got, err := store.LayoutOverrides(ctx, adminViewer)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"w1": true}, got.HiddenWidgets)
	assert.NotNil(t, got.AreaOrder)

	asSeller := ViewerContext{UserID: adminViewer.UserID, Roles: []string{"seller"}}
	got, err = store.LayoutOverrides(ctx, asSeller)
	require.NoError(t, err)
	assert.Empty(t, got.HiddenWidgets)

	assert.Error(t, store.SaveLayoutOverrides(ctx, ViewerContext{}, overrides))
}

func TestKVPreferenceStoreRoundTrip(t *testing.T) {
	kv := kvstore.NewMemory()
	store := NewKVPreferenceStore(kv)
	ctx := context.Background()

	want := LayoutOverrides{
		AreaOrder:     map[string][]string{SellerMainArea: {"b", "a"}},
		HiddenWidgets: map[string]bool{"c": true},
	}
	require.NoError(t, store.SaveLayoutOverrides(ctx, sellerViewer, want))

	got, err := store.LayoutOverrides(ctx, sellerViewer)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, ok, err := kv.Get(ctx, sellerViewer.UserID, kvstore.KeyLayoutPreferences+":seller")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"area_order":{"seller.overview.main":["b","a"]},"hidden_widgets":{"c":true}}`, string(raw))
}

func TestKVPreferenceStoreTreatsCorruptEntryAsEmpty(t *testing.T) {
	kv := kvstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, buyerViewer.UserID, kvstore.KeyLayoutPreferences+":buyer", []byte("{not json")))

	got, err := NewKVPreferenceStore(kv).LayoutOverrides(ctx, buyerViewer)
	require.NoError(t, err)
	assert.Empty(t, got.HiddenWidgets)
	assert.Empty(t, got.AreaOrder)
}
