package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCacheServesUntilExpiry(t *testing.T) {
	cache := NewChartCache(time.Minute)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	draws := 0
	draw := func() (string, error) {
		draws++
		return "<div>chart</div>", nil
	}

	for range 3 {
		out, err := cache.Chart("w1", "fp", draw)
		require.NoError(t, err)
		assert.Equal(t, "<div>chart</div>", out)
	}
	assert.Equal(t, 1, draws)

	now = now.Add(2 * time.Minute)
	_, err := cache.Chart("w1", "fp", draw)
	require.NoError(t, err)
	assert.Equal(t, 2, draws)
}

func TestChartCacheRedrawsWhenFingerprintChanges(t *testing.T) {
	cache := NewChartCache(time.Minute)
	draws := 0
	draw := func() (string, error) { draws++; return "x", nil }

	_, _ = cache.Chart("w1", "a", draw)
	_, _ = cache.Chart("w1", "b", draw)
	_, _ = cache.Chart("w1", "b", draw)
	assert.Equal(t, 2, draws)
	assert.Equal(t, 1, cache.Len())
}

func TestChartCacheKeepsFailuresOut(t *testing.T) {
	cache := NewChartCache(time.Minute)
	_, err := cache.Chart("w1", "fp", func() (string, error) { return "", errors.New("boom") })
	require.Error(t, err)
	assert.Zero(t, cache.Len())
}

func TestChartCacheForgetsOnWidgetEvents(t *testing.T) {
	cache := NewChartCache(time.Minute)
	ctx := context.Background()
	draw := func() (string, error) { return "x", nil }
	for _, id := range []string{"w1", "w2", "w3"} {
		_, _ = cache.Chart(id, "fp", draw)
	}

	require.NoError(t, cache.WidgetUpdated(ctx, WidgetEvent{Instance: WidgetInstance{ID: "w1"}, Reason: "refresh"}))
	assert.Equal(t, 2, cache.Len())

	require.NoError(t, cache.WidgetUpdated(ctx, WidgetEvent{Instance: WidgetInstance{ID: "w2"}, Resource: "seller.orders"}))
	assert.Zero(t, cache.Len())
}

func TestChartCacheZeroTTLAlwaysDraws(t *testing.T) {
	cache := NewChartCache(0)
	draws := 0
	for range 2 {
		_, _ = cache.Chart("w1", "fp", func() (string, error) { draws++; return "x", nil })
	}
	assert.Equal(t, 2, draws)
	assert.Zero(t, cache.Len())
}
