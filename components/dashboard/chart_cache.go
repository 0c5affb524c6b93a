package dashboard

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"strconv"
	"sync"
	"time"
)

// RenderCache memoizes chart HTML per widget instance. A stored entry only
// answers while its fingerprint matches the chart being drawn.
type RenderCache interface {
	Chart(key, fingerprint string, draw func() (string, error)) (string, error)
}

// ChartCache keeps one rendered chart per widget instance for ttl. It is also
// a RefreshHook: mutations drop the charts they make stale.
type ChartCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]chartEntry
}

type chartEntry struct {
	fingerprint string
	html        string
	expires     time.Time
}

// NewChartCache builds a cache; a ttl of zero or less disables it.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{ttl: ttl, now: time.Now, entries: map[string]chartEntry{}}
}

// Chart implements RenderCache.
func (c *ChartCache) Chart(key, fingerprint string, draw func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return draw()
	}
	now := c.now()
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && entry.fingerprint == fingerprint && now.Before(entry.expires) {
		return entry.html, nil
	}

	out, err := draw()
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.entries[key] = chartEntry{fingerprint: fingerprint, html: out, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return out, nil
}

// Forget drops the chart of one instance, or every chart when key is empty.
// It reports how many entries went.
func (c *ChartCache) Forget(key string) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if key != "" {
		if _, ok := c.entries[key]; !ok {
			return 0
		}
		delete(c.entries, key)
		return 1
	}
	n := len(c.entries)
	clear(c.entries)
	return n
}

// Len counts stored charts, expired ones included.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// WidgetUpdated drops the chart of a changed widget. Marketplace changes
// (events naming a resource) and area-wide events drop every chart, since any
// figure may have moved.
func (c *ChartCache) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	if event.Resource == "" {
		if key := cacheKey(event.Instance); key != "" {
			c.Forget(key)
			return nil
		}
	}
	c.Forget("")
	return nil
}

func cacheKey(inst WidgetInstance) string {
	return inst.ID
}

// fingerprint hashes everything that changes the rendered markup.
func fingerprint(chart Chart, assetsHost string) string {
	raw, err := json.Marshal(struct {
		Chart Chart  `json:"chart"`
		Host  string `json:"host"`
	}{chart, assetsHost})
	if err != nil {
		return ""
	}
	h := fnv.New64a()
	_, _ = h.Write(raw)
	return strconv.FormatUint(h.Sum64(), 36)
}
