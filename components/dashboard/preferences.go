package dashboard

import (
	"context"
	"encoding/json"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/kvstore"
)

// InMemoryPreferenceStore keeps overrides in process memory.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]LayoutOverrides
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{
		data: make(map[string]LayoutOverrides),
	}
}

// LayoutOverrides returns stored overrides or empty defaults.
func (s *InMemoryPreferenceStore) LayoutOverrides(_ context.Context, viewer ViewerContext) (LayoutOverrides, error) {
	var overrides LayoutOverrides
	if viewer.UserID != "" {
		s.mu.RLock()
		overrides = cloneOverrides(s.data[preferenceKey(viewer)])
		s.mu.RUnlock()
	}
	overrides.normalize()
	return overrides, nil
}

// SaveLayoutOverrides persists overrides for a viewer.
func (s *InMemoryPreferenceStore) SaveLayoutOverrides(_ context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return errMissingViewer
	}
	overrides.normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[preferenceKey(viewer)] = cloneOverrides(overrides)
	return nil
}

// KVPreferenceStore persists overrides as JSON in a kvstore, one entry per
// viewer and panel.
type KVPreferenceStore struct {
	store kvstore.Store
}

// NewKVPreferenceStore wraps a kvstore.
func NewKVPreferenceStore(store kvstore.Store) *KVPreferenceStore {
	return &KVPreferenceStore{store: store}
}

// LayoutOverrides implements PreferenceStore. Corrupt entries read as empty.
func (s *KVPreferenceStore) LayoutOverrides(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error) {
	var overrides LayoutOverrides
	if viewer.UserID != "" {
		raw, ok, err := s.store.Get(ctx, viewer.UserID, s.key(viewer))
		if err != nil {
			return LayoutOverrides{}, goerrors.Wrap(err, goerrors.CategoryInternal, "load layout preferences")
		}
		if ok {
			if err := json.Unmarshal(raw, &overrides); err != nil {
				overrides = LayoutOverrides{}
			}
		}
	}
	overrides.normalize()
	return overrides, nil
}

// SaveLayoutOverrides implements PreferenceStore.
func (s *KVPreferenceStore) SaveLayoutOverrides(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return errMissingViewer
	}
	overrides.normalize()
	raw, err := json.Marshal(overrides)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "encode layout preferences")
	}
	if err := s.store.Put(ctx, viewer.UserID, s.key(viewer), raw); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "save layout preferences")
	}
	return nil
}

func (s *KVPreferenceStore) key(viewer ViewerContext) string {
	return kvstore.KeyLayoutPreferences + ":" + viewer.Role().String()
}

func preferenceKey(viewer ViewerContext) string {
	return viewer.UserID + "::" + viewer.Role().String()
}

func cloneOverrides(in LayoutOverrides) LayoutOverrides {
	out := LayoutOverrides{}
	if in.AreaOrder != nil {
		out.AreaOrder = make(map[string][]string, len(in.AreaOrder))
		for area, ids := range in.AreaOrder {
			out.AreaOrder[area] = append([]string(nil), ids...)
		}
	}
	if in.HiddenWidgets != nil {
		out.HiddenWidgets = make(map[string]bool, len(in.HiddenWidgets))
		for id, hidden := range in.HiddenWidgets {
			out.HiddenWidgets[id] = hidden
		}
	}
	return out
}
