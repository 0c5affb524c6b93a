package dashboard

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryWidgetStore is a process-local WidgetStore. Overview layouts are
// seeded at startup, so nothing needs to survive a restart.
type MemoryWidgetStore struct {
	mu          sync.Mutex
	areas       map[string]WidgetAreaDefinition
	definitions map[string]WidgetDefinition
	instances   map[string]WidgetInstance
	assignments map[string][]string
	newID       func() string
}

// NewMemoryWidgetStore returns an empty store.
func NewMemoryWidgetStore() *MemoryWidgetStore {
	return &MemoryWidgetStore{
		areas:       map[string]WidgetAreaDefinition{},
		definitions: map[string]WidgetDefinition{},
		instances:   map[string]WidgetInstance{},
		assignments: map[string][]string{},
		newID:       uuid.NewString,
	}
}

// EnsureArea implements WidgetStore.
func (s *MemoryWidgetStore) EnsureArea(_ context.Context, def WidgetAreaDefinition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.areas[def.Code]
	s.areas[def.Code] = def
	return !exists, nil
}

// EnsureDefinition implements WidgetStore.
func (s *MemoryWidgetStore) EnsureDefinition(_ context.Context, def WidgetDefinition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.definitions[def.Code]
	s.definitions[def.Code] = def
	return !exists, nil
}

// CreateInstance implements WidgetStore.
func (s *MemoryWidgetStore) CreateInstance(_ context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	instance := WidgetInstance{
		ID:            s.newID(),
		DefinitionID:  input.DefinitionID,
		Configuration: maps.Clone(input.Configuration),
		Metadata:      maps.Clone(input.Metadata),
		Visibility:    input.Visibility,
	}
	s.instances[instance.ID] = instance
	return instance, nil
}

// GetInstance implements WidgetStore.
func (s *MemoryWidgetStore) GetInstance(_ context.Context, instanceID string) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[instanceID]
	if !ok {
		return WidgetInstance{}, ErrWidgetNotFound
	}
	return inst, nil
}

// UpdateInstance implements WidgetStore.
func (s *MemoryWidgetStore) UpdateInstance(_ context.Context, input UpdateWidgetInstanceInput) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[input.InstanceID]
	if !ok {
		return WidgetInstance{}, ErrWidgetNotFound
	}
	if input.Configuration != nil {
		inst.Configuration = maps.Clone(input.Configuration)
	}
	if len(input.Metadata) > 0 {
		if inst.Metadata == nil {
			inst.Metadata = map[string]any{}
		}
		maps.Copy(inst.Metadata, input.Metadata)
	}
	s.instances[inst.ID] = inst
	return inst, nil
}

// DeleteInstance implements WidgetStore.
func (s *MemoryWidgetStore) DeleteInstance(_ context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[instanceID]; !ok {
		return ErrWidgetNotFound
	}
	delete(s.instances, instanceID)
	for area, ids := range s.assignments {
		s.assignments[area] = slices.DeleteFunc(ids, func(id string) bool { return id == instanceID })
	}
	return nil
}

// AssignInstance implements WidgetStore.
func (s *MemoryWidgetStore) AssignInstance(_ context.Context, input AssignWidgetInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[input.InstanceID]
	if !ok {
		return ErrWidgetNotFound
	}
	inst.AreaCode = input.AreaCode
	s.instances[inst.ID] = inst
	order := s.assignments[input.AreaCode]
	if input.Position != nil && *input.Position >= 0 && *input.Position <= len(order) {
		order = slices.Insert(order, *input.Position, input.InstanceID)
	} else {
		order = append(order, input.InstanceID)
	}
	s.assignments[input.AreaCode] = order
	return nil
}

// ReorderArea implements WidgetStore. Unknown ids are ignored and widgets the
// caller omitted keep their relative order after the listed ones.
func (s *MemoryWidgetStore) ReorderArea(_ context.Context, input ReorderAreaInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.assignments[input.AreaCode]
	next := make([]string, 0, len(current))
	for _, id := range input.WidgetIDs {
		if slices.Contains(current, id) && !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	for _, id := range current {
		if !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	s.assignments[input.AreaCode] = next
	return nil
}

// ResolveArea implements WidgetStore.
func (s *MemoryWidgetStore) ResolveArea(_ context.Context, input ResolveAreaInput) (ResolvedArea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.assignments[input.AreaCode]
	widgets := make([]WidgetInstance, 0, len(ids))
	for _, id := range ids {
		if inst, ok := s.instances[id]; ok {
			inst.Configuration = maps.Clone(inst.Configuration)
			inst.Metadata = maps.Clone(inst.Metadata)
			widgets = append(widgets, inst)
		}
	}
	return ResolvedArea{
		AreaCode: input.AreaCode,
		Widgets:  widgets,
	}, nil
}

// Areas returns the registered area definitions.
func (s *MemoryWidgetStore) Areas() []WidgetAreaDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]WidgetAreaDefinition, 0, len(s.areas))
	for _, area := range s.areas {
		out = append(out, area)
	}
	slices.SortFunc(out, func(a, b WidgetAreaDefinition) int {
		switch {
		case a.Code < b.Code:
			return -1
		case a.Code > b.Code:
			return 1
		}
		return 0
	})
	return out
}
