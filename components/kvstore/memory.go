package kvstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: map[string]map[string][]byte{}}
}

func (m *Memory) Get(_ context.Context, owner, key string) ([]byte, bool, error) {
	owner, key, err := normalizeKey(owner, key)
	if err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[owner][key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *Memory) Put(_ context.Context, owner, key string, value []byte) error {
	owner, key, err := normalizeKey(owner, key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values[owner] == nil {
		m.values[owner] = map[string][]byte{}
	}
	m.values[owner][key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, owner, key string) error {
	owner, key, err := normalizeKey(owner, key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values[owner], key)
	return nil
}
