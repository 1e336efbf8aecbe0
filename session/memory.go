package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	agentscope "github.com/wuji1428/agentscope-go"
)

// MemoryStore is an in-memory Session store backed by a sync.RWMutex-protected
// map. Blobs are stored in serialized form, so values saved and loaded cannot
// share mutable state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage
}

var _ agentscope.Session = (*MemoryStore)(nil)

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]json.RawMessage)}
}

// Save stores a state blob under (key, name), replacing any prior blob.
func (m *MemoryStore) Save(_ context.Context, key, name string, value any) error {
	if key == "" || name == "" {
		return fmt.Errorf("session: key and name are required")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session: marshal %s/%s: %w", key, name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	blobs, ok := m.data[key]
	if !ok {
		blobs = make(map[string]json.RawMessage)
		m.data[key] = blobs
	}
	blobs[name] = raw
	return nil
}

// Get loads the blob at (key, name) into out. The boolean reports whether a
// blob existed.
func (m *MemoryStore) Get(_ context.Context, key, name string, out any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[key][name]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("session: unmarshal %s/%s: %w", key, name, err)
	}
	return true, nil
}

// Delete removes every blob stored under key.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns the session keys currently present in the store.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
