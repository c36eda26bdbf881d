// memory.go - In-memory asset store usable wherever a remote fetch is expected.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// AssetScheme prefixes URLs served from a Memory store ("asset:<id>").
const AssetScheme = "asset:"

// Memory serves registered byte blobs by id. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	assets map[string][]byte
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{assets: make(map[string][]byte)}
}

// Add stores data under id, replacing any previous blob.
func (m *Memory) Add(id string, data []byte) {
	m.mu.Lock()
	m.assets[id] = data
	m.mu.Unlock()
}

// Remove deletes id from the store.
func (m *Memory) Remove(id string) {
	m.mu.Lock()
	delete(m.assets, id)
	m.mu.Unlock()
}

// Fetch resolves "asset:<id>" (or a bare id) to the stored bytes.
func (m *Memory) Fetch(_ context.Context, url string) ([]byte, error) {
	id := strings.TrimPrefix(url, AssetScheme)
	m.mu.RLock()
	data, ok := m.assets[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("fetch: unknown asset %q", id)
	}
	if len(data) == 0 {
		return nil, ErrEmptyBody
	}
	return data, nil
}
