package cache

import (
	"context"
	"sync"
)

// MemoryBackend keeps entries in process. Suitable for a single API instance.
// Expired entries are never swept; Store overwrites them in place.
type MemoryBackend struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	versions map[Tag]uint64
}

// NewMemoryBackend returns an empty process-local backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries:  make(map[string]Entry),
		versions: make(map[Tag]uint64),
	}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) TagVersions(_ context.Context, tags []Tag) (map[Tag]uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[Tag]uint64, len(tags))
	for _, tag := range tags {
		out[tag] = m.versions[tag]
	}
	return out, nil
}

func (m *MemoryBackend) Load(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	return entry, ok, nil
}

func (m *MemoryBackend) Store(_ context.Context, key string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
	return nil
}

func (m *MemoryBackend) Bump(_ context.Context, tag Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[tag]++
	return nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }
