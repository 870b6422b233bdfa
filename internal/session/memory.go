package session

import (
	"context"
	"sync"
	"time"
)

var _ Backend = (*MemoryBackend)(nil)

type memoryEntry struct {
	values    map[string][]byte
	expiresAt time.Time
}

// MemoryBackend keeps sessions in process memory. Suitable for a single
// instance and for tests.
type MemoryBackend struct {
	mu       sync.Mutex
	sessions map[string]*memoryEntry
	now      func() time.Time
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		sessions: make(map[string]*memoryEntry),
		now:      time.Now,
	}
}

// Get returns a copy of the stored value.
func (m *MemoryBackend) Get(_ context.Context, id, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.now().After(e.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	v, ok := e.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value and extends the session to now+ttl.
func (m *MemoryBackend) Set(_ context.Context, id, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		e = &memoryEntry{values: make(map[string][]byte)}
		m.sessions[id] = e
	}
	e.values[key] = append([]byte(nil), value...)
	e.expiresAt = m.now().Add(ttl)
	return nil
}

// Cleanup drops expired sessions.
func (m *MemoryBackend) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, e := range m.sessions {
		if now.After(e.expiresAt) {
			delete(m.sessions, id)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is cancelled.
func (m *MemoryBackend) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Cleanup()
			}
		}
	}()
}
