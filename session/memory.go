package session

import (
	"context"
	"sync"
	"time"
)

type memoryFlash struct {
	message string
	expires time.Time
}

// MemoryStore keeps flash messages in process. Sessions are lost on restart.
// Unread messages expire after the store's ttl, like the Redis store's keys.
type MemoryStore struct {
	mu        sync.Mutex
	flashes   map[string]memoryFlash
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{flashes: map[string]memoryFlash{}, ttl: ttl, now: time.Now}
}

func (m *MemoryStore) SetFlash(_ context.Context, id, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	m.flashes[id] = memoryFlash{message: message, expires: now.Add(m.ttl)}
	return nil
}

func (m *MemoryStore) PopFlash(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.flashes[id]
	if !ok {
		return "", nil
	}
	delete(m.flashes, id)
	if !m.now().Before(f.expires) {
		return "", nil
	}
	return f.message, nil
}

// Len reports how many messages are held, expired ones included until the
// next sweep.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flashes)
}

// sweep drops expired messages, at most once per ttl. Callers hold mu.
func (m *MemoryStore) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.ttl {
		return
	}
	for id, f := range m.flashes {
		if !now.Before(f.expires) {
			delete(m.flashes, id)
		}
	}
	m.lastSweep = now
}
