package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/server/models"
)

type entry struct {
	value   string
	count   int
	expires time.Time
}

// sweepInterval bounds how often set scans the map for expired entries.
const sweepInterval = time.Minute

// MemoryRegistry keeps session state in process. It is used when no Redis
// address is configured and in tests.
type MemoryRegistry struct {
	mu        sync.Mutex
	items     map[string]*entry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{items: make(map[string]*entry), now: time.Now}
}

// get returns a live entry, dropping it if expired. Caller holds mu.
func (m *MemoryRegistry) get(key string) (*entry, bool) {
	e, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.items, key)
		return nil, false
	}
	return e, true
}

// set stores value under key. Expired entries that are never read again are
// dropped here, at most once per sweepInterval. Caller holds mu.
func (m *MemoryRegistry) set(key, value string, ttl time.Duration) {
	now := m.now()
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweep(now)
	}

	e := &entry{value: value}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.items[key] = e
}

func (m *MemoryRegistry) sweep(now time.Time) {
	for k, e := range m.items {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(m.items, k)
		}
	}
	m.lastSweep = now
}

func (m *MemoryRegistry) CacheRole(_ context.Context, sessionID string, role models.Role, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(roleKey(sessionID), string(role), ttl)
	return nil
}

func (m *MemoryRegistry) CachedRole(_ context.Context, sessionID string) (models.Role, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.get(roleKey(sessionID))
	if !ok {
		return "", false, nil
	}
	return models.Role(e.value), true, nil
}

func (m *MemoryRegistry) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, roleKey(sessionID))
	m.set(revokedKey(sessionID), "1", ttl)
	return nil
}

func (m *MemoryRegistry) Revoked(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.get(revokedKey(sessionID))
	return ok, nil
}

func (m *MemoryRegistry) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := limitKey(key)
	e, ok := m.get(k)
	if !ok {
		m.set(k, "", window)
		e = m.items[k]
	}
	e.count++
	return e.count <= limit, nil
}

func (m *MemoryRegistry) Close() error { return nil }
