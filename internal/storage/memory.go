package storage

import (
	"strings"
	"sync"
	"time"
)

type memEntry struct {
	value   []byte
	expires time.Time // zero means never
}

// MemoryDB is an in-process DB.
type MemoryDB struct {
	mu   sync.RWMutex
	data map[string]memEntry
	now  func() time.Time
}

// NewMemory creates an empty MemoryDB.
func NewMemory() *MemoryDB {
	return &MemoryDB{
		data: make(map[string]memEntry),
		now:  time.Now,
	}
}

// Get returns the value under key unless it is missing or expired.
func (m *MemoryDB) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.data[string(key)]
	if !ok || (!e.expires.IsZero() && !m.now().Before(e.expires)) {
		return nil, ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryDB) PutTTL(key, value []byte, ttl time.Duration) error {
	e := memEntry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.data[string(key)] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryDB) DropPrefix(prefix []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, string(prefix)) {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *MemoryDB) Close() error { return nil }
