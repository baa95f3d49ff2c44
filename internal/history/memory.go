package history

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps session logs in process memory. Sessions untouched for
// ttl are purged.
type MemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{
		cache: cache.New(ttl, ttl/6),
	}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	x, found := m.cache.Get(sessionID)
	if !found {
		return nil, nil
	}
	return append([]Record(nil), x.([]Record)...), nil
}

func (m *MemoryStore) Append(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var recs []Record
	if x, found := m.cache.Get(rec.SessionID); found {
		recs = x.([]Record)
	}
	recs = append(recs, rec)
	m.cache.Set(rec.SessionID, recs, cache.DefaultExpiration)
	return nil
}

func (m *MemoryStore) Close() error {
	m.cache.Flush()
	return nil
}
