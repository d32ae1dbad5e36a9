package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emperance/statify/stats"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps history entries in process memory, bounded to a fixed
// number of entries with the oldest evicted first.
type MemoryStore struct {
	mtx     sync.RWMutex
	entries map[string]Entry
	order   []string
	limit   int
}

// NewMemoryStore returns a store retaining at most limit entries. A limit
// below 1 falls back to 100.
func NewMemoryStore(limit int) *MemoryStore {
	if limit < 1 {
		limit = 100
	}
	return &MemoryStore{
		entries: make(map[string]Entry, limit),
		order:   make([]string, 0, limit),
		limit:   limit,
	}
}

func (s *MemoryStore) Save(_ context.Context, res *stats.Result) (Entry, error) {
	entry := Entry{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Result:    res,
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.entries[entry.ID] = entry
	s.order = append(s.order, entry.ID)

	for len(s.order) > s.limit {
		delete(s.entries, s.order[0])
		s.order = s.order[1:]
	}

	return entry, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Entry, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Entry, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if limit < 1 || limit > len(s.order) {
		limit = len(s.order)
	}

	entries := make([]Entry, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, s.entries[s.order[i]])
	}
	return entries, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
