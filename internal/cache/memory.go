package cache

import (
	"context"
	"sync"
	"time"

	"github.com/gdsingh/skybook/internal/domain"
)

type memoryEntry struct {
	results    []domain.FlightSummary
	insertedAt time.Time
}

// Memory is an in-process SearchCache. Stale entries are replaced
// lazily on the next lookup past their TTL, never swept, so memory
// grows with the number of distinct keys seen.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) ([]domain.FlightSummary, error)) ([]domain.FlightSummary, error) {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && m.now().Sub(entry.insertedAt) < ttl {
		m.mu.Unlock()
		return entry.results, nil
	}
	if ok {
		delete(m.entries, key)
	}
	m.mu.Unlock()

	results, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{results: results, insertedAt: m.now()}
	m.mu.Unlock()

	return results, nil
}

var _ SearchCache = (*Memory)(nil)
