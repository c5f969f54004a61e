package memory

import (
	"context"
	"sync"
	"time"
)

// QuotaStore keeps quota counters in-process. Usage resets on restart, which
// under-counts against the provider; acceptable for dev only.
type QuotaStore struct {
	mu   sync.RWMutex
	rows map[string]quotaRow
}

type quotaRow struct {
	windowStart time.Time
	used        int
}

func NewQuotaStore() *QuotaStore {
	return &QuotaStore{rows: make(map[string]quotaRow)}
}

func (s *QuotaStore) Get(_ context.Context, provider string) (time.Time, int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[provider]
	if !ok {
		return time.Time{}, 0, false, nil
	}
	return row.windowStart, row.used, true, nil
}

func (s *QuotaStore) Save(_ context.Context, provider string, windowStart time.Time, used int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[provider] = quotaRow{windowStart: windowStart, used: used}
	return nil
}
