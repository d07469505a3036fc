package repository

import (
	"context"
	"sync"

	"metervoice/internal/domain"
)

// MemoryCallLogRepo keeps audit entries in memory when DB is disabled.
type MemoryCallLogRepo struct {
	mu      sync.Mutex
	entries []domain.CallLog
}

func NewMemoryCallLogRepo() *MemoryCallLogRepo {
	return &MemoryCallLogRepo{}
}

var _ CallLogRepo = (*MemoryCallLogRepo)(nil)

func (r *MemoryCallLogRepo) Append(_ context.Context, entry domain.CallLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// Entries returns a copy of the recorded log, for test assertions.
func (r *MemoryCallLogRepo) Entries() []domain.CallLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.CallLog, len(r.entries))
	copy(out, r.entries)
	return out
}
