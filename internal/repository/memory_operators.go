package repository

import (
	"context"
	"strings"
	"sync"

	"metervoice/internal/domain"

	"github.com/google/uuid"
)

// MemoryOperatorsRepo backs operator resolution when DB is disabled.
type MemoryOperatorsRepo struct {
	mu  sync.RWMutex
	ops map[string]domain.Operator
}

func NewMemoryOperatorsRepo() *MemoryOperatorsRepo {
	return &MemoryOperatorsRepo{ops: map[string]domain.Operator{}}
}

var _ OperatorsRepo = (*MemoryOperatorsRepo)(nil)

func (r *MemoryOperatorsRepo) Seed(op domain.Operator) domain.Operator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if op.ID == "" {
		op.ID = uuid.New().String()
	}
	r.ops[op.ID] = op
	return op
}

func (r *MemoryOperatorsRepo) GetByID(_ context.Context, id string) (*domain.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &op, nil
}

func (r *MemoryOperatorsRepo) GetByName(_ context.Context, firstName, lastName string) (*domain.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, op := range r.ops {
		if strings.EqualFold(op.FirstName, firstName) && strings.EqualFold(op.LastName, lastName) {
			out := op
			return &out, nil
		}
	}
	return nil, ErrNotFound
}
