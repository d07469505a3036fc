package repository

import (
	"context"

	"metervoice/internal/domain"
)

// OperatorsRepo resolves field operators. Read-only for this service.
type OperatorsRepo interface {
	// GetByID returns the operator row or ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.Operator, error)

	// GetByName performs a case-insensitive first/last name lookup, used for
	// appointments carrying a denormalized "First Last" display string.
	GetByName(ctx context.Context, firstName, lastName string) (*domain.Operator, error)
}
