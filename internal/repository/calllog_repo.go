package repository

import (
	"context"

	"metervoice/internal/domain"
)

// CallLogRepo is the append-only audit trail of voice-assistant actions.
// Callers treat insertion as best-effort; failures are logged, never surfaced.
type CallLogRepo interface {
	Append(ctx context.Context, entry domain.CallLog) error
}
