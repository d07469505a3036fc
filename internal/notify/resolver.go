package notify

import (
	"context"
	"strings"

	"metervoice/internal/domain"
	"metervoice/internal/repository"
)

// PhoneResolver turns an appointment's operator reference into a phone
// number. Two historical reference forms exist side by side: a foreign key
// and a denormalized "First Last" display string; both are handled here.
type PhoneResolver struct {
	operators repository.OperatorsRepo
}

func NewPhoneResolver(operators repository.OperatorsRepo) *PhoneResolver {
	return &PhoneResolver{operators: operators}
}

// ResolveOperatorPhone returns the operator's phone, or "" and false when
// the reference cannot be resolved. A display name with fewer than two
// space-separated tokens is unresolved without attempting a lookup.
func (r *PhoneResolver) ResolveOperatorPhone(ctx context.Context, ref domain.OperatorRef) (string, bool) {
	switch ref.Kind {
	case domain.OperatorRefByID:
		op, err := r.operators.GetByID(ctx, ref.ID)
		if err != nil {
			return "", false
		}
		return op.Phone, true

	case domain.OperatorRefByDisplayName:
		parts := strings.Fields(ref.DisplayName)
		if len(parts) < 2 {
			return "", false
		}
		first := parts[0]
		last := strings.Join(parts[1:], " ")
		op, err := r.operators.GetByName(ctx, first, last)
		if err != nil {
			return "", false
		}
		return op.Phone, true
	}
	return "", false
}
