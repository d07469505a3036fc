package repository

import (
	"context"
	"errors"
	"time"

	"metervoice/internal/domain"
)

// Sentinel outcomes surfaced by appointment stores. Both are normal results
// for the scheduling service, not system faults.
var (
	ErrNotFound         = errors.New("appointment not found")
	ErrCapacityExceeded = errors.New("slot capacity exceeded")
)

// SlotCapacity is the maximum number of non-cancelled appointments sharing
// one (date, time slot) pair.
const SlotCapacity = 5

// AppointmentsRepo is the durable appointment store. The scheduling service
// is the only caller permitted to mutate appointment state through it.
type AppointmentsRepo interface {
	// FindLatestByMatricola returns the most recent appointment for the
	// meter serial, joined with work-order and operator data, or ErrNotFound.
	FindLatestByMatricola(ctx context.Context, matricola string) (*domain.Appointment, error)

	// FindByIDOrMatricola matches either identifier; on ambiguity the most
	// recent row wins. Returns ErrNotFound when nothing matches.
	FindByIDOrMatricola(ctx context.Context, id, matricola string) (*domain.Appointment, error)

	// CountActiveAtSlot counts non-cancelled appointments at (date, slot).
	CountActiveAtSlot(ctx context.Context, date time.Time, slot string) (int, error)

	// ListByDate returns the appointments scheduled on the given day ordered
	// by time slot, for the operator schedule export.
	ListByDate(ctx context.Context, date time.Time) ([]domain.Appointment, error)

	// Confirm transitions the appointment to "confermato" and stamps the
	// confirmation timestamp. Re-confirming an already confirmed appointment
	// is a no-op rewrite, not an error.
	Confirm(ctx context.Context, id string, confirmedAt time.Time) error

	// Reschedule atomically checks capacity at (newDate, slot) and, when the
	// non-cancelled count is below SlotCapacity, moves the appointment there
	// with status "riprogrammato" and the given reason. Returns
	// ErrCapacityExceeded when the slot is full.
	Reschedule(ctx context.Context, id string, newDate time.Time, slot, reason string, modifiedAt time.Time) error
}
