package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"metervoice/internal/domain"

	"github.com/google/uuid"
)

// MemoryAppointmentsRepo supports the voice flow when DB is disabled and
// backs the service-level tests.
type MemoryAppointmentsRepo struct {
	mu    sync.RWMutex
	appts map[string]domain.Appointment // appointmentID -> row
}

func NewMemoryAppointmentsRepo() *MemoryAppointmentsRepo {
	return &MemoryAppointmentsRepo{appts: map[string]domain.Appointment{}}
}

var _ AppointmentsRepo = (*MemoryAppointmentsRepo)(nil)

// Seed inserts an appointment, assigning an id when absent, and returns it.
func (r *MemoryAppointmentsRepo) Seed(appt domain.Appointment) domain.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	if appt.Status == "" {
		appt.Status = domain.StatusScheduled
	}
	r.appts[appt.ID] = appt
	return appt
}

// Get returns a stored appointment by id, for test assertions.
func (r *MemoryAppointmentsRepo) Get(id string) (domain.Appointment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appts[id]
	return a, ok
}

func (r *MemoryAppointmentsRepo) FindLatestByMatricola(_ context.Context, matricola string) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []domain.Appointment
	for _, a := range r.appts {
		if a.Matricola == matricola {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Date.After(matches[j].Date)
	})
	out := matches[0]
	return &out, nil
}

func (r *MemoryAppointmentsRepo) FindByIDOrMatricola(_ context.Context, id, matricola string) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []domain.Appointment
	for _, a := range r.appts {
		if (id != "" && a.ID == id) || (matricola != "" && a.Matricola == matricola) {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Date.After(matches[j].Date)
	})
	out := matches[0]
	return &out, nil
}

func (r *MemoryAppointmentsRepo) CountActiveAtSlot(_ context.Context, date time.Time, slot string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.countLocked(date, slot), nil
}

func (r *MemoryAppointmentsRepo) countLocked(date time.Time, slot string) int {
	day := date.Format("2006-01-02")
	n := 0
	for _, a := range r.appts {
		if a.TimeSlot == slot && a.Date.Format("2006-01-02") == day && a.Status != domain.StatusCancelled {
			n++
		}
	}
	return n
}

func (r *MemoryAppointmentsRepo) ListByDate(_ context.Context, date time.Time) ([]domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := date.Format("2006-01-02")
	var out []domain.Appointment
	for _, a := range r.appts {
		if a.Date.Format("2006-01-02") == day {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimeSlot != out[j].TimeSlot {
			return out[i].TimeSlot < out[j].TimeSlot
		}
		return strings.ToLower(out[i].CustomerName) < strings.ToLower(out[j].CustomerName)
	})
	return out, nil
}

func (r *MemoryAppointmentsRepo) Confirm(_ context.Context, id string, confirmedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appts[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = domain.StatusConfirmed
	a.ConfirmedAt = &confirmedAt
	a.ModifiedAt = &confirmedAt
	r.appts[id] = a
	return nil
}

func (r *MemoryAppointmentsRepo) Reschedule(_ context.Context, id string, newDate time.Time, slot, reason string, modifiedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appts[id]
	if !ok {
		return ErrNotFound
	}
	if r.countLocked(newDate, slot) >= SlotCapacity {
		return ErrCapacityExceeded
	}
	a.Date = newDate
	a.TimeSlot = slot
	a.Status = domain.StatusRescheduled
	a.Notes = reason
	a.ModifiedAt = &modifiedAt
	r.appts[id] = a
	return nil
}
