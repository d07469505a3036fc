package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"metervoice/internal/domain"
	"metervoice/internal/notify"
	"metervoice/internal/repository"
	"metervoice/internal/schedule"
)

// DefaultRescheduleReason is recorded when the caller supplies none.
const DefaultRescheduleReason = "Riprogrammato su richiesta cliente"

// capacityAlternatives are the two slots offered back when a requested slot
// is full. The catalog is not consulted for true availability here; the
// upstream voice dialog expects exactly these two.
var capacityAlternatives = []string{"08:00-12:00", "13:00-17:00"}

// ValidationError marks missing or malformed caller input. Surfaced
// immediately, never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// SearchResult is the outcome of a matricola lookup. Found=false is a
// normal result, not a fault.
type SearchResult struct {
	Found       bool
	Appointment *domain.Appointment
	Message     string
}

// ConfirmResult is the outcome of a confirmation request.
type ConfirmResult struct {
	Success bool
	Message string
}

// RescheduleResult is the outcome of a reschedule request. Alternatives is
// set only on a capacity refusal.
type RescheduleResult struct {
	Success      bool
	Message      string
	Alternatives []string
}

// CurrentDate carries today's date in machine and display form.
type CurrentDate struct {
	Date    string `json:"date"`
	Display string `json:"display"`
}

// DateInfo is the payload behind getCurrentDateInfo.
type DateInfo struct {
	CurrentDate    CurrentDate           `json:"currentDate"`
	AvailableDates []schedule.DateOption `json:"availableDates"`
	TimeSlots      []string              `json:"timeSlots"`
}

// SchedulingService is the only component permitted to mutate appointment
// state. It is stateless between requests; the store is the single source
// of truth.
type SchedulingService struct {
	appts    repository.AppointmentsRepo
	callLog  repository.CallLogRepo
	policy   *schedule.Policy
	resolver *notify.PhoneResolver
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewSchedulingService(
	appts repository.AppointmentsRepo,
	callLog repository.CallLogRepo,
	policy *schedule.Policy,
	resolver *notify.PhoneResolver,
	notifier notify.Notifier,
	logger *zap.Logger,
) *SchedulingService {
	return &SchedulingService{
		appts:    appts,
		callLog:  callLog,
		policy:   policy,
		resolver: resolver,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Search returns the most recent appointment for the meter serial.
// Read-only.
func (s *SchedulingService) Search(ctx context.Context, matricola string) (*SearchResult, error) {
	if matricola == "" {
		return nil, &ValidationError{Msg: "matricola obbligatoria"}
	}

	appt, err := s.appts.FindLatestByMatricola(ctx, matricola)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &SearchResult{
				Found:   false,
				Message: fmt.Sprintf("Nessun appuntamento trovato per la matricola %s", matricola),
			}, nil
		}
		s.logger.Error("appointment search failed", zap.String("matricola", matricola), zap.Error(err))
		return nil, err
	}

	s.audit(ctx, matricola, "ricerca",
		fmt.Sprintf("trovato appuntamento %s del %s", appt.ID, appt.Date.Format("2006-01-02")))

	return &SearchResult{
		Found:       true,
		Appointment: appt,
		Message: fmt.Sprintf("Appuntamento trovato per %s il %s fascia %s",
			appt.CustomerName, schedule.FormatDisplay(appt.Date), appt.TimeSlot),
	}, nil
}

// Confirm transitions the target appointment to "confermato" and attempts a
// best-effort operator notification. Either identifier may be supplied; on
// an ambiguous match the most recent appointment is picked.
func (s *SchedulingService) Confirm(ctx context.Context, id, matricola string) (*ConfirmResult, error) {
	if id == "" && matricola == "" {
		return nil, &ValidationError{Msg: "appointment_id o matricola obbligatori"}
	}

	appt, err := s.appts.FindByIDOrMatricola(ctx, id, matricola)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ConfirmResult{
				Success: false,
				Message: "Nessun appuntamento da confermare trovato",
			}, nil
		}
		s.logger.Error("confirm lookup failed", zap.Error(err))
		return nil, err
	}

	now := s.now()
	if err := s.appts.Confirm(ctx, appt.ID, now); err != nil {
		s.logger.Error("confirm update failed", zap.String("appointment_id", appt.ID), zap.Error(err))
		return nil, err
	}

	delivery := s.notifyOperator(ctx, appt, notify.ConfirmationMessage(appt))

	s.audit(ctx, appt.Matricola, "conferma",
		fmt.Sprintf("appuntamento %s confermato, sms operatore inviato=%t", appt.ID, delivery.Sent))

	msg := fmt.Sprintf("Appuntamento confermato per %s fascia %s.",
		schedule.FormatDisplay(appt.Date), appt.TimeSlot)
	if delivery.Sent {
		msg += " L'operatore è stato avvisato."
	} else {
		msg += " Non è stato possibile avvisare l'operatore."
	}

	return &ConfirmResult{Success: true, Message: msg}, nil
}

// Reschedule moves the target appointment to (newDate, newSlot) when the
// slot's non-cancelled count is below capacity.
func (s *SchedulingService) Reschedule(ctx context.Context, id, matricola string, newDate time.Time, newSlot, reason string) (*RescheduleResult, error) {
	if id == "" && matricola == "" {
		return nil, &ValidationError{Msg: "appointment_id o matricola obbligatori"}
	}
	if newSlot == "" {
		return nil, &ValidationError{Msg: "new_time_slot obbligatoria"}
	}

	appt, err := s.appts.FindByIDOrMatricola(ctx, id, matricola)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &RescheduleResult{
				Success: false,
				Message: "Nessun appuntamento da riprogrammare trovato",
			}, nil
		}
		s.logger.Error("reschedule lookup failed", zap.Error(err))
		return nil, err
	}

	if reason == "" {
		reason = DefaultRescheduleReason
	}

	oldDisplay := schedule.FormatDisplay(appt.Date)
	oldSlot := appt.TimeSlot

	err = s.appts.Reschedule(ctx, appt.ID, newDate, newSlot, reason, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrCapacityExceeded) {
			return &RescheduleResult{
				Success: false,
				Message: fmt.Sprintf("La fascia %s del %s è al completo. Fasce alternative disponibili: %s e %s",
					newSlot, schedule.FormatDisplay(newDate), capacityAlternatives[0], capacityAlternatives[1]),
				Alternatives: append([]string(nil), capacityAlternatives...),
			}, nil
		}
		s.logger.Error("reschedule update failed", zap.String("appointment_id", appt.ID), zap.Error(err))
		return nil, err
	}

	newDisplay := schedule.FormatDisplay(newDate)
	delivery := s.notifyOperator(ctx, appt,
		notify.RescheduleMessage(appt, oldDisplay, oldSlot, newDisplay, newSlot, reason))

	s.audit(ctx, appt.Matricola, "riprogrammazione",
		fmt.Sprintf("appuntamento %s spostato da %s %s a %s %s, sms operatore inviato=%t",
			appt.ID, oldDisplay, oldSlot, newDisplay, newSlot, delivery.Sent))

	return &RescheduleResult{
		Success: true,
		Message: fmt.Sprintf("Appuntamento riprogrammato per %s fascia %s", newDisplay, newSlot),
	}, nil
}

// CurrentDateInfo returns today's date, the next 10 offerable dates and the
// slot catalog. Pure, no mutation.
func (s *SchedulingService) CurrentDateInfo() DateInfo {
	now := s.now()
	dates := s.policy.AvailableDates(now, 30, true)
	if len(dates) > 10 {
		dates = dates[:10]
	}
	return DateInfo{
		CurrentDate: CurrentDate{
			Date:    now.Format("2006-01-02"),
			Display: schedule.FormatDisplay(now),
		},
		AvailableDates: dates,
		TimeSlots:      schedule.TimeSlots(),
	}
}

// ValidateProposedDate delegates to the policy. The slot argument travels
// with the request but is not cross-checked against the catalog.
func (s *SchedulingService) ValidateProposedDate(date time.Time) schedule.ValidationResult {
	return s.policy.ValidateDate(date)
}

// notifyOperator resolves the assigned operator's phone and sends the
// message. Never fails the primary operation.
func (s *SchedulingService) notifyOperator(ctx context.Context, appt *domain.Appointment, message string) notify.DeliveryResult {
	phone, ok := s.resolver.ResolveOperatorPhone(ctx, appt.Operator)
	if !ok {
		s.logger.Warn("operator phone unresolved",
			zap.String("appointment_id", appt.ID),
			zap.String("matricola", appt.Matricola),
		)
		return notify.Failed("operator phone unresolved")
	}
	res := s.notifier.Notify(ctx, phone, message)
	if !res.Sent {
		s.logger.Warn("operator notification failed",
			zap.String("appointment_id", appt.ID),
			zap.String("reason", res.Reason),
		)
	}
	return res
}

// audit appends a best-effort call-log entry; failures are logged and
// swallowed.
func (s *SchedulingService) audit(ctx context.Context, matricola, action, details string) {
	err := s.callLog.Append(ctx, domain.CallLog{
		Matricola: matricola,
		Action:    action,
		Details:   details,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.logger.Warn("call log append failed",
			zap.String("matricola", matricola),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
