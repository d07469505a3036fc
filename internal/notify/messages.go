package notify

import (
	"fmt"

	"metervoice/internal/domain"
	"metervoice/internal/schedule"
)

// ConfirmationMessage builds the operator text for a confirmed appointment.
func ConfirmationMessage(appt *domain.Appointment) string {
	return fmt.Sprintf(
		"Appuntamento CONFERMATO: %s, %s, %s - matricola %s - %s fascia %s",
		appt.CustomerName,
		appt.Address,
		appt.Municipality,
		appt.Matricola,
		schedule.FormatDisplay(appt.Date),
		appt.TimeSlot,
	)
}

// RescheduleMessage builds the operator text for a rescheduled appointment,
// carrying the old and the new date/slot plus the customer's reason.
func RescheduleMessage(appt *domain.Appointment, oldDisplay, oldSlot, newDisplay, newSlot, reason string) string {
	return fmt.Sprintf(
		"Appuntamento RIPROGRAMMATO: %s, matricola %s - da %s fascia %s a %s fascia %s. Motivo: %s",
		appt.CustomerName,
		appt.Matricola,
		oldDisplay,
		oldSlot,
		newDisplay,
		newSlot,
		reason,
	)
}
