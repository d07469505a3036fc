package httpapi

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"metervoice/internal/domain"
	"metervoice/internal/schedule"
	"metervoice/internal/service"
	"metervoice/internal/store"
)

const maxBodyBytes = 1 << 16

// genericErrorMessage is what the voice platform reads back on a system
// fault; full detail stays in the log. Retry is the platform's call.
const genericErrorMessage = "Si è verificato un errore. Riprovare più tardi."

// VoiceHandler translates voice-platform calls into scheduling operations.
type VoiceHandler struct {
	svc      *service.SchedulingService
	sessions *store.CallSessionStore
	logger   *zap.Logger
}

func NewVoiceHandler(svc *service.SchedulingService, sessions *store.CallSessionStore, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{svc: svc, sessions: sessions, logger: logger}
}

// appointmentPayload is the wire view of an appointment.
type appointmentPayload struct {
	AppointmentID string `json:"appointment_id"`
	Matricola     string `json:"matricola"`
	Nominativo    string `json:"nominativo"`
	Indirizzo     string `json:"indirizzo"`
	Comune        string `json:"comune"`
	Data          string `json:"data"`
	DataDisplay   string `json:"data_display"`
	FasciaOraria  string `json:"fascia_oraria"`
	Stato         string `json:"stato"`
	TipoAttivita  string `json:"tipo_attivita"`
	Committente   string `json:"committente"`
	Operatore     string `json:"operatore,omitempty"`
}

func toPayload(a *domain.Appointment) *appointmentPayload {
	p := &appointmentPayload{
		AppointmentID: a.ID,
		Matricola:     a.Matricola,
		Nominativo:    a.CustomerName,
		Indirizzo:     a.Address,
		Comune:        a.Municipality,
		Data:          a.Date.Format("2006-01-02"),
		DataDisplay:   schedule.FormatDisplay(a.Date),
		FasciaOraria:  a.TimeSlot,
		Stato:         a.Status,
		TipoAttivita:  a.ActivityType,
		Committente:   a.Committente,
	}
	switch a.Operator.Kind {
	case domain.OperatorRefByDisplayName:
		p.Operatore = a.Operator.DisplayName
	case domain.OperatorRefByID:
		p.Operatore = a.Operator.ID
	}
	return p
}

// fail maps service errors onto the wire: caller mistakes get a 400, the
// rest a generic retry-later 500.
func (h *VoiceHandler) fail(w http.ResponseWriter, op string, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": verr.Msg,
		})
		return
	}
	h.logger.Error("voice operation failed", zap.String("op", op), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"message": genericErrorMessage,
	})
}

// Search handles POST /voice/api/v1/appointments/search.
func (h *VoiceHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Matricola string `json:"matricola"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "payload non valido"})
		return
	}

	res, err := h.svc.Search(r.Context(), req.Matricola)
	if err != nil {
		h.fail(w, "search", err)
		return
	}

	body := map[string]any{
		"found":   res.Found,
		"message": res.Message,
	}
	if res.Found {
		body["appointment"] = toPayload(res.Appointment)
		// Remember the match for the rest of this call; loss is non-fatal.
		if callID := r.Header.Get("X-Call-Id"); callID != "" && h.sessions != nil {
			if err := h.sessions.Remember(r.Context(), callID, res.Appointment.Matricola); err != nil {
				h.logger.Warn("call session store failed", zap.String("call_id", callID), zap.Error(err))
			}
		}
	}
	writeJSON(w, http.StatusOK, body)
}

// lookupIdentifiers falls back to the call session when the request body
// carries neither identifier.
func (h *VoiceHandler) lookupIdentifiers(r *http.Request, id, matricola string) (string, string) {
	if id != "" || matricola != "" || h.sessions == nil {
		return id, matricola
	}
	if callID := r.Header.Get("X-Call-Id"); callID != "" {
		return "", h.sessions.Lookup(r.Context(), callID)
	}
	return "", ""
}

// Confirm handles POST /voice/api/v1/appointments/confirm.
func (h *VoiceHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AppointmentID string `json:"appointment_id"`
		Matricola     string `json:"matricola"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "payload non valido"})
		return
	}

	id, matricola := h.lookupIdentifiers(r, req.AppointmentID, req.Matricola)

	res, err := h.svc.Confirm(r.Context(), id, matricola)
	if err != nil {
		h.fail(w, "confirm", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": res.Success,
		"message": res.Message,
	})
}

// Reschedule handles POST /voice/api/v1/appointments/reschedule.
func (h *VoiceHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AppointmentID string `json:"appointment_id"`
		Matricola     string `json:"matricola"`
		NewDate       string `json:"new_date"`
		NewTimeSlot   string `json:"new_time_slot"`
		Reason        string `json:"reason"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "payload non valido"})
		return
	}

	newDate, err := time.Parse("2006-01-02", req.NewDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "new_date non valida, formato atteso AAAA-MM-GG",
		})
		return
	}

	id, matricola := h.lookupIdentifiers(r, req.AppointmentID, req.Matricola)

	res, err := h.svc.Reschedule(r.Context(), id, matricola, newDate, req.NewTimeSlot, req.Reason)
	if err != nil {
		h.fail(w, "reschedule", err)
		return
	}

	body := map[string]any{
		"success": res.Success,
		"message": res.Message,
	}
	if len(res.Alternatives) > 0 {
		body["alternatives"] = res.Alternatives
	}
	writeJSON(w, http.StatusOK, body)
}

// CurrentDateInfo handles GET /voice/api/v1/dates/current.
func (h *VoiceHandler) CurrentDateInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CurrentDateInfo())
}

// ValidateDate handles POST /voice/api/v1/dates/validate.
func (h *VoiceHandler) ValidateDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProposedDate string `json:"proposed_date"`
		TimeSlot     string `json:"time_slot"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "payload non valido"})
		return
	}

	proposed, err := time.Parse("2006-01-02", req.ProposedDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "proposed_date non valida, formato atteso AAAA-MM-GG",
		})
		return
	}

	res := h.svc.ValidateProposedDate(proposed)

	body := map[string]any{"isValid": res.Valid}
	if res.Valid {
		body["date"] = res.Date
		body["timeSlots"] = res.TimeSlots
	} else {
		body["reason"] = res.Reason
		body["suggestedDates"] = res.Suggested
	}
	writeJSON(w, http.StatusOK, body)
}
