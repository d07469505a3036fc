package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"metervoice/internal/domain"
	"metervoice/internal/repository"
	"metervoice/internal/schedule"
)

// scheduleExportHeader is the column layout of the daily operator schedule.
var scheduleExportHeader = []string{
	"Fascia oraria",
	"Nominativo",
	"Indirizzo",
	"Comune",
	"Matricola",
	"PDR",
	"Telefono",
	"Tipo attività",
	"Committente",
	"Operatore",
	"Stato",
	"Note",
}

// ExportHandler serves the daily appointment schedule as an Excel sheet for
// the field operators.
type ExportHandler struct {
	appts  repository.AppointmentsRepo
	logger *zap.Logger
}

func NewExportHandler(appts repository.AppointmentsRepo, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{appts: appts, logger: logger}
}

// ExportDay handles GET /admin/api/v1/appointments/export?date=YYYY-MM-DD.
func (h *ExportHandler) ExportDay(w http.ResponseWriter, r *http.Request) {
	day, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "date non valida, formato atteso AAAA-MM-GG",
		})
		return
	}

	appts, err := h.appts.ListByDate(r.Context(), day)
	if err != nil {
		h.logger.Error("schedule export query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": genericErrorMessage,
		})
		return
	}

	data, err := generateScheduleExcel(day, appts)
	if err != nil {
		h.logger.Error("schedule export generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": genericErrorMessage,
		})
		return
	}

	filename := fmt.Sprintf("appuntamenti_%s.xlsx", day.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, _ = w.Write(data)
}

func generateScheduleExcel(day time.Time, appts []domain.Appointment) ([]byte, error) {
	f := excelize.NewFile()

	sheetName := "Appuntamenti"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, h := range scheduleExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	_ = f.SetCellValue(sheetName, "N1", "Giornata: "+schedule.FormatDisplay(day))

	for i, a := range appts {
		operator := ""
		switch a.Operator.Kind {
		case domain.OperatorRefByDisplayName:
			operator = a.Operator.DisplayName
		case domain.OperatorRefByID:
			operator = a.Operator.ID
		}
		row := []any{
			a.TimeSlot, a.CustomerName, a.Address, a.Municipality,
			a.Matricola, a.PDR, a.Phone, a.ActivityType,
			a.Committente, operator, a.Status, a.Notes,
		}
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	var buf []byte
	out, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	buf = out.Bytes()
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf, nil
}
