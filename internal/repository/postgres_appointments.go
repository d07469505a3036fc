package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"metervoice/internal/domain"
)

// PostgresAppointmentsRepo is the appuntamenti store over database/sql.
type PostgresAppointmentsRepo struct {
	db *sql.DB
}

func NewPostgresAppointmentsRepo(db *sql.DB) *PostgresAppointmentsRepo {
	return &PostgresAppointmentsRepo{db: db}
}

var _ AppointmentsRepo = (*PostgresAppointmentsRepo)(nil)

// appointmentColumns is the shared SELECT list; commesse joined read-only,
// operator carried either as FK or denormalized display name.
const appointmentColumns = `
	a.appointment_id::text,
	a.matricola,
	a.nominativo,
	a.indirizzo,
	a.comune,
	a.matricola_contatore,
	a.pdr,
	a.data_appuntamento,
	a.fascia_oraria,
	a.telefono,
	COALESCE(c.tipo_attivita, a.tipo_attivita, ''),
	COALESCE(c.committente, a.committente, ''),
	a.operatore_id::text,
	a.operatore_nome,
	a.stato,
	a.note_riprogrammazione,
	a.confermato_il,
	a.modificato_il
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointmentRow(row rowScanner) (*domain.Appointment, error) {
	var appt domain.Appointment
	var meterSerial, pdr, phone, operatorID, operatorName, notes sql.NullString
	var confirmedAt, modifiedAt sql.NullTime

	err := row.Scan(
		&appt.ID,
		&appt.Matricola,
		&appt.CustomerName,
		&appt.Address,
		&appt.Municipality,
		&meterSerial,
		&pdr,
		&appt.Date,
		&appt.TimeSlot,
		&phone,
		&appt.ActivityType,
		&appt.Committente,
		&operatorID,
		&operatorName,
		&appt.Status,
		&notes,
		&confirmedAt,
		&modifiedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan appointment: %w", err)
	}

	if meterSerial.Valid {
		appt.MeterSerial = meterSerial.String
	}
	if pdr.Valid {
		appt.PDR = pdr.String
	}
	if phone.Valid {
		appt.Phone = phone.String
	}
	if notes.Valid {
		appt.Notes = notes.String
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		appt.ConfirmedAt = &t
	}
	if modifiedAt.Valid {
		t := modifiedAt.Time
		appt.ModifiedAt = &t
	}

	// Historical rows reference the operator either by FK or by a
	// denormalized "First Last" string; keep whichever form is present.
	switch {
	case operatorID.Valid && operatorID.String != "":
		appt.Operator = domain.OperatorByID(operatorID.String)
	case operatorName.Valid && operatorName.String != "":
		appt.Operator = domain.OperatorByDisplayName(operatorName.String)
	}

	return &appt, nil
}

func (r *PostgresAppointmentsRepo) FindLatestByMatricola(ctx context.Context, matricola string) (*domain.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appuntamenti a
		LEFT JOIN commesse c ON c.commessa_id = a.commessa_id
		WHERE a.matricola = $1
		ORDER BY a.data_appuntamento DESC
		LIMIT 1
	`
	return scanAppointmentRow(r.db.QueryRowContext(ctx, query, matricola))
}

func (r *PostgresAppointmentsRepo) FindByIDOrMatricola(ctx context.Context, id, matricola string) (*domain.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appuntamenti a
		LEFT JOIN commesse c ON c.commessa_id = a.commessa_id
		WHERE a.appointment_id::text = $1 OR a.matricola = $2
		ORDER BY a.data_appuntamento DESC
		LIMIT 1
	`
	return scanAppointmentRow(r.db.QueryRowContext(ctx, query, id, matricola))
}

func (r *PostgresAppointmentsRepo) ListByDate(ctx context.Context, date time.Time) ([]domain.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appuntamenti a
		LEFT JOIN commesse c ON c.commessa_id = a.commessa_id
		WHERE a.data_appuntamento = $1
		ORDER BY a.fascia_oraria, a.nominativo
	`
	rows, err := r.db.QueryContext(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var out []domain.Appointment
	for rows.Next() {
		appt, err := scanAppointmentRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate appointments: %w", err)
	}
	return out, nil
}

func (r *PostgresAppointmentsRepo) CountActiveAtSlot(ctx context.Context, date time.Time, slot string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM appuntamenti
		WHERE data_appuntamento = $1 AND fascia_oraria = $2 AND stato <> $3
	`
	var n int
	err := r.db.QueryRowContext(ctx, query, date.Format("2006-01-02"), slot, domain.StatusCancelled).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count slot occupancy: %w", err)
	}
	return n, nil
}

func (r *PostgresAppointmentsRepo) Confirm(ctx context.Context, id string, confirmedAt time.Time) error {
	query := `
		UPDATE appuntamenti
		SET stato = $2, confermato_il = $3, modificato_il = $3
		WHERE appointment_id::text = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, domain.StatusConfirmed, confirmedAt)
	if err != nil {
		return fmt.Errorf("failed to confirm appointment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Reschedule runs the capacity check and the move in one transaction,
// serialized per (date, slot) with an advisory xact lock so concurrent
// requests cannot both observe a count below the cap.
func (r *PostgresAppointmentsRepo) Reschedule(ctx context.Context, id string, newDate time.Time, slot, reason string, modifiedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reschedule tx: %w", err)
	}
	defer tx.Rollback()

	dateKey := newDate.Format("2006-01-02")

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`,
		dateKey+"|"+slot,
	); err != nil {
		return fmt.Errorf("failed to lock slot: %w", err)
	}

	var n int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appuntamenti
		 WHERE data_appuntamento = $1 AND fascia_oraria = $2 AND stato <> $3`,
		dateKey, slot, domain.StatusCancelled,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to count slot occupancy: %w", err)
	}
	if n >= SlotCapacity {
		return ErrCapacityExceeded
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE appuntamenti
		 SET data_appuntamento = $2, fascia_oraria = $3, stato = $4,
		     note_riprogrammazione = $5, modificato_il = $6
		 WHERE appointment_id::text = $1`,
		id, dateKey, slot, domain.StatusRescheduled, reason, modifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reschedule: %w", err)
	}
	return nil
}
