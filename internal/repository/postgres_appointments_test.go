package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metervoice/internal/domain"
)

func setupMockAppointmentsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresAppointmentsRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresAppointmentsRepo(db)
}

func appointmentRows(id, matricola string, date time.Time, slot, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"appointment_id", "matricola", "nominativo", "indirizzo", "comune",
		"matricola_contatore", "pdr", "data_appuntamento", "fascia_oraria",
		"telefono", "tipo_attivita", "committente", "operatore_id",
		"operatore_nome", "stato", "note_riprogrammazione",
		"confermato_il", "modificato_il",
	}).AddRow(
		id, matricola, "Mario Rossi", "Via Roma 123", "Milano",
		"CNT-8871", "PDR001", date, slot,
		"+393331112233", "Sostituzione contatore", "Acme Acqua", nil,
		"Luca Bianchi", status, nil,
		nil, nil,
	)
}

func TestFindLatestByMatricola_Success(t *testing.T) {
	db, mock, repo := setupMockAppointmentsDB(t)
	defer db.Close()

	id := uuid.New().String()
	date := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT`).
		WithArgs("TEST123456").
		WillReturnRows(appointmentRows(id, "TEST123456", date, "08:00-12:00", domain.StatusScheduled))

	appt, err := repo.FindLatestByMatricola(context.Background(), "TEST123456")

	require.NoError(t, err)
	assert.Equal(t, id, appt.ID)
	assert.Equal(t, "Mario Rossi", appt.CustomerName)
	assert.Equal(t, "Via Roma 123", appt.Address)
	assert.Equal(t, "Milano", appt.Municipality)
	assert.Equal(t, "08:00-12:00", appt.TimeSlot)
	// FK absent, denormalized display name present.
	assert.Equal(t, domain.OperatorRefByDisplayName, appt.Operator.Kind)
	assert.Equal(t, "Luca Bianchi", appt.Operator.DisplayName)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindLatestByMatricola_NotFound(t *testing.T) {
	db, mock, repo := setupMockAppointmentsDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("UNKNOWN").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindLatestByMatricola(context.Background(), "UNKNOWN")

	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountActiveAtSlot(t *testing.T) {
	db, mock, repo := setupMockAppointmentsDB(t)
	defer db.Close()

	date := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs("2024-08-01", "09:00-12:00", domain.StatusCancelled).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountActiveAtSlot(context.Background(), date, "09:00-12:00")

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirm_Success(t *testing.T) {
	db, mock, repo := setupMockAppointmentsDB(t)
	defer db.Close()

	id := uuid.New().String()
	now := time.Now()

	mock.ExpectExec(`UPDATE appuntamenti`).
		WithArgs(id, domain.StatusConfirmed, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Confirm(context.Background(), id, now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirm_NotFound(t *testing.T) {
	db, mock, repo := setupMockAppointmentsDB(t)
	defer db.Close()

	id := uuid.New().String()
	now := time.Now()

	mock.ExpectExec(`UPDATE appuntamenti`).
		WithArgs(id, domain.StatusConfirmed, now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Confirm(context.Background(), id, now), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReschedule_Success(t *testing.T) {
	db, mock, repo := setupMockAppointmentsDB(t)
	defer db.Close()

	id := uuid.New().String()
	newDate := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs("2024-08-01|09:00-12:00").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs("2024-08-01", "09:00-12:00", domain.StatusCancelled).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(`UPDATE appuntamenti`).
		WithArgs(id, "2024-08-01", "09:00-12:00", domain.StatusRescheduled, "Riprogrammato su richiesta cliente", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Reschedule(context.Background(), id, newDate, "09:00-12:00", "Riprogrammato su richiesta cliente", now)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReschedule_CapacityExceeded(t *testing.T) {
	db, mock, repo := setupMockAppointmentsDB(t)
	defer db.Close()

	id := uuid.New().String()
	newDate := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs("2024-08-01|08:00-12:00").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs("2024-08-01", "08:00-12:00", domain.StatusCancelled).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(SlotCapacity))
	mock.ExpectRollback()

	err := repo.Reschedule(context.Background(), id, newDate, "08:00-12:00", "x", time.Now())

	assert.ErrorIs(t, err, ErrCapacityExceeded)
	require.NoError(t, mock.ExpectationsWereMet())
}
