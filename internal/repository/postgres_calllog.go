package repository

import (
	"context"
	"database/sql"
	"fmt"

	"metervoice/internal/domain"

	"github.com/google/uuid"
)

// PostgresCallLogRepo appends to the log_chiamate audit table.
type PostgresCallLogRepo struct {
	db *sql.DB
}

func NewPostgresCallLogRepo(db *sql.DB) *PostgresCallLogRepo {
	return &PostgresCallLogRepo{db: db}
}

var _ CallLogRepo = (*PostgresCallLogRepo)(nil)

func (r *PostgresCallLogRepo) Append(ctx context.Context, entry domain.CallLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO log_chiamate (log_id, matricola, azione, dettagli, creato_il)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Matricola, entry.Action, entry.Details, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append call log: %w", err)
	}
	return nil
}
