package repository

import (
	"context"
	"database/sql"
	"fmt"

	"metervoice/internal/domain"
)

// PostgresOperatorsRepo reads the operatori table.
type PostgresOperatorsRepo struct {
	db *sql.DB
}

func NewPostgresOperatorsRepo(db *sql.DB) *PostgresOperatorsRepo {
	return &PostgresOperatorsRepo{db: db}
}

var _ OperatorsRepo = (*PostgresOperatorsRepo)(nil)

func (r *PostgresOperatorsRepo) GetByID(ctx context.Context, id string) (*domain.Operator, error) {
	query := `
		SELECT operatore_id::text, nome, cognome, telefono
		FROM operatori
		WHERE operatore_id::text = $1
	`
	return scanOperator(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresOperatorsRepo) GetByName(ctx context.Context, firstName, lastName string) (*domain.Operator, error) {
	query := `
		SELECT operatore_id::text, nome, cognome, telefono
		FROM operatori
		WHERE LOWER(nome) = LOWER($1) AND LOWER(cognome) = LOWER($2)
		LIMIT 1
	`
	return scanOperator(r.db.QueryRowContext(ctx, query, firstName, lastName))
}

func scanOperator(row *sql.Row) (*domain.Operator, error) {
	var op domain.Operator
	err := row.Scan(&op.ID, &op.FirstName, &op.LastName, &op.Phone)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan operator: %w", err)
	}
	return &op, nil
}
