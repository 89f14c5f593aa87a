package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bobarin/fala/internal/models"
	"github.com/google/uuid"
)

const synthesisColumns = `
	id, text, language, voice, provider, status, reason, cancellation_reason,
	error_details, message, audio_bytes, created_at, started_at, finished_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSynthesis(row rowScanner) (*models.Synthesis, error) {
	s := &models.Synthesis{}
	err := row.Scan(
		&s.ID, &s.Text, &s.Language, &s.Voice, &s.Provider, &s.Status,
		&s.Reason, &s.CancellationReason, &s.ErrorDetails, &s.Message,
		&s.AudioBytes, &s.CreatedAt, &s.StartedAt, &s.FinishedAt,
	)
	return s, err
}

func (db *DB) CreateSynthesis(ctx context.Context, s *models.Synthesis) error {
	query := `
		INSERT INTO syntheses (id, text, language, voice, provider, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	return db.QueryRowContext(
		ctx, query,
		s.ID, s.Text, s.Language, s.Voice, s.Provider, s.Status,
	).Scan(&s.CreatedAt)
}

func (db *DB) MarkSynthesisRunning(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE syntheses SET status = $1, started_at = $2 WHERE id = $3`
	_, err := db.ExecContext(ctx, query, models.SynthesisStatusRunning, time.Now(), id)
	return err
}

// CompleteSynthesis stores the final outcome of a synthesis.
func (db *DB) CompleteSynthesis(ctx context.Context, id uuid.UUID, outcome models.SynthesisOutcome) error {
	query := `
		UPDATE syntheses
		SET status = $1, reason = $2, cancellation_reason = $3, error_details = $4,
			message = $5, audio_bytes = $6, finished_at = $7
		WHERE id = $8
	`

	res, err := db.ExecContext(
		ctx, query,
		outcome.Status, outcome.Reason, nullString(outcome.CancellationReason),
		nullString(outcome.ErrorDetails), outcome.Message, outcome.AudioBytes,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete synthesis: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}

func (db *DB) GetSynthesis(ctx context.Context, id uuid.UUID) (*models.Synthesis, error) {
	query := `SELECT ` + synthesisColumns + ` FROM syntheses WHERE id = $1`

	s, err := scanSynthesis(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get synthesis: %w", err)
	}

	return s, nil
}

// ListSyntheses returns history newest first. An empty status matches all rows.
func (db *DB) ListSyntheses(ctx context.Context, status string, limit, offset int) ([]models.Synthesis, error) {
	query := `
		SELECT ` + synthesisColumns + `
		FROM syntheses
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := db.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query syntheses: %w", err)
	}
	defer rows.Close()

	syntheses := make([]models.Synthesis, 0, limit)
	for rows.Next() {
		s, err := scanSynthesis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan synthesis: %w", err)
		}
		syntheses = append(syntheses, *s)
	}

	return syntheses, rows.Err()
}

func (db *DB) CountSyntheses(ctx context.Context, status string) (int, error) {
	query := `SELECT COUNT(*) FROM syntheses WHERE ($1 = '' OR status = $1)`

	var count int
	if err := db.QueryRowContext(ctx, query, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count syntheses: %w", err)
	}
	return count, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
