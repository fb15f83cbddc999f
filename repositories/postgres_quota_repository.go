package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ravigill3969/textgen-quota/models"
)

// Each attempt is one conditional UPDATE followed, when nothing was charged,
// by an INSERT for a missing record. A concurrent top-up between the two can
// turn a zero record positive again, hence the bounded loop.
const maxDecrementAttempts = 3

type PostgresQuotaRepository struct {
	db *sql.DB
}

func NewPostgresQuotaRepository(db *sql.DB) *PostgresQuotaRepository {
	return &PostgresQuotaRepository{db: db}
}

func (r *PostgresQuotaRepository) Decrement(ctx context.Context, userID uuid.UUID, fallback int) (models.QuotaResult, error) {
	var remaining int

	for attempt := 0; attempt < maxDecrementAttempts; attempt++ {
		err := r.db.QueryRowContext(ctx, `
			UPDATE api_usage SET api_calls = api_calls - 1
			WHERE user_id = $1 AND api_calls > 0
			RETURNING api_calls
		`, userID).Scan(&remaining)
		if err == nil {
			return models.QuotaResult{Remaining: remaining, Charged: true}, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.QuotaResult{}, fmt.Errorf("failed to decrement quota for %s: %w", userID, err)
		}

		err = r.db.QueryRowContext(ctx, `
			INSERT INTO api_usage (user_id, api_calls) VALUES ($1, $2)
			ON CONFLICT (user_id) DO NOTHING
			RETURNING api_calls
		`, userID, fallback).Scan(&remaining)
		if err == nil {
			return models.QuotaResult{Remaining: remaining, Charged: true, Defaulted: true}, nil
		}
		if isForeignKeyViolation(err) {
			return models.QuotaResult{}, ErrNotFound
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.QuotaResult{}, fmt.Errorf("failed to create quota record for %s: %w", userID, err)
		}

		err = r.db.QueryRowContext(ctx,
			`SELECT api_calls FROM api_usage WHERE user_id = $1`, userID,
		).Scan(&remaining)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return models.QuotaResult{}, fmt.Errorf("failed to read quota for %s: %w", userID, err)
		}
		if err == nil && remaining == 0 {
			return models.QuotaResult{Remaining: 0}, nil
		}
	}

	return models.QuotaResult{Remaining: remaining}, nil
}

func (r *PostgresQuotaRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, initial int) (int, error) {
	var remaining int

	err := r.db.QueryRowContext(ctx,
		`SELECT api_calls FROM api_usage WHERE user_id = $1`, userID,
	).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to read quota for %s: %w", userID, err)
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO api_usage (user_id, api_calls) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING api_calls
	`, userID, initial).Scan(&remaining)
	if isForeignKeyViolation(err) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create quota record for %s: %w", userID, err)
	}
	return remaining, nil
}

func (r *PostgresQuotaRepository) Credit(ctx context.Context, topUp models.TopUp, initial int) (int, bool, error) {
	var remaining int

	err := r.db.QueryRowContext(ctx, `
		WITH ev AS (
			INSERT INTO billing_events (event_id, user_id, calls)
			VALUES ($1, $2, $3)
			ON CONFLICT (event_id) DO NOTHING
			RETURNING user_id, calls
		)
		INSERT INTO api_usage (user_id, api_calls)
		SELECT user_id, calls + $4 FROM ev
		ON CONFLICT (user_id) DO UPDATE
			SET api_calls = api_usage.api_calls + $3, last_reset = NOW()
		RETURNING api_calls
	`, topUp.EventID, topUp.UserID, topUp.Calls, initial).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if isForeignKeyViolation(err) {
		return 0, false, ErrNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to credit quota for %s: %w", topUp.UserID, err)
	}
	return remaining, true, nil
}
