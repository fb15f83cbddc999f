package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ravigill3969/textgen-quota/models"
)

type PostgresUsageRepository struct {
	db *sql.DB
}

func NewPostgresUsageRepository(db *sql.DB) *PostgresUsageRepository {
	return &PostgresUsageRepository{db: db}
}

func (r *PostgresUsageRepository) Increment(ctx context.Context, method, endpoint string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO resource (method, endpoint, requests) VALUES ($1, $2, 1)
		ON CONFLICT (method, endpoint) DO UPDATE SET requests = resource.requests + 1
	`, method, endpoint)
	if err != nil {
		return fmt.Errorf("failed to count %s %s: %w", method, endpoint, err)
	}
	return nil
}

func (r *PostgresUsageRepository) ListResources(ctx context.Context) ([]models.Resource, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, method, endpoint, requests FROM resource ORDER BY requests DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	resources := []models.Resource{}
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(&res.ID, &res.Method, &res.Endpoint, &res.Requests); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resources: %w", err)
	}
	return resources, nil
}
