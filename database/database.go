package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/ravigill3969/textgen-quota/config"
)

//go:embed schema.sql
var schema string

const retryInterval = 2 * time.Second

// ConnectDB opens the Postgres pool and waits until it answers a ping,
// retrying while the database is still starting up.
func ConnectDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdle)

	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	for i := 1; ; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			slog.Info("database connected", "host", cfg.Host, "name", cfg.Name)
			return db, nil
		}

		if i >= attempts {
			break
		}

		slog.Warn("database not ready, retrying", "attempt", i, "max_attempts", attempts, "error", err)

		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempts, err)
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	slog.Info("database schema ready")
	return nil
}
