package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ravigill3969/textgen-quota/config"
	"github.com/ravigill3969/textgen-quota/database"
	"github.com/ravigill3969/textgen-quota/repositories"
)

type stores struct {
	users repositories.UserRepository
	quota repositories.QuotaRepository
	usage repositories.UsageRepository

	db *sql.DB
}

// ping is nil for the in-memory store.
func (s *stores) ping() func(context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext
}

func (s *stores) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	slog.Info("database connection closed")
	return nil
}

// openStores connects the configured backend and makes sure the schema
// exists.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("using in-memory store, data is lost on exit")
		mem := repositories.NewMemoryStore()
		return &stores{users: mem, quota: mem, usage: mem}, nil
	}

	db, err := database.ConnectDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &stores{
		users: repositories.NewPostgresUserRepository(db),
		quota: repositories.NewPostgresQuotaRepository(db),
		usage: repositories.NewPostgresUsageRepository(db),
		db:    db,
	}, nil
}

// openRedis returns nil when rate limiting is disabled.
func openRedis(ctx context.Context, cfg config.RateLimitConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		slog.Info("rate limiting disabled, REDIS_URL not set")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis not reachable, rate limiter will let requests through until it is", "error", err)
	}
	return client, nil
}
