package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ravigill3969/textgen-quota/generator"
	"github.com/ravigill3969/textgen-quota/handlers"
	middleware "github.com/ravigill3969/textgen-quota/middlewares"
	"github.com/ravigill3969/textgen-quota/routes"
	"github.com/ravigill3969/textgen-quota/services"
	"github.com/ravigill3969/textgen-quota/utils"
)

const shutdownTimeout = 15 * time.Second

type ServeCmd struct {
	Port string `help:"Port to listen on. Overrides PORT."`
}

func (c *ServeCmd) Run(ctx context.Context, cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}
	if c.Port != "" {
		cfg.Port = c.Port
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	redisClient, err := openRedis(ctx, cfg.RateLimit)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	gen, err := generator.New(ctx, cfg.Generator)
	if err != nil {
		return err
	}

	tokens := utils.NewTokenService([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	quota := services.NewQuotaService(st.quota, cfg.Quota.DefaultAPICalls, cfg.Quota.Enforce)
	usage := services.NewUsageService(st.usage)
	auth := services.NewAuthService(st.users, quota, tokens)
	generation := services.NewGenerationService(gen, quota, cfg.Generator.Timeout)
	admin := services.NewAdminService(st.users, quota, usage)
	billing := services.NewBillingService(cfg.Stripe, quota)

	deps := routes.Dependencies{
		Gate:           middleware.NewAuthGate(tokens),
		Users:          &handlers.UserHandler{Auth: auth, CookieSecure: cfg.Auth.CookieSecure},
		Generate:       &handlers.GenerateHandler{Generation: generation},
		Admin:          &handlers.AdminHandler{Admin: admin},
		Stripe:         &handlers.StripeHandler{Billing: billing},
		Health:         &handlers.HealthHandler{Ping: st.ping()},
		Usage:          usage,
		AllowedOrigins: cfg.AllowedOrigins,
	}
	if redisClient != nil {
		deps.RateLimiter = middleware.NewRateLimiter(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Generator.Timeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server listening",
			"addr", srv.Addr,
			"store", cfg.StoreDriver,
			"generator", gen.Name(),
			"quota_enforced", cfg.Quota.Enforce,
			"billing", billing.Enabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
