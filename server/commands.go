package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ravigill3969/textgen-quota/config"
	"github.com/ravigill3969/textgen-quota/models"
	"github.com/ravigill3969/textgen-quota/services"
	"github.com/ravigill3969/textgen-quota/utils"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx context.Context, cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return errors.New("migrate needs STORE_DRIVER=postgres")
	}
	if err := cfg.ValidateStorage(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	return st.Close()
}

type CreateAdminCmd struct {
	Username string `required:"" help:"Admin username."`
	Email    string `required:"" help:"Admin email."`
	Password string `required:"" env:"ADMIN_PASSWORD" help:"Admin password."`
}

func (c *CreateAdminCmd) Run(ctx context.Context, cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return errors.New("create-admin needs STORE_DRIVER=postgres")
	}
	if err := cfg.ValidateStorage(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	// no tokens are issued here, so the secret is irrelevant
	tokens := utils.NewTokenService([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	quota := services.NewQuotaService(st.quota, cfg.Quota.DefaultAPICalls, cfg.Quota.Enforce)
	auth := services.NewAuthService(st.users, quota, tokens)

	user, err := auth.CreateAdmin(ctx, models.RegisterForm{
		Username: c.Username,
		Email:    c.Email,
		Password: c.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	slog.Info("admin created", "id", user.ID, "email", user.Email)
	return nil
}
