package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ravigill3969/textgen-quota/config"
	"github.com/ravigill3969/textgen-quota/logger"
)

type CLI struct {
	Serve       ServeCmd       `cmd:"" default:"1" help:"Start the HTTP API."`
	Migrate     MigrateCmd     `cmd:"" help:"Create the database tables if missing."`
	CreateAdmin CreateAdminCmd `cmd:"" name:"create-admin" help:"Create an administrator account."`

	Config    string `short:"c" help:"Path to a YAML config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error). Overrides LOG_LEVEL."`
	LogFormat string `help:"Log format (text, json). Overrides LOG_FORMAT."`
}

// load reads the config and installs the logger it describes.
func (c *CLI) load() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Log.Format = c.LogFormat
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func main() {
	cli := CLI{}
	kctx := kong.Parse(&cli,
		kong.Name("textgen-quota"),
		kong.Description("Text-generation API with per-user call quotas."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	err := kctx.Run(&cli)
	kctx.FatalIfErrorf(err)
}
