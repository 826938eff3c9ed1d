package main

import (
	"context"
	"os"

	"jizhang/internal/cli"
	"jizhang/internal/commands"
	"jizhang/internal/ledger"
	applog "jizhang/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	// Command output goes to stdout, so logs only surface problems.
	logger := applog.New(applog.Config{Level: applog.ParseLevel("warn"), Component: applog.ComponentCLI, Output: os.Stderr})
	if err := cli.RequirePersistentBackend(cfg); err != nil {
		logger.Error("Unsupported backend for the CLI", applog.FieldError, err)
		os.Exit(1)
	}

	root := commands.NewRootCommand(commands.Env{
		Open: func(ctx context.Context) (*ledger.Book, func() error, error) {
			res, err := cli.OpenBackend(ctx, logger, cfg)
			if err != nil {
				return nil, nil, err
			}
			return res.Book, res.Close, nil
		},
		RecentLimit: cfg.RecentLimit,
		StatsWindow: cfg.StatsWindow,
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
