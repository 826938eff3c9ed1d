package main

import (
	"context"
	"errors"
	"os"
	"time"

	"jizhang/internal/amqp"
	"jizhang/internal/cli"
	applog "jizhang/internal/log"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentAudit)

	if !cfg.NotificationsEnabled() {
		logger.Error("AMQP_URL is not set; nothing to consume")
		os.Exit(1)
	}
	logger.Info("Starting jizhang-audit", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	auditor := amqp.NewAuditor(logger)
	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqp.ConsumeWithRetry(gctx, func() (*amqp.Client, error) {
			return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		}, auditor.Handle)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				logger.Info("Audit totals", "counts", auditor.Counts())
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Consumer stopped", applog.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Audit stopped", "counts", auditor.Counts())
}
