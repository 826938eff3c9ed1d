package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"jizhang/internal/buildinfo"
	"jizhang/internal/cli"
	"jizhang/internal/config"
	apphttp "jizhang/internal/http"
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
	logger := cli.SetupLogger(cfg.LogLevel)
	logger.Info("Starting jizhang", "version", buildinfo.String(), "backend", cfg.DataBackend)

	if err := run(logger, cfg); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(logger *applog.Logger, cfg *config.Config) error {
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	res, err := cli.OpenBackend(startCtx, logger, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	taxonomy, err := config.LoadTaxonomy(cfg.TaxonomyFile)
	if err != nil {
		return err
	}

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		Book:           res.Book,
		Taxonomy:       taxonomy,
		RecentLimit:    cfg.RecentLimit,
		StatsWindow:    cfg.StatsWindow,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 2*cfg.RequestTimeout + 5*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", "port", cfg.Port, "spreadsheet", res.Spreadsheet.Title())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() == nil {
			// serving failed before any shutdown signal
			return nil
		}
		<-done
		return nil
	})
	return g.Wait()
}
