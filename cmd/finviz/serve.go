package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"finviz/internal/cache"
	"finviz/internal/cli"
	apphttp "finviz/internal/http"
	"finviz/internal/log"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			envFile, _ := cmd.Flags().GetString("env-file")
			return serve(configFile, envFile)
		},
	}
}

func serve(configFile, envFile string) error {
	if envFile != "" {
		cli.LoadEnvFile(envFile)
	} else {
		cli.LoadEnvFile()
	}

	cfg, err := cli.LoadAndValidateConfig(configFile)
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, log.ComponentApp)
	logger.Info("Starting finviz",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp_enabled", cfg.AMQPEnabled(),
		"sheets_enabled", cfg.SheetsConfigured(),
		log.FieldOperation, log.OpStartup)

	app, err := cli.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", log.FieldError, err)
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}()

	deps := apphttp.Deps{
		Datasets: app.Datasets,
		Charts:   app.Charts,
		View:     app.View,
		Importer: app.Importer,
		Caches:   []cache.Cleaner{app.ChartCache},
	}
	if app.Backend.Pinger != nil {
		deps.Health = app.Backend.Pinger
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSOrigin:         cfg.CORSOrigin,
	}, deps, logger)

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok && err != nil {
			logger.Error("Server failed", log.FieldError, err)
			_ = srv.Shutdown(context.Background())
			return err
		}
	case <-ctx.Done():
	}
	cli.WaitForShutdown(ctx, done)
	return nil
}
