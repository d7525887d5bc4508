package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"finviz/internal/amqp"
	"finviz/internal/cli"
	"finviz/internal/config"
	"finviz/internal/log"
	"finviz/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig(os.Getenv("FINVIZ_CONFIG_FILE"))
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting finviz-worker", log.FieldOperation, log.OpStartup)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required to run the digest worker")
		os.Exit(1)
	}
	if cfg.DataBackend != config.BackendSQLite {
		logger.Error("Digest worker needs the sqlite backend shared with the API", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	repo, err := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.NewDigestWorker(repo, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeDatasetUploaded(gctx, w.HandleDatasetUploaded)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down worker", log.FieldOperation, log.OpShutdown)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
