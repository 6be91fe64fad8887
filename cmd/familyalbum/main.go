package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amkim/familyalbum/internal/api"
	"github.com/amkim/familyalbum/internal/config"
	"github.com/amkim/familyalbum/internal/ingest"
	"github.com/amkim/familyalbum/internal/scheduler"
	"github.com/amkim/familyalbum/internal/store"
	"github.com/amkim/familyalbum/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting familyalbum")
	logger.WithField("data_dir", cfg.DataDir).Info("Configuration loaded")

	st, err := store.Open(cfg.DatabaseFile, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()
	logger.Info("Store opened")

	pipeline := ingest.NewPipeline(st, cfg.UploadWorkers, logger)
	if err := pipeline.Load(context.Background()); err != nil {
		// Do not start with a silently empty album; the operator should
		// see the store problem and retry.
		return fmt.Errorf("failed to seed media library: %w", err)
	}

	sched := scheduler.NewScheduler(st, pipeline, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	server := api.NewServer(cfg, pipeline, st, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("familyalbum is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("familyalbum stopped")
	return nil
}
