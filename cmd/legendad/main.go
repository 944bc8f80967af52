package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"

	"legenda/internal/config"
	"legenda/internal/jobs"
	"legenda/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("legendad: %v", err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configPath := ""
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		configPath = os.Args[2]
	}

	cfg, path, found, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if found {
		logger.Info("config loaded", logging.String("path", path))
	} else {
		logger.Warn("no config file found, using defaults", logging.String("searched", path))
	}

	lock := flock.New(cfg.Paths.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return errors.New("another legendad instance is already running")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release daemon lock", logging.Error(err))
		}
	}()

	journal, err := jobs.Open(cfg.Paths.JournalPath)
	if err != nil {
		return fmt.Errorf("open job journal: %w", err)
	}
	defer journal.Close()

	srv, err := buildServer(cfg, journal, logger)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}
	defer srv.Stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("legendad shutting down")
	return nil
}
