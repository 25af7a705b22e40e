// Command server runs the portfolio dashboard API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jlmoreno/cartera/internal/config"
	"github.com/jlmoreno/cartera/internal/di"
	"github.com/jlmoreno/cartera/internal/scheduler"
	"github.com/jlmoreno/cartera/internal/server"
	"github.com/jlmoreno/cartera/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "error", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("primary_currency", cfg.PrimaryCurrency).
		Str("secondary_currency", cfg.SecondaryCurrency).
		Bool("dev_mode", cfg.DevMode).
		Msg("Starting cartera")

	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire components")
	}
	defer container.Close()

	sched := scheduler.New(log)
	if err := sched.AddJob("0 0 3 * * *", container.CleanupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cleanup job")
	}
	if container.BackupJob != nil {
		if err := sched.AddJob(cfg.Backup.Schedule, container.BackupJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	}
	sched.Start()
	defer sched.Stop()

	// An instance that was down for a while prunes its cache right away
	// instead of waiting for the nightly slot.
	if err := sched.RunNow(container.CleanupJob); err != nil {
		log.Warn().Err(err).Msg("Startup cache cleanup failed")
	}

	srv := server.New(container, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Stopped")
}
