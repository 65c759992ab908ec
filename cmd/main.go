package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/watit-thammarat/imagini/internal/models"
	"github.com/watit-thammarat/imagini/internal/server"
	"github.com/watit-thammarat/imagini/internal/storage"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := models.LoadConfig("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Fatal when the database is unreachable or the schema cannot be
	// confirmed: the service must not accept traffic without storage.
	db, err := storage.NewStorage(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init storage")
	}
	defer db.Close()

	// Retention sweeper: one bulk delete per tick. Failures are logged and
	// never block the next tick.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := db.PurgeExpired(ctx, cfg.CreatedTTL, cfg.UsedTTL)
				if err != nil {
					log.Error().Err(err).Msg("retention sweep failed")
					continue
				}
				if n > 0 {
					log.Info().Int64("purged", n).Msg("retention sweep")
				}
			}
		}
	}()

	srv := server.NewServer(cfg, db)
	go func() {
		log.Info().Str("addr", cfg.ServerAddr).Msg("server listening")
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
