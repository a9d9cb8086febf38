package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/app"
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/tunehub-api/shared/logger"
)

func main() {
	cfg, err := config.NewAuthServiceConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load auth service configuration")
	}

	l := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to start auth service")
	}

	if err := a.Run(ctx); err != nil {
		l.Error().Err(err).Msg("auth service exited with error")
		stop()
		os.Exit(1)
	}

	l.Info().Msg("auth service exited")
}
