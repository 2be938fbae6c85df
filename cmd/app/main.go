package main

import (
	"context"
	"inncore/config"
	"inncore/di"
	"inncore/helper"
	"inncore/shared/logger"
	"os"
	"os/signal"
	"syscall"

	_ "inncore/docs"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// @title Inncore Reservation API
// @version 1.0
// @description Room reservation and availability engine.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service := di.InitializeService()

	if err := service.Sweeper.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start hold sweeper")
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return service.HTTP.Serve(ctx)
	})

	group.Go(func() error {
		service.Payments.Run(ctx)

		return nil
	})

	err := group.Wait()

	service.Sweeper.Stop()

	if closeErr := service.Kafka.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("Failed to close Kafka client")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Service stopped with error")
	}
}
