package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/qnorm/internal/config"
	"github.com/tensorplex-labs/qnorm/internal/quantile"
	"github.com/tensorplex-labs/qnorm/internal/server"
	"github.com/tensorplex-labs/qnorm/internal/tabular"
	"github.com/tensorplex-labs/qnorm/internal/utils/logger"
)

func main() {
	logger.Init()
	log.Info().Msg("Starting normalization server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	delimiter, err := cfg.Delimiter()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid delimiter")
	}

	normalizer := quantile.NewNormalizer(quantile.WithNormalizerParams(cfg.NormalizerParams()))
	s := server.NewServer(cfg.ServerEnvConfig, normalizer, tabular.Options{
		Delimiter: delimiter,
		Precision: cfg.FloatPrecision,
	})

	// setup signal handling for graceful shutdown before starting the server
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}

	log.Info().Msg("server stopped")
}
