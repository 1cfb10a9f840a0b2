// Package server serves quantile normalization over HTTP.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/qnorm/internal/config"
	"github.com/tensorplex-labs/qnorm/internal/quantile"
	"github.com/tensorplex-labs/qnorm/internal/tabular"
)

const shutdownTimeout = 5 * time.Second

// NewServer creates the HTTP server. A nil normalizer uses the defaults.
func NewServer(cfg config.ServerEnvConfig, normalizer *quantile.Normalizer, format tabular.Options) *Server {
	if normalizer == nil {
		normalizer = quantile.NewNormalizer()
	}

	log.Info().
		Str("address", cfg.Address()).
		Int("body_limit", cfg.BodySizeLimit).
		Msg("Server configuration loaded")

	app := fiber.New(fiber.Config{
		Prefork:               false,
		DisableStartupMessage: true,
		ErrorHandler:          fiberErrHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		BodyLimit:             cfg.BodySizeLimit,
	})

	app.Use(recover.New())

	s := &Server{
		App:        app,
		config:     cfg,
		normalizer: normalizer,
		format:     format,
	}

	app.Get(HealthRoute, s.handleHealth)
	app.Post(NormalizeRoute, s.handleNormalize)

	return s
}

func fiberErrHandler(ctx *fiber.Ctx, err error) error {
	// Status code defaults to 500
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a *fiber.Error
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	log.Error().
		Err(err).
		Int("status_code", code).
		Str("path", ctx.Path()).
		Str("method", ctx.Method()).
		Msg("Fiber error handler triggered")

	return ctx.Status(code).JSON(errorResponse(err))
}

// Start listens until ctx is cancelled, then shuts the server down.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", s.config.Address()).Msg("Server listening")
		errCh <- s.App.Listen(s.config.Address())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Server shutting down")
	return s.App.ShutdownWithContext(ctx)
}
