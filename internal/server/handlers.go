package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/qnorm/internal/config"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok"})
}

// handleNormalize accepts a CSV (default) or JSON matrix and answers with the
// normalized matrix in the format named by the "format" query parameter.
func (s *Server) handleNormalize(c *fiber.Ctx) error {
	opts := s.format
	if d := c.Query("delimiter"); d != "" {
		delimiter, err := config.ParseDelimiter(d)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		opts.Delimiter = delimiter
	}

	format := strings.ToLower(c.Query("format", FormatCSV))
	if format != FormatCSV && format != FormatJSON {
		return fiber.NewError(fiber.StatusBadRequest, "format must be csv or json")
	}

	in, err := s.readMatrix(c, opts)
	if err != nil {
		return err
	}

	out, err := s.normalizer.Process(in)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	rows, cols := out.Dims()
	log.Info().Int("rows", rows).Int("cols", cols).Str("format", format).Msg("normalized matrix over http")

	return sendMatrix(c, out, format, opts)
}
