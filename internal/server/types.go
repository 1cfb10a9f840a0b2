package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tensorplex-labs/qnorm/internal/config"
	"github.com/tensorplex-labs/qnorm/internal/quantile"
	"github.com/tensorplex-labs/qnorm/internal/tabular"
)

const (
	NormalizeRoute = "/normalize"
	HealthRoute    = "/health"

	FormatCSV  = "csv"
	FormatJSON = "json"

	MIMETextCSV = "text/csv; charset=utf-8"
)

// Server exposes quantile normalization over HTTP.
type Server struct {
	App        *fiber.App
	config     config.ServerEnvConfig
	normalizer *quantile.Normalizer
	format     tabular.Options
}

// StdResponse represents the standardized response structure
type StdResponse[T any] struct {
	Body  T       `json:"body"`
	Error *string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func matrixResponse(m *quantile.Matrix) StdResponse[tabular.Payload] {
	return StdResponse[tabular.Payload]{Body: tabular.ToPayload(m)}
}

// errorResponse carries err with an empty body so clients can decode any reply
// into the same envelope.
func errorResponse(err error) StdResponse[struct{}] {
	msg := err.Error()
	return StdResponse[struct{}]{Error: &msg}
}
