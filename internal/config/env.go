// Package config defines environment configuration structs and loaders.
package config

import (
	"fmt"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"

	"github.com/tensorplex-labs/qnorm/internal/quantile"
)

type AppConfig struct {
	NormalizeEnvConfig
	ServerEnvConfig
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Delimiter(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NormalizeEnvConfig holds the defaults for reading, normalizing and writing matrices.
type NormalizeEnvConfig struct {
	DelimiterValue    string  `env:"QNORM_DELIMITER" envDefault:","`
	FloatPrecision    int     `env:"QNORM_PRECISION" envDefault:"-1"`
	RoundingPrecision int     `env:"QNORM_ROUND" envDefault:"-1"`
	TieTolerance      float64 `env:"QNORM_TIE_TOLERANCE" envDefault:"0"`
}

// NormalizerParams returns the normalizer settings carried by the environment.
func (c NormalizeEnvConfig) NormalizerParams() quantile.NormalizerParams {
	return quantile.NormalizerParams{
		RoundingPrecision: c.RoundingPrecision,
		TieTolerance:      c.TieTolerance,
	}
}

// Delimiter returns the configured field delimiter as a rune.
func (c NormalizeEnvConfig) Delimiter() (rune, error) {
	return ParseDelimiter(c.DelimiterValue)
}

// ParseDelimiter accepts a single character, or "tab" / `\t` for tab separated files.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// ServerEnvConfig configures the HTTP server.
type ServerEnvConfig struct {
	Host          string `env:"QNORM_HOST" envDefault:"127.0.0.1"`
	Port          int    `env:"QNORM_PORT" envDefault:"8080"`
	BodySizeLimit int    `env:"QNORM_BODY_LIMIT" envDefault:"33554432"`
}

func (c ServerEnvConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
