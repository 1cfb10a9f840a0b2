package client

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config configures the normalization client.
type Config struct {
	ServerURL     string        `env:"QNORM_SERVER_URL, default=http://127.0.0.1:8080"`
	ClientTimeout time.Duration `env:"QNORM_CLIENT_TIMEOUT, default=30s"`
	RetryMax      int           `env:"QNORM_RETRY_MAX, default=3"`
	RetryWait     time.Duration `env:"QNORM_RETRY_WAIT, default=500ms"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("process client env: %w", err)
	}
	return cfg, nil
}
