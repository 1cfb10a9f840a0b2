// Package client talks to a remote normalization server.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/qnorm/internal/quantile"
	"github.com/tensorplex-labs/qnorm/internal/server"
	"github.com/tensorplex-labs/qnorm/internal/tabular"
)

type Client struct {
	httpClient *resty.Client
	cfg        Config
}

func NewClient(cfg Config) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = cfg.RetryWait
	rc.RetryWaitMax = cfg.RetryWait * 4
	rc.HTTPClient.Timeout = cfg.ClientTimeout

	// retryablehttp logs every attempt by default
	rc.Logger = nil

	cli := resty.NewWithClient(rc.StandardClient()).
		SetBaseURL(strings.TrimRight(cfg.ServerURL, "/")).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTimeout(cfg.ClientTimeout)

	log.Debug().
		Str("server_url", cfg.ServerURL).
		Int("retry_max", cfg.RetryMax).
		Str("timeout", cfg.ClientTimeout.String()).
		Msg("normalization client initialized")

	return &Client{httpClient: cli, cfg: cfg}
}

// Normalize sends m to the server and returns the normalized matrix.
func (c *Client) Normalize(ctx context.Context, m *quantile.Matrix) (*quantile.Matrix, error) {
	body, err := compressCSV(m)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.R().SetContext(ctx).
		SetHeader("Content-Type", "text/csv").
		SetHeader("Content-Encoding", "zstd").
		SetHeader("Accept-Encoding", "zstd").
		SetQueryParam("format", server.FormatJSON).
		SetBody(body).
		Post(server.NormalizeRoute)
	if err != nil {
		log.Error().Err(err).Str("url", c.cfg.ServerURL).Msg("normalize request failed")
		return nil, fmt.Errorf("normalize request: %w", err)
	}

	data := resp.Body()
	if strings.Contains(strings.ToLower(resp.Header().Get("Content-Encoding")), "zstd") {
		if data, err = decompress(data); err != nil {
			return nil, err
		}
	}

	var parsed server.StdResponse[tabular.Payload]
	if err := sonic.Unmarshal(data, &parsed); err != nil {
		if resp.StatusCode() >= 400 {
			return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode(), string(data))
		}
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.StatusCode() >= 400 || parsed.Error != nil {
		msg := "unknown error"
		if parsed.Error != nil {
			msg = *parsed.Error
		}
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode(), msg)
	}

	return parsed.Body.Matrix()
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	var health server.HealthResponse
	resp, err := c.httpClient.R().SetContext(ctx).
		SetResult(&health).
		Get(server.HealthRoute)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("bad status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	if health.Status != "ok" {
		return fmt.Errorf("server reported status %q", health.Status)
	}
	return nil
}

func compressCSV(m *quantile.Matrix) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to create writer: %w", err)
	}
	if err := tabular.Encode(w, m, tabular.DefaultOptions()); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("encode matrix: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zstd: failed to flush: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to create reader: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to decompress response: %w", err)
	}
	return out, nil
}
