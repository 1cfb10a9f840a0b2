package client

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/qnorm/internal/config"
	"github.com/tensorplex-labs/qnorm/internal/quantile"
	"github.com/tensorplex-labs/qnorm/internal/server"
	"github.com/tensorplex-labs/qnorm/internal/tabular"
)

func testConfig(url string) Config {
	return Config{
		ServerURL:     url,
		ClientTimeout: 5 * time.Second,
		RetryMax:      2,
		RetryWait:     time.Millisecond,
	}
}

func sampleMatrix(t *testing.T) *quantile.Matrix {
	t.Helper()
	m, err := quantile.NewMatrix("id", []string{"g1", "g2", "g3"}, []string{"A", "B"}, []float64{
		5, 4,
		2, 1,
		3, 6,
	})
	require.NoError(t, err)
	return m
}

// startServer runs the real fiber server on an ephemeral port.
func startServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := server.NewServer(config.ServerEnvConfig{BodySizeLimit: 1 << 20}, nil, tabular.DefaultOptions())
	go func() { _ = s.App.Listener(ln) }()
	t.Cleanup(func() { _ = s.App.Shutdown() })

	return "http://" + ln.Addr().String()
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerURL)
	assert.Equal(t, 30*time.Second, cfg.ClientTimeout)
	assert.Equal(t, 3, cfg.RetryMax)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryWait)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("QNORM_SERVER_URL", "http://normalizer:9000")
	t.Setenv("QNORM_RETRY_MAX", "7")

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://normalizer:9000", cfg.ServerURL)
	assert.Equal(t, 7, cfg.RetryMax)
}

func TestClient_NormalizeAgainstServer(t *testing.T) {
	url := startServer(t)
	c := NewClient(testConfig(url))

	require.Eventually(t, func() bool {
		return c.Health(context.Background()) == nil
	}, 2*time.Second, 10*time.Millisecond)

	out, err := c.Normalize(context.Background(), sampleMatrix(t))
	require.NoError(t, err)

	assert.Equal(t, "id", out.IndexName)
	assert.Equal(t, []string{"g1", "g2", "g3"}, out.RowLabels)
	assert.Equal(t, []string{"A", "B"}, out.ColumnLabels)
	assert.InDeltaSlice(t, []float64{5.5, 1.5, 3.5}, out.Column(0), 1e-9)
	assert.InDeltaSlice(t, []float64{3.5, 1.5, 5.5}, out.Column(1), 1e-9)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(testConfig(ts.URL))
	require.NoError(t, c.Health(context.Background()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_BadRequest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"body":{},"error":"tabular: malformed content"}`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(testConfig(ts.URL))
	_, err := c.Normalize(context.Background(), sampleMatrix(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "malformed")
}

func TestClient_NonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("nope"))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(testConfig(ts.URL))
	_, err := c.Normalize(context.Background(), sampleMatrix(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	assert.Error(t, c.Health(context.Background()))
}

func TestClient_GivesUpOnPersistentFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	c := NewClient(testConfig(ts.URL))
	assert.Error(t, c.Health(context.Background()))
}
