package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/chat-edge/app"
	"github.com/upb/chat-edge/config"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Upstream: config.UpstreamConfig{
			GeminiBaseURL:     "http://127.0.0.1:1",
			OpenRouterBaseURL: "http://127.0.0.1:1",
		},
		Observability: config.ObservabilityConfig{
			LogLevel:       "info",
			LogFormat:      "json",
			MetricsEnabled: true,
			MetricsPort:    9090,
		},
	}
}

func TestInitLogger(t *testing.T) {
	t.Run("default json logger", func(t *testing.T) {
		cfg := testConfig()

		logger, err := initLogger(cfg)
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync()
	})

	t.Run("development console logger", func(t *testing.T) {
		cfg := testConfig()
		cfg.Observability.LogLevel = "debug"
		cfg.Observability.LogFormat = "console"

		logger, err := initLogger(cfg)
		require.NoError(t, err)
		require.NotNil(t, logger)
		defer logger.Sync()
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := testConfig()
		cfg.Observability.LogLevel = "invalid"

		logger, err := initLogger(cfg)
		assert.Error(t, err)
		assert.Nil(t, logger)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("invalid log format", func(t *testing.T) {
		cfg := testConfig()
		cfg.Observability.LogFormat = "xml"

		_, err := initLogger(cfg)
		assert.Error(t, err)
	})
}

func TestServe(t *testing.T) {
	deps, err := app.NewDependencies(context.Background(), testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	publicLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	opsLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, deps, publicLn, opsLn) }()

	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get("http://" + publicLn.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<html")

	resp, err = client.Post("http://"+publicLn.Addr().String()+"/api/chat", "application/json", strings.NewReader(`{"chatbot":"grok"}`))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.JSONEq(t, `{"error":"API key missing for grok"}`, string(body))

	resp, err = client.Get("http://" + opsLn.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

func TestServe_WithoutOpsListener(t *testing.T) {
	deps, err := app.NewDependencies(context.Background(), testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	publicLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, deps, publicLn, nil) }()

	// Wait until the server answers before cancelling.
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + publicLn.Addr().String() + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
