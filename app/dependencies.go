package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/upb/chat-edge/config"
	"github.com/upb/chat-edge/handlers"
	"github.com/upb/chat-edge/internal/observability"
	"github.com/upb/chat-edge/internal/providers"
	"github.com/upb/chat-edge/internal/providers/gemini"
	"github.com/upb/chat-edge/internal/providers/openrouter"
	"github.com/upb/chat-edge/internal/router"
	"github.com/upb/chat-edge/middleware"
	"go.uber.org/zap"
)

// metricsNamespace prefixes every exported metric
const metricsNamespace = "chat_edge"

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config     *config.Config
	Logger     *zap.Logger
	HTTPClient *http.Client

	// Metrics
	Registry *prometheus.Registry
	Metrics  observability.Metrics

	// Providers
	ProviderRegistry *ProviderRegistry
	Providers        router.ProviderTable
	Router           *router.Router

	// HTTP
	ChatHandler       *handlers.ChatHandler
	HealthHandler     *handlers.HealthHandler
	RequestMiddleware *middleware.RequestMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
		// One client for every upstream; Timeout 0 leaves calls unbounded.
		HTTPClient: &http.Client{Timeout: cfg.Upstream.Timeout},
	}

	deps.initMetrics()

	if err := deps.initProviders(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	deps.Router = router.New(
		deps.Providers,
		deps.ProviderRegistry,
		router.WithLogger(observability.NewLogger(logger)),
		router.WithMetrics(deps.Metrics),
	)

	deps.ChatHandler = handlers.NewChatHandler(deps.Router, logger)
	deps.HealthHandler = handlers.NewHealthHandler(deps, logger)
	deps.RequestMiddleware = middleware.NewRequestMiddleware(logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initMetrics creates a private registry holding the runtime collectors and
// the chat metrics
func (d *Dependencies) initMetrics() {
	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = observability.NewPrometheusMetrics(d.Registry, metricsNamespace)
}

// initProviders registers the wire adapters and builds the provider table
func (d *Dependencies) initProviders(cfg *config.Config) error {
	registry := NewProviderRegistry(d.Logger)

	if err := registry.Register(gemini.NewAdapter(gemini.Config{
		BaseURL:    cfg.Upstream.GeminiBaseURL,
		HTTPClient: d.HTTPClient,
	})); err != nil {
		return err
	}
	if err := registry.Register(openrouter.NewAdapter(openrouter.Config{
		BaseURL:    cfg.Upstream.OpenRouterBaseURL,
		HTTPClient: d.HTTPClient,
	})); err != nil {
		return err
	}

	d.ProviderRegistry = registry
	d.Providers = router.NewProviderTable(
		cfg.Providers.Grok.APIKey, cfg.Providers.Grok.Model,
		cfg.Providers.GPT5.APIKey, cfg.Providers.GPT5.Model,
		cfg.Providers.Gemini.APIKey, cfg.Providers.Gemini.Model,
	)

	configured := 0
	for _, name := range router.CanonicalOrder {
		spec := d.Providers[name]
		hasKey := spec.APIKey != ""
		if hasKey {
			configured++
		}
		d.Logger.Info("provider slot",
			zap.String("provider", string(name)),
			zap.String("protocol", string(spec.Protocol)),
			zap.String("default_model", spec.DefaultModel),
			zap.Bool("has_key", hasKey))
	}
	if configured == 0 {
		d.Logger.Warn("no LLM provider API keys configured")
	}

	return nil
}

// ProviderStatus reports key availability per provider slot
func (d *Dependencies) ProviderStatus() map[string]bool {
	status := make(map[string]bool, len(router.CanonicalOrder))
	for _, name := range router.CanonicalOrder {
		status[string(name)] = d.Providers.Configured(name)
	}
	return status
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	if d.HTTPClient != nil {
		d.HTTPClient.CloseIdleConnections()
	}

	// Sync logger
	_ = d.Logger.Sync()

	return nil
}

// ProviderRegistry holds one adapter per wire protocol
type ProviderRegistry struct {
	adapters map[providers.Protocol]providers.Adapter
	logger   *zap.Logger
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry(logger *zap.Logger) *ProviderRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderRegistry{
		adapters: make(map[providers.Protocol]providers.Adapter),
		logger:   logger,
	}
}

// Register adds an adapter. Registering a protocol twice is an error.
func (r *ProviderRegistry) Register(adapter providers.Adapter) error {
	if _, exists := r.adapters[adapter.Protocol()]; exists {
		return fmt.Errorf("adapter for protocol %q already registered", adapter.Protocol())
	}
	r.adapters[adapter.Protocol()] = adapter
	r.logger.Info("adapter registered",
		zap.String("protocol", string(adapter.Protocol())),
		zap.String("upstream", adapter.DisplayName()))
	return nil
}

// Get retrieves the adapter for a protocol; it serves the router's lookups
func (r *ProviderRegistry) Get(protocol providers.Protocol) (providers.Adapter, bool) {
	adapter, ok := r.adapters[protocol]
	return adapter, ok
}

