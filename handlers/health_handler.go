package handlers

import (
	"net/http"
	"time"

	"github.com/upb/chat-edge/utils"
	"go.uber.org/zap"
)

// Provider check values
const (
	CheckConfigured = "configured"
	CheckMissing    = "missing"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ProviderChecker reports which providers have an API key
type ProviderChecker interface {
	ProviderStatus() map[string]bool
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	providers ProviderChecker
	logger    *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(providers ProviderChecker, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		providers: providers,
		logger:    logger,
	}
}

// HandleHealth handles GET /healthz. The process is alive as long as it can
// answer; provider key availability is reported but never fails the check.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks, _ := h.checks()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	_ = utils.WriteOK(w, response)
}

// HandleReadiness handles GET /readyz
// Ready when at least one provider has a key
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks, configured := h.checks()

	status := "ready"
	httpStatus := http.StatusOK
	if configured == 0 {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
		h.logger.Warn("no provider has an API key")
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

func (h *HealthHandler) checks() (map[string]string, int) {
	if h.providers == nil {
		return nil, 0
	}

	status := h.providers.ProviderStatus()
	checks := make(map[string]string, len(status))
	configured := 0
	for name, ok := range status {
		if ok {
			checks[name] = CheckConfigured
			configured++
		} else {
			checks[name] = CheckMissing
		}
	}
	return checks, configured
}
