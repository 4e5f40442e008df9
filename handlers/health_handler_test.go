package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticChecker map[string]bool

func (s staticChecker) ProviderStatus() map[string]bool { return s }

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response["data"].(map[string]interface{})
}

func TestHandleHealth(t *testing.T) {
	logger := zap.NewNop()

	t.Run("reports provider keys", func(t *testing.T) {
		handler := NewHealthHandler(staticChecker{"grok": true, "gpt5": false, "gemini": true}, logger)

		w := httptest.NewRecorder()
		handler.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		data := decodeHealth(t, w)
		assert.Equal(t, "healthy", data["status"])
		assert.NotEmpty(t, data["timestamp"])
		assert.Equal(t, map[string]interface{}{
			"grok":   "configured",
			"gpt5":   "missing",
			"gemini": "configured",
		}, data["checks"])
	})

	t.Run("healthy without providers", func(t *testing.T) {
		handler := NewHealthHandler(staticChecker{"grok": false}, logger)

		w := httptest.NewRecorder()
		handler.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", decodeHealth(t, w)["status"])
	})
}

func TestHandleReadiness(t *testing.T) {
	logger := zap.NewNop()

	t.Run("ready with one provider", func(t *testing.T) {
		handler := NewHealthHandler(staticChecker{"grok": false, "gemini": true}, logger)

		w := httptest.NewRecorder()
		handler.HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ready", decodeHealth(t, w)["status"])
	})

	t.Run("not ready without keys", func(t *testing.T) {
		handler := NewHealthHandler(staticChecker{"grok": false, "gpt5": false, "gemini": false}, logger)

		w := httptest.NewRecorder()
		handler.HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "not_ready", decodeHealth(t, w)["status"])
	})

	t.Run("nil checker", func(t *testing.T) {
		handler := NewHealthHandler(nil, nil)

		w := httptest.NewRecorder()
		handler.HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
