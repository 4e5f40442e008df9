package middleware

import (
	"fmt"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/upb/chat-edge/internal/shared"
	"github.com/upb/chat-edge/utils"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request ID on requests and responses
const RequestIDHeader = "X-Request-ID"

// RequestMiddleware provides the request-scoped middleware of the public listener
type RequestMiddleware struct {
	logger *zap.Logger
}

// NewRequestMiddleware creates a new RequestMiddleware
func NewRequestMiddleware(logger *zap.Logger) *RequestMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestMiddleware{logger: logger}
}

// RequestID assigns a request ID, reusing an inbound UUID when the caller
// supplied one, and echoes it in the response header
func (m *RequestMiddleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := shared.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Recoverer converts panics into a 500 JSON error envelope
func (m *RequestMiddleware) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			message := panicMessage(rvr)
			m.logger.Error("catch error",
				zap.String("request_id", shared.RequestID(r.Context())),
				zap.String("error", message),
				zap.Stack("stack"))

			_ = utils.WriteInternalServerError(w, message)
		}()

		next.ServeHTTP(w, r)
	})
}

// AccessLog logs one entry per request once the response is written
func (m *RequestMiddleware) AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.logger.Info("http request",
			zap.String("request_id", shared.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}

func panicMessage(rvr interface{}) string {
	switch v := rvr.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
