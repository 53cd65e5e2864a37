package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lewisedginton/line_companion_bot/pkg/logger"
)

// HTTPLogger provides HTTP request/response logging middleware
type HTTPLogger struct {
	logger logger.Logger
}

// NewHTTPLogger creates a new HTTP logger middleware
func NewHTTPLogger(log logger.Logger) *HTTPLogger {
	return &HTTPLogger{logger: log}
}

// Middleware logs one line per request once the response is written.
func (h *HTTPLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestLogger := h.RequestLogger(r)
		requestLogger.Debug("HTTP request received")

		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)

		status := wrapped.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []logger.LogField{
			logger.HTTPStatusField(status),
			logger.IntField("response_bytes", wrapped.BytesWritten()),
			logger.DurationField("duration", time.Since(start)),
		}
		if status >= http.StatusInternalServerError {
			requestLogger.Warn("HTTP response sent", fields...)
			return
		}
		requestLogger.Info("HTTP response sent", fields...)
	})
}

// RequestLogger creates a logger with request context for use in handlers
func (h *HTTPLogger) RequestLogger(r *http.Request) logger.Logger {
	return h.logger.WithFields(
		logger.ClientIPField(r.RemoteAddr),
		logger.HTTPMethodField(r.Method),
		logger.HTTPPathField(r.URL.Path),
		logger.CorrelationIDField(logger.GetCorrelationIDFromContext(r.Context())),
	)
}
