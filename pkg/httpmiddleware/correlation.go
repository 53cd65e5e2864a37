package httpmiddleware

import (
	"net/http"

	"github.com/lewisedginton/line_companion_bot/pkg/logger"
)

// CorrelationID middleware ensures every request carries a UUID correlation ID.
// A well-formed incoming X-Correlation-ID is kept so traces can span a proxy;
// anything else is replaced. The ID is echoed on the response and stored in the
// request context for logger.GetLoggerFromContext.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, id := logger.EnsureHTTPCorrelationID(r)
			w.Header().Set(logger.CorrelationIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}
