package httpmiddleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/unrolled/secure"
)

// CORSConfig represents CORS configuration options
type CORSConfig struct {
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowedOrigins   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig allows the probe and webhook methods from any origin.
// LINE delivers webhooks server to server, so CORS only matters for browsers
// poking at /health and /ready.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "X-Line-Signature", "X-Correlation-ID"},
		AllowedOrigins: []string{"https://*", "http://*"},
		ExposedHeaders: []string{"X-Correlation-ID"},
		MaxAge:         300,
	}
}

// CORS middleware configures Cross-Origin Resource Sharing
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedMethods:   config.AllowedMethods,
		AllowedHeaders:   config.AllowedHeaders,
		AllowedOrigins:   config.AllowedOrigins,
		ExposedHeaders:   config.ExposedHeaders,
		AllowCredentials: config.AllowCredentials,
		MaxAge:           config.MaxAge,
	})
}

// Security middleware adds security headers
func Security(opts *secure.Options) func(http.Handler) http.Handler {
	if opts == nil {
		return secure.New().Handler
	}
	return secure.New(*opts).Handler
}
