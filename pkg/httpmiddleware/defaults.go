package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lewisedginton/line_companion_bot/pkg/logger"
	"github.com/unrolled/secure"
)

// Config holds configuration for HTTP middleware application.
// Use DefaultConfig() for sensible defaults, then customize as needed.
type Config struct {
	Logger       logger.Logger                   // required for logging middleware
	Metrics      func(http.Handler) http.Handler // optional request metrics middleware
	CORS         *CORSConfig
	Security     *secure.Options
	Timeout      time.Duration
	MaxBodyBytes int64

	EnableCorrelationID bool
	EnableLogging       bool // requires Logger
	EnableRecovery      bool
	EnableCORS          bool
	EnableSecurity      bool
	EnableCompression   bool
	EnableHeartbeat     bool // adds /ping
	EnableRealIP        bool
	EnableTimeout       bool
	EnableBodyLimit     bool
}

// DefaultConfig returns a production-ready middleware configuration.
// Logging is disabled by default - set Logger and EnableLogging=true to enable.
//
// The timeout is generous because a webhook delivery waits on several model
// calls before it can answer.
func DefaultConfig() Config {
	corsConfig := DefaultCORSConfig()
	return Config{
		CORS:         &corsConfig,
		Timeout:      60 * time.Second,
		MaxBodyBytes: 1 << 20,

		EnableCorrelationID: true,
		EnableRecovery:      true,
		EnableCORS:          true,
		EnableSecurity:      true,
		EnableCompression:   true,
		EnableHeartbeat:     true,
		EnableRealIP:        true,
		EnableTimeout:       true,
		EnableBodyLimit:     true,
	}
}

// ApplyToRouter applies the configured middleware to a Chi router.
// First applied is the outermost layer:
//
//  1. CorrelationID
//  2. Security
//  3. RealIP
//  4. Logging
//  5. Metrics
//  6. Recovery
//  7. BodyLimit
//  8. CORS
//  9. Timeout
//  10. Compression
//  11. Heartbeat
func ApplyToRouter(router chi.Router, config Config) {
	if config.EnableCorrelationID {
		router.Use(CorrelationID())
	}
	if config.EnableSecurity {
		router.Use(Security(config.Security))
	}
	if config.EnableRealIP {
		router.Use(middleware.RealIP)
	}
	if config.EnableLogging && config.Logger != nil {
		router.Use(NewHTTPLogger(config.Logger).Middleware)
	}
	if config.Metrics != nil {
		router.Use(config.Metrics)
	}
	if config.EnableRecovery {
		router.Use(middleware.Recoverer)
	}
	if config.EnableBodyLimit && config.MaxBodyBytes > 0 {
		router.Use(middleware.RequestSize(config.MaxBodyBytes))
	}
	if config.EnableCORS && config.CORS != nil {
		router.Use(CORS(*config.CORS))
	}
	if config.EnableTimeout && config.Timeout > 0 {
		router.Use(middleware.Timeout(config.Timeout))
	}
	if config.EnableCompression {
		router.Use(middleware.Compress(5))
	}
	if config.EnableHeartbeat {
		router.Use(middleware.Heartbeat("/ping"))
	}
}
