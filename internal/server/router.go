package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/unrolled/secure"

	"github.com/lewisedginton/line_companion_bot/pkg/httpmiddleware"
)

// Router builds the HTTP routes:
//
//	GET  /health         liveness, plain "ok"
//	GET  /ready          readiness report for the store and storage
//	GET  /ping           heartbeat
//	POST /webhooks/line  LINE callback
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	mw := httpmiddleware.DefaultConfig()
	mw.Logger = s.log
	mw.EnableLogging = true
	mw.Metrics = s.metrics.HTTPMiddleware()
	mw.Timeout = s.cfg.RequestTimeout
	mw.MaxBodyBytes = s.cfg.Security.MaxRequestSize
	if len(s.cfg.Security.CORSAllowedOrigins) > 0 {
		mw.CORS.AllowedOrigins = s.cfg.Security.CORSAllowedOrigins
	}
	mw.Security = &secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		IsDevelopment:      s.cfg.IsDevelopment(),
	}
	httpmiddleware.ApplyToRouter(r, mw)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ready", s.checker.Handler())
	r.Method(http.MethodPost, "/webhooks/line", s.webhook)

	return r
}
