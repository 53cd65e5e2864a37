// Package server wires the LINE webhook, conversation store and language
// model together and runs the HTTP listeners.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof is only served on localhost in develop mode
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	appconfig "github.com/lewisedginton/line_companion_bot/internal/config"
	"github.com/lewisedginton/line_companion_bot/internal/conversation"
	"github.com/lewisedginton/line_companion_bot/internal/dispatch"
	"github.com/lewisedginton/line_companion_bot/internal/filestore"
	"github.com/lewisedginton/line_companion_bot/internal/line"
	"github.com/lewisedginton/line_companion_bot/internal/llm"
	"github.com/lewisedginton/line_companion_bot/internal/mood"
	"github.com/lewisedginton/line_companion_bot/internal/webhook"
	"github.com/lewisedginton/line_companion_bot/pkg/health"
	"github.com/lewisedginton/line_companion_bot/pkg/logger"
	"github.com/lewisedginton/line_companion_bot/pkg/metrics"
	"github.com/lewisedginton/line_companion_bot/pkg/utils"
)

const shutdownTimeout = 30 * time.Second

// Server encapsulates the bot components and lifecycle management
type Server struct {
	cfg     appconfig.AppConfig
	log     logger.Logger
	metrics *metrics.Metrics
	files   *filestore.Manager
	store   conversation.Store
	model   llm.Model
	webhook http.Handler
	checker *health.Checker
	closers []func()
}

// New creates a Server with every client constructed once up front.
func New(ctx context.Context, cfg appconfig.AppConfig, log logger.Logger) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		log:     log,
		metrics: metrics.NewMetrics(log),
		checker: health.New(
			health.WithLogger(log),
			health.WithTimeout(cfg.Monitoring.HealthTimeout),
			health.WithFailureThreshold(cfg.Monitoring.HealthFailureThreshold),
		),
	}

	info := prometheus.NewGauge(prometheus.GaugeOpts{
		Subsystem: "linebot",
		Name:      "build_info",
		Help:      "Configured language model provider and conversation store",
		ConstLabels: prometheus.Labels{
			"llm_provider":       strings.ToLower(cfg.LLM.Provider),
			"conversation_store": strings.ToLower(cfg.Store.Backend),
		},
	})
	info.Set(1)
	s.metrics.AddCustomMetric(info)

	var err error
	s.files, err = s.createFileStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create file storage: %w", err)
	}

	store, err := s.createStore(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create conversation store: %w", err)
	}
	s.store = conversation.WithTimeout(store, cfg.Store.Timeout, s.metrics.ObserveDependency)

	model, err := s.createLLMModel(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create LLM model: %w", err)
	}
	s.model = llm.Guard(model, cfg.LLM.Timeout, s.metrics.ObserveDependency)

	dispatcher, err := dispatch.New(dispatch.Config{
		Model:   s.model,
		Store:   s.store,
		Mood:    mood.NewFileSource(s.files.Provider(""), cfg.Storage.MoodFile),
		Logger:  log,
		Metrics: s.metrics,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	replier, err := s.createReplier()
	if err != nil {
		s.Close()
		return nil, err
	}

	s.webhook, err = webhook.New(webhook.Config{
		Parser:       line.NewParser(cfg.LINE.ChannelSecret),
		Responder:    dispatcher,
		Replier:      replier,
		Logger:       log,
		Metrics:      s.metrics,
		ReplyTimeout: cfg.LINE.ReplyTimeout,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create webhook handler: %w", err)
	}

	return s, nil
}

// Close releases store connections.
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Run serves HTTP until SIGINT/SIGTERM or a listener fails.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer s.Close()

	if s.cfg.IsDevelopment() {
		go s.servePprof()
	}

	errChans := []<-chan error{s.listen(ctx)}
	if s.cfg.Monitoring.MetricsExpose {
		errChans = append(errChans, s.metrics.Listen(ctx, s.cfg.Monitoring.MetricsPort))
	}

	var runErr error
	for err := range utils.MergeErrorChans(errChans...) {
		s.log.Error("Listener failed", logger.ErrorField(err))
		if runErr == nil {
			runErr = err
			stop()
		}
	}

	s.log.Info("Server stopped")
	return runErr
}

// listen serves the router on the configured port and shuts it down
// gracefully once ctx is done. The channel is closed when serving ends.
func (s *Server) listen(ctx context.Context) <-chan error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		s.log.Info("HTTP server listening", logger.IntField("port", s.cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout) //nolint:contextcheck // New context needed for shutdown
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil { //nolint:contextcheck // Using new context for graceful shutdown
			s.log.Error("HTTP server shutdown error", logger.ErrorField(err))
		}
	}()

	return errChan
}

func (s *Server) servePprof() {
	s.log.Info("Starting pprof server on localhost:6060")
	pprofServer := &http.Server{
		Addr:              "localhost:6060",
		Handler:           nil, // Uses DefaultServeMux with pprof handlers
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := pprofServer.ListenAndServe(); err != nil {
		s.log.Error("pprof server failed", logger.ErrorField(err))
	}
}
