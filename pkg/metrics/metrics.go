// Package metrics provides Prometheus metrics collection for HTTP requests and
// bot internals such as webhook events, intents and outbound dependency calls.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lewisedginton/line_companion_bot/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	subsystem = "linebot"
)

// Metrics provides Prometheus metrics collection. A nil *Metrics is valid and
// records nothing, so callers never need to guard.
type Metrics struct {
	reg *prometheus.Registry

	TotalHTTPRequestsCounter prometheus.Counter
	HTTPDurationHistogram    prometheus.Histogram

	mu                   sync.Mutex
	HTTPRequestsCounters map[int]prometheus.Counter

	EventsCounter      *prometheus.CounterVec
	IntentsCounter     *prometheus.CounterVec
	DependencyDuration *prometheus.HistogramVec
	FailuresCounter    *prometheus.CounterVec

	log logger.Logger
}

// NewMetrics creates a Metrics instance with HTTP and bot collectors registered
// on a private registry.
func NewMetrics(l logger.Logger) *Metrics {
	m := &Metrics{
		reg:                  prometheus.NewRegistry(),
		HTTPRequestsCounters: make(map[int]prometheus.Counter),
		log:                  l,
	}

	m.TotalHTTPRequestsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "total_http_requests",
		Help:      "Total HTTP requests",
	})
	m.HTTPDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Subsystem: subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{0.1, 0.3, 0.5, 0.7, 1.0, 3.0, 5.0, 7.0, 10.0},
	})
	m.EventsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "webhook_events_total",
		Help:      "Webhook events received by type",
	}, []string{"type"})
	m.IntentsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "intents_total",
		Help:      "Messages routed per intent",
	}, []string{"intent"})
	m.DependencyDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: subsystem,
		Name:      "dependency_call_duration_seconds",
		Help:      "Duration of calls to external dependencies",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1.0, 3.0, 5.0, 10.0, 30.0},
	}, []string{"dependency", "outcome"})
	m.FailuresCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "failures_total",
		Help:      "Failures by processing stage",
	}, []string{"stage"})

	m.reg.MustRegister(
		m.TotalHTTPRequestsCounter,
		m.HTTPDurationHistogram,
		m.EventsCounter,
		m.IntentsCounter,
		m.DependencyDuration,
		m.FailuresCounter,
	)
	return m
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Listen serves /metrics on the given port until ctx is cancelled. The returned
// channel receives the server's terminal error.
func (m *Metrics) Listen(ctx context.Context, port int) <-chan error {
	m.log.Info("Starting metrics listener", logger.IntField("port", port))
	mux := http.NewServeMux()
	mux.Handle("/", http.NotFoundHandler())
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errChan <- err
		close(errChan)
	}()
	go func() {
		<-ctx.Done()
		m.log.Info("Stopping metrics listener")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	return errChan
}

// AddCustomMetric registers a custom Prometheus collector.
func (m *Metrics) AddCustomMetric(c prometheus.Collector) {
	m.reg.MustRegister(c)
}

// IncrementHTTPResponseCounter increments the counter for the given HTTP status code.
func (m *Metrics) IncrementHTTPResponseCounter(code int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	counter, ok := m.HTTPRequestsCounters[code]
	if !ok {
		counter = newTotalHTTPReqMetric(code)
		m.reg.MustRegister(counter)
		m.HTTPRequestsCounters[code] = counter
	}
	m.mu.Unlock()
	counter.Inc()
}

func newTotalHTTPReqMetric(code int) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      fmt.Sprintf("total_%d_http_responses", code),
		Help:      fmt.Sprintf("Total %s HTTP responses returned", http.StatusText(code)),
	})
}

// ObserveEvent counts one webhook event of the given type.
func (m *Metrics) ObserveEvent(eventType string) {
	if m == nil {
		return
	}
	m.EventsCounter.WithLabelValues(eventType).Inc()
}

// ObserveIntent counts one message routed to the named intent.
func (m *Metrics) ObserveIntent(intent string) {
	if m == nil {
		return
	}
	m.IntentsCounter.WithLabelValues(intent).Inc()
}

// ObserveDependency records how long a call to an external dependency took.
func (m *Metrics) ObserveDependency(dependency string, took time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.DependencyDuration.WithLabelValues(dependency, outcome).Observe(took.Seconds())
}

// ObserveFailure counts one failure at the named stage.
func (m *Metrics) ObserveFailure(stage string) {
	if m == nil {
		return
	}
	m.FailuresCounter.WithLabelValues(stage).Inc()
}

// HTTPMiddleware returns a Chi-compatible middleware that tracks HTTP metrics
func (m *Metrics) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.TotalHTTPRequestsCounter.Inc()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			m.HTTPDurationHistogram.Observe(time.Since(start).Seconds())
			m.IncrementHTTPResponseCounter(rw.statusCode)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
