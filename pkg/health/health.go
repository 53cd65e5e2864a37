// Package health runs readiness checks against the bot's dependencies and
// exposes the aggregated result over HTTP.
package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lewisedginton/line_companion_bot/pkg/logger"
)

// Check represents a single health check that can succeed or fail.
type Check interface {
	Name() string
	// Check returns nil if healthy.
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function into a Check.
type CheckFunc struct {
	name string
	fn   func(context.Context) error
}

// NewCheckFunc creates a new CheckFunc with the given name and function.
func NewCheckFunc(name string, fn func(context.Context) error) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

// Name returns the name of this check.
func (c *CheckFunc) Name() string { return c.name }

// Check executes the check function.
func (c *CheckFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// CheckResult is the outcome of one check execution.
type CheckResult struct {
	Name    string
	Healthy bool
	Error   string
	Latency time.Duration
}

// Status is the aggregated outcome of all checks.
type Status struct {
	Healthy bool
	Checks  []CheckResult
}

// Checker runs readiness checks concurrently. A check only reports unhealthy
// after failureThreshold consecutive failures, so a single slow ping to the
// conversation store does not flap the probe.
type Checker struct {
	mu               sync.Mutex
	checks           []Check
	failures         map[string]int
	timeout          time.Duration
	failureThreshold int
	logger           logger.Logger
}

// Option is a functional option for configuring Checker.
type Option func(*Checker)

// WithTimeout sets the per-check timeout. Default is 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for check failures.
func WithLogger(l logger.Logger) Option {
	return func(c *Checker) {
		c.logger = l
	}
}

// WithFailureThreshold sets the number of consecutive failures before a check is
// considered unhealthy. Default is 3.
func WithFailureThreshold(threshold int) Option {
	return func(c *Checker) {
		if threshold > 0 {
			c.failureThreshold = threshold
		}
	}
}

// New creates a Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		timeout:          5 * time.Second,
		failureThreshold: 3,
		failures:         make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add registers one or more checks.
func (c *Checker) Add(checks ...Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, checks...)
}

// Run executes every registered check and returns the aggregated status. The
// error lists the names of unhealthy checks.
func (c *Checker) Run(ctx context.Context) (Status, error) {
	c.mu.Lock()
	checks := append([]Check(nil), c.checks...)
	c.mu.Unlock()

	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(idx int, chk Check) {
			defer wg.Done()
			results[idx] = c.runOne(ctx, chk)
		}(i, check)
	}
	wg.Wait()

	status := Status{Healthy: true, Checks: results}
	var failed []string
	for _, r := range results {
		if !r.Healthy {
			status.Healthy = false
			failed = append(failed, r.Name)
		}
	}
	if !status.Healthy {
		sort.Strings(failed)
		return status, fmt.Errorf("health checks failed: %v", failed)
	}
	return status, nil
}

func (c *Checker) runOne(parent context.Context, check Check) CheckResult {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	start := time.Now()
	err := check.Check(ctx)
	result := CheckResult{Name: check.Name(), Latency: time.Since(start), Healthy: true}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.failures[check.Name()] = 0
		return result
	}

	c.failures[check.Name()]++
	count := c.failures[check.Name()]
	if count < c.failureThreshold {
		if c.logger != nil {
			c.logger.Debug("Health check failed but below threshold",
				logger.StringField("check", check.Name()),
				logger.ErrorField(err),
				logger.IntField("failures", count),
			)
		}
		return result
	}

	result.Healthy = false
	result.Error = err.Error()
	if c.logger != nil {
		c.logger.Warn("Health check failed",
			logger.StringField("check", check.Name()),
			logger.ErrorField(err),
			logger.IntField("failures", count),
			logger.DurationField("latency", result.Latency),
		)
	}
	return result
}
