package checkers

import (
	"context"
	"fmt"
	"os"
)

// Pinger is satisfied by *pgxpool.Pool and similar connection pools.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports healthy when Ping succeeds.
type PingChecker struct {
	pinger Pinger
	name   string
}

// NewPingChecker wraps a Pinger as a named check.
func NewPingChecker(p Pinger, name string) *PingChecker {
	return &PingChecker{pinger: p, name: name}
}

// Name returns the name of this health check.
func (p *PingChecker) Name() string { return p.name }

// Check pings the underlying pool.
func (p *PingChecker) Check(ctx context.Context) error {
	if err := p.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", p.name, err)
	}
	return nil
}

// FileChecker reports unhealthy when a local path cannot be stat'ed.
type FileChecker struct {
	path string
	name string
}

// NewFileChecker creates a check for a local file. An empty name defaults to the path.
func NewFileChecker(path, name string) *FileChecker {
	if name == "" {
		name = path
	}
	return &FileChecker{path: path, name: name}
}

// Name returns the name of this health check.
func (f *FileChecker) Name() string { return f.name }

// Check stats the file.
func (f *FileChecker) Check(_ context.Context) error {
	if _, err := os.Stat(f.path); err != nil {
		return fmt.Errorf("file check failed: %w", err)
	}
	return nil
}
