package config

import "time"

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `env:"LOG" yaml:"log" default:"warning"`
	Format string `env:"LOG_FORMAT" yaml:"log_format"` // json or text; text in develop when empty
}

// MonitoringConfig holds metrics and readiness configuration
type MonitoringConfig struct {
	MetricsExpose          bool          `env:"METRICS_EXPOSE" yaml:"metrics_expose" default:"false"`
	MetricsPort            int           `env:"METRICS_PORT" yaml:"metrics_port" default:"9090"`
	HealthTimeout          time.Duration `env:"HEALTH_TIMEOUT" yaml:"health_timeout" default:"5s"`
	HealthFailureThreshold int           `env:"HEALTH_FAILURE_THRESHOLD" yaml:"health_failure_threshold" default:"1"`
}
