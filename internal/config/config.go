// Package config defines the bot's application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/lewisedginton/line_companion_bot/pkg/logger"
)

// AppConfig holds all application configuration
type AppConfig struct {
	ServiceName string `env:"SERVICE_NAME" yaml:"service_name" default:"line-companion-bot"`
	Environment string `env:"API_ENV" yaml:"environment" default:"develop"`

	// Server configuration
	Port           int           `env:"PORT" yaml:"port" default:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" yaml:"request_timeout" default:"90s"`

	LINE       LINEConfig       `yaml:",inline"`
	LLM        LLMConfig        `yaml:",inline"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	Store      StoreConfig      `yaml:",inline"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:",inline"`
	Monitoring MonitoringConfig `yaml:",inline"`
	Security   SecurityConfig   `yaml:",inline"`
}

// MissingEnvError reports a credential the bot cannot start without.
type MissingEnvError struct {
	Name string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("Specify %s as environment variable.", e.Name)
}

// Validate validates the configuration and returns every problem found.
// Missing LINE credentials come first, secret before token.
func (c AppConfig) Validate() error {
	var result error

	if c.LINE.ChannelSecret == "" {
		result = multierror.Append(result, &MissingEnvError{Name: "LINE_CHANNEL_SECRET"})
	}
	if c.LINE.ChannelAccessToken == "" {
		result = multierror.Append(result, &MissingEnvError{Name: "LINE_CHANNEL_ACCESS_TOKEN"})
	}

	if !logger.ValidLevel(c.Logging.Level) {
		result = multierror.Append(result, fmt.Errorf("LOG must be one of [debug, info, warning, error], got %q", c.Logging.Level))
	}
	if f := c.Logging.Format; f != "" && f != "json" && f != "text" {
		result = multierror.Append(result, fmt.Errorf("LOG_FORMAT must be either 'json' or 'text', got %q", f))
	}

	if c.Port < 1 || c.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	if c.Monitoring.MetricsExpose && (c.Monitoring.MetricsPort < 1 || c.Monitoring.MetricsPort > 65535) {
		result = multierror.Append(result, fmt.Errorf("metrics port must be between 1 and 65535, got %d", c.Monitoring.MetricsPort))
	}

	for name, d := range map[string]time.Duration{
		"REQUEST_TIMEOUT": c.RequestTimeout,
		"MODEL_TIMEOUT":   c.LLM.Timeout,
		"STORE_TIMEOUT":   c.Store.Timeout,
		"REPLY_TIMEOUT":   c.LINE.ReplyTimeout,
	} {
		if d <= 0 {
			result = multierror.Append(result, fmt.Errorf("%s must be greater than 0", name))
		}
	}

	if err := c.LLM.validate(c); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Store.validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Storage.validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if c.Security.MaxRequestSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("max_request_size must be greater than 0"))
	}

	return result
}

// GetLogLevel returns the parsed logger level
func (c AppConfig) GetLogLevel() logger.Level {
	return logger.ParseLevel(c.Logging.Level)
}

// GetLogFormat returns the configured format, text in develop and json
// elsewhere when unset.
func (c AppConfig) GetLogFormat() string {
	if c.Logging.Format != "" {
		return c.Logging.Format
	}
	if c.IsDevelopment() {
		return "text"
	}
	return "json"
}

// IsProduction returns true if running in production environment
func (c AppConfig) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// IsDevelopment returns true if running in develop mode
func (c AppConfig) IsDevelopment() bool {
	env := strings.ToLower(c.Environment)
	return env == "develop" || env == "development" || env == "dev"
}

// LogConfig logs the current configuration (without sensitive data)
func (c AppConfig) LogConfig(log logger.Logger) {
	log.Info("Application configuration loaded",
		logger.StringField("service_name", c.ServiceName),
		logger.StringField("environment", c.Environment),
		logger.IntField("port", c.Port),
		logger.StringField("llm_provider", c.LLM.Provider),
		logger.StringField("llm_model", c.ModelName()),
		logger.StringField("conversation_store", c.Store.Backend),
		logger.StringField("storage_backend", c.Storage.Backend),
		logger.StringField("mood_file", c.Storage.MoodFile),
		logger.StringField("log_level", c.GetLogLevel().String()),
		logger.StringField("log_format", c.GetLogFormat()),
		logger.BoolField("metrics_enabled", c.Monitoring.MetricsExpose),
		logger.DurationField("model_timeout", c.LLM.Timeout),
		logger.DurationField("store_timeout", c.Store.Timeout),
	)
}

// ModelName is the model of the selected provider.
func (c AppConfig) ModelName() string {
	switch strings.ToLower(c.LLM.Provider) {
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderClaude:
		return c.Anthropic.Model
	default:
		return c.Gemini.Model
	}
}
