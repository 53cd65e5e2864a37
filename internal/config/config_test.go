package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/lewisedginton/line_companion_bot/pkg/config"
	"github.com/lewisedginton/line_companion_bot/pkg/logger"
)

func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LINE_CHANNEL_SECRET", "secret")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "token")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("FIREBASE_URL", "https://bot-default-rtdb.firebaseio.com")
}

func TestDefaults(t *testing.T) {
	setMinimalEnv(t)

	var cfg AppConfig
	require.NoError(t, pkgconfig.GetConfigFromEnvVars(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "develop", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-1.5-pro", cfg.ModelName())
	assert.Equal(t, StoreFirebase, cfg.Store.Backend)
	assert.Equal(t, "mood.txt", cfg.Storage.MoodFile)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 10*time.Second, cfg.LINE.ReplyTimeout)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.Equal(t, logger.WarnLevel, cfg.GetLogLevel())
	assert.Equal(t, "text", cfg.GetLogFormat())
	assert.False(t, cfg.Monitoring.MetricsExpose)
	assert.Equal(t, 9090, cfg.Monitoring.MetricsPort)
}

func TestProductionLogFormat(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("API_ENV", "production")
	t.Setenv("LOG", "DEBUG")

	var cfg AppConfig
	require.NoError(t, pkgconfig.GetConfigFromEnvVars(&cfg))
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.GetLogFormat())
	assert.Equal(t, logger.DebugLevel, cfg.GetLogLevel())
}

func TestMissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		want  string
	}{
		{"secret", "LINE_CHANNEL_SECRET", "Specify LINE_CHANNEL_SECRET as environment variable."},
		{"token", "LINE_CHANNEL_ACCESS_TOKEN", "Specify LINE_CHANNEL_ACCESS_TOKEN as environment variable."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setMinimalEnv(t)
			t.Setenv(tt.unset, "")

			var cfg AppConfig
			err := pkgconfig.GetConfigFromEnvVars(&cfg)
			require.Error(t, err)

			var missing *MissingEnvError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.want, missing.Error())
		})
	}

	t.Run("secret reported first", func(t *testing.T) {
		err := AppConfig{}.Validate()
		var missing *MissingEnvError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "LINE_CHANNEL_SECRET", missing.Name)
	})
}

func TestValidate(t *testing.T) {
	valid := func() AppConfig {
		return AppConfig{
			Port:           8080,
			RequestTimeout: time.Minute,
			LINE:           LINEConfig{ChannelSecret: "s", ChannelAccessToken: "t", ReplyTimeout: time.Second},
			LLM:            LLMConfig{Provider: ProviderGemini, Timeout: time.Second},
			Gemini:         GeminiConfig{APIKey: "k"},
			Store:          StoreConfig{Backend: StoreMemory, Timeout: time.Second},
			Storage:        StorageConfig{Backend: "local"},
			Logging:        LoggingConfig{Level: "info"},
			Security:       SecurityConfig{MaxRequestSize: 1024},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"bad log level", func(c *AppConfig) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *AppConfig) { c.Logging.Format = "xml" }},
		{"bad port", func(c *AppConfig) { c.Port = 0 }},
		{"zero model timeout", func(c *AppConfig) { c.LLM.Timeout = 0 }},
		{"unknown provider", func(c *AppConfig) { c.LLM.Provider = "llama" }},
		{"openai without key", func(c *AppConfig) { c.LLM.Provider = ProviderOpenAI }},
		{"claude without key", func(c *AppConfig) { c.LLM.Provider = ProviderClaude }},
		{"gemini without credentials", func(c *AppConfig) { c.Gemini.APIKey = "" }},
		{"unknown store", func(c *AppConfig) { c.Store.Backend = "mongo" }},
		{"firebase without url", func(c *AppConfig) { c.Store.Backend = StoreFirebase }},
		{"redis without url", func(c *AppConfig) { c.Store.Backend = StoreRedis }},
		{"postgres without url", func(c *AppConfig) { c.Store.Backend = StorePostgres }},
		{"sqlite without path", func(c *AppConfig) { c.Store.Backend = StoreSQLite }},
		{"s3 without bucket", func(c *AppConfig) { c.Storage.Backend = "s3" }},
		{"unknown storage", func(c *AppConfig) { c.Storage.Backend = "git" }},
		{"bad metrics port", func(c *AppConfig) { c.Monitoring.MetricsExpose = true; c.Monitoring.MetricsPort = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("vertex ai instead of key", func(t *testing.T) {
		cfg := valid()
		cfg.Gemini = GeminiConfig{Project: "p", Region: "asia-east1"}
		assert.NoError(t, cfg.Validate())
	})
}

func TestYAMLFile(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("PORT", "9000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 7000
llm_provider: gemini
conversation_store: memory
storage:
  mood_file: moods/today.txt
gemini:
  model: gemini-2.0-flash
`), 0o600))

	var cfg AppConfig
	require.NoError(t, pkgconfig.GetConfig(&cfg, path, false))

	assert.Equal(t, 9000, cfg.Port, "environment overrides the file")
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, "moods/today.txt", cfg.Storage.MoodFile)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
}
