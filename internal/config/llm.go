package config

import (
	"fmt"
	"strings"
	"time"
)

// LLM provider constants
const (
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// LLMConfig holds LLM provider selection configuration
type LLMConfig struct {
	// Provider specifies which LLM provider to use: "gemini", "openai" or "claude"
	Provider string        `env:"LLM_PROVIDER" yaml:"llm_provider" default:"gemini"`
	Timeout  time.Duration `env:"MODEL_TIMEOUT" yaml:"model_timeout" default:"30s"`
}

// GeminiConfig holds Google Gemini-specific configuration
type GeminiConfig struct {
	APIKey  string `env:"GEMINI_API_KEY" yaml:"-"`
	Model   string `env:"GEMINI_MODEL" yaml:"model" default:"gemini-1.5-pro"`
	Project string `env:"GOOGLE_CLOUD_PROJECT" yaml:"project"` // Optional: for Vertex AI
	Region  string `env:"GOOGLE_CLOUD_REGION" yaml:"region"`   // Optional: for Vertex AI
}

// OpenAIConfig holds OpenAI-specific configuration
type OpenAIConfig struct {
	APIKey     string `env:"OPENAI_API_KEY" yaml:"-"`
	Model      string `env:"OPENAI_MODEL" yaml:"model" default:"gpt-4o"`
	APIBaseURL string `env:"OPENAI_API_URL" yaml:"api_base_url"`
}

// AnthropicConfig holds Anthropic-specific configuration
type AnthropicConfig struct {
	APIKey     string `env:"ANTHROPIC_API_KEY" yaml:"-"`
	Model      string `env:"CLAUDE_MODEL" yaml:"model" default:"claude-sonnet-4-5"`
	APIBaseURL string `env:"ANTHROPIC_API_URL" yaml:"api_base_url"`
}

func (l LLMConfig) validate(c AppConfig) error {
	switch strings.ToLower(l.Provider) {
	case ProviderGemini:
		if c.Gemini.APIKey == "" && (c.Gemini.Project == "" || c.Gemini.Region == "") {
			return fmt.Errorf("gemini requires GEMINI_API_KEY or GOOGLE_CLOUD_PROJECT and GOOGLE_CLOUD_REGION")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("openai requires OPENAI_API_KEY")
		}
	case ProviderClaude:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("claude requires ANTHROPIC_API_KEY")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be one of [gemini, openai, claude], got %q", l.Provider)
	}
	return nil
}
