package server

import (
	"context"
	"fmt"
	"strings"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	openaioption "github.com/openai/openai-go/option"

	appconfig "github.com/lewisedginton/line_companion_bot/internal/config"
	"github.com/lewisedginton/line_companion_bot/internal/conversation"
	"github.com/lewisedginton/line_companion_bot/internal/filestore"
	"github.com/lewisedginton/line_companion_bot/internal/line"
	"github.com/lewisedginton/line_companion_bot/internal/llm"
	"github.com/lewisedginton/line_companion_bot/pkg/health"
	"github.com/lewisedginton/line_companion_bot/pkg/health/checkers"
	"github.com/lewisedginton/line_companion_bot/pkg/logger"
)

// createFileStorage creates the blob storage holding the mood record and, for
// the file store, conversation histories.
func (s *Server) createFileStorage(ctx context.Context) (*filestore.Manager, error) {
	cfg := s.cfg.Storage

	switch cfg.Backend {
	case "s3":
		s.log.Info("Using S3-based storage",
			logger.StringField("bucket", cfg.S3Bucket),
			logger.StringField("prefix", cfg.S3Prefix),
			logger.StringField("region", cfg.S3Region))
	default:
		s.log.Info("Using local file-based storage", logger.StringField("directory", cfg.LocalDir))
	}

	m, err := filestore.New(ctx, filestore.Config{
		Backend:   filestore.BackendType(cfg.Backend),
		LocalDir:  cfg.LocalDir,
		S3Bucket:  cfg.S3Bucket,
		S3Prefix:  cfg.S3Prefix,
		S3Region:  cfg.S3Region,
		S3Profile: cfg.S3Profile,
	})
	if err != nil {
		return nil, err
	}

	if m.Backend() == filestore.BackendLocal {
		s.checker.Add(checkers.NewFileChecker(cfg.LocalDir, "storage"))
	} else {
		provider, moodFile := m.Provider(""), cfg.MoodFile
		s.checker.Add(health.NewCheckFunc("storage", func(ctx context.Context) error {
			_, err := provider.Exists(ctx, moodFile)
			return err
		}))
	}
	return m, nil
}

// createStore creates the conversation store selected by CONVERSATION_STORE
// and registers its readiness check.
func (s *Server) createStore(ctx context.Context) (conversation.Store, error) {
	cfg := s.cfg.Store
	backend := strings.ToLower(cfg.Backend)
	s.log.Info("Initializing conversation store", logger.StringField("backend", backend))

	switch backend {
	case appconfig.StoreFirebase:
		store, err := conversation.NewFirebaseStore(ctx, conversation.FirebaseConfig{
			DatabaseURL:     cfg.FirebaseURL,
			CredentialsFile: cfg.FirebaseCredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		s.checker.Add(checkers.NewHTTPChecker(strings.TrimRight(cfg.FirebaseURL, "/")+"/.json?shallow=true", "firebase"))
		return store, nil

	case appconfig.StoreRedis:
		client, err := conversation.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.checker.Add(checkers.NewRedisChecker(client, "redis"))
		return conversation.NewRedisStore(client), nil

	case appconfig.StorePostgres:
		store, err := conversation.OpenPostgresStore(ctx, cfg.DatabaseURL, s.log)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, store.Close)
		s.checker.Add(checkers.NewPingChecker(store.Pool(), "postgres"))
		return store, nil

	case appconfig.StoreSQLite:
		store, err := conversation.OpenSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = store.Close() })
		s.checker.Add(checkers.NewPingChecker(store, "sqlite"))
		return store, nil

	case appconfig.StoreFile:
		return conversation.NewFileStore(s.files.Provider("")), nil

	case appconfig.StoreMemory:
		s.log.Warn("Using in-memory conversation store; history is lost on restart")
		return conversation.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unsupported conversation store: %s", cfg.Backend)
	}
}

// createLLMModel creates an LLM model instance based on the configured provider
func (s *Server) createLLMModel(ctx context.Context) (llm.Model, error) {
	provider := strings.ToLower(s.cfg.LLM.Provider)

	switch provider {
	case appconfig.ProviderGemini:
		s.log.Info("Initializing Gemini model", logger.StringField("model", s.cfg.Gemini.Model))
		if s.cfg.Gemini.Project != "" && s.cfg.Gemini.Region != "" {
			s.log.Info("Using Vertex AI backend",
				logger.StringField("project", s.cfg.Gemini.Project),
				logger.StringField("region", s.cfg.Gemini.Region))
		}
		return llm.NewGeminiModel(ctx, llm.GeminiConfig{
			APIKey:   s.cfg.Gemini.APIKey,
			Model:    s.cfg.Gemini.Model,
			Project:  s.cfg.Gemini.Project,
			Location: s.cfg.Gemini.Region,
		})

	case appconfig.ProviderOpenAI:
		s.log.Info("Initializing OpenAI model", logger.StringField("model", s.cfg.OpenAI.Model))
		var opts []openaioption.RequestOption
		if s.cfg.OpenAI.APIBaseURL != "" {
			opts = append(opts, openaioption.WithBaseURL(s.cfg.OpenAI.APIBaseURL))
		}
		return llm.NewOpenAIModel(s.cfg.OpenAI.APIKey, s.cfg.OpenAI.Model, opts...)

	case appconfig.ProviderClaude:
		s.log.Info("Initializing Claude model", logger.StringField("model", s.cfg.Anthropic.Model))
		var opts []anthropicoption.RequestOption
		if s.cfg.Anthropic.APIBaseURL != "" {
			opts = append(opts, anthropicoption.WithBaseURL(s.cfg.Anthropic.APIBaseURL))
		}
		return llm.NewClaudeModel(s.cfg.Anthropic.APIKey, s.cfg.Anthropic.Model, opts...)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

func (s *Server) createReplier() (*line.Replier, error) {
	var opts []messaging_api.MessagingApiAPIOption
	if s.cfg.LINE.APIEndpoint != "" {
		opts = append(opts, messaging_api.WithEndpoint(s.cfg.LINE.APIEndpoint))
	}
	api, err := line.NewClient(s.cfg.LINE.ChannelAccessToken, opts...)
	if err != nil {
		return nil, err
	}
	return line.NewReplier(api), nil
}
