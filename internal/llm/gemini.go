package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/lewisedginton/line_companion_bot/internal/conversation"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-1.5-pro"

// geminiGenerator is satisfied by *genai.Models.
type geminiGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig configures the Gemini backend. Setting Project and Location
// switches to Vertex AI; otherwise APIKey is used against the Gemini API.
type GeminiConfig struct {
	APIKey   string
	Model    string
	Project  string
	Location string
}

// GeminiModel calls Google Gemini through google.golang.org/genai.
type GeminiModel struct {
	models    geminiGenerator
	modelName string
}

// NewGeminiModel creates a Gemini client.
func NewGeminiModel(ctx context.Context, cfg GeminiConfig) (*GeminiModel, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Project != "" && cfg.Location != "" {
		clientConfig.APIKey = ""
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = cfg.Project
		clientConfig.Location = cfg.Location
	} else if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiModel{models: client.Models, modelName: cfg.Model}, nil
}

// Name returns the model name.
func (g *GeminiModel) Name() string { return g.modelName }

// Generate sends the turns as a multi-turn request and returns the joined text
// of the first candidate.
func (g *GeminiModel) Generate(ctx context.Context, turns []conversation.Turn) (string, error) {
	if len(turns) == 0 {
		return "", ErrNoTurns
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, toGeminiContents(turns), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	return resp.Text(), nil
}

func toGeminiContents(turns []conversation.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.Role(genai.RoleUser)
		if t.Role == conversation.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}
	return contents
}
