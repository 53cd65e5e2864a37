package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/lewisedginton/line_companion_bot/internal/conversation"
)

// DefaultOpenAIModel is used when no model name is configured.
const DefaultOpenAIModel = "gpt-4o"

// OpenAIModel calls OpenAI chat completions.
type OpenAIModel struct {
	client    openai.Client
	modelName string
}

// NewOpenAIModel creates an OpenAI client. Extra request options (for example
// option.WithBaseURL for a compatible gateway) are passed through.
func NewOpenAIModel(apiKey, modelName string, opts ...option.RequestOption) (*OpenAIModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)...)
	return &OpenAIModel{client: client, modelName: modelName}, nil
}

// Name returns the model name.
func (o *OpenAIModel) Name() string { return o.modelName }

// Generate sends the turns as chat messages and returns the first choice.
func (o *OpenAIModel) Generate(ctx context.Context, turns []conversation.Turn) (string, error) {
	if len(turns) == 0 {
		return "", ErrNoTurns
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.modelName),
		Messages: toOpenAIMessages(turns),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(turns []conversation.Turn) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		if t.Role == conversation.RoleModel {
			messages = append(messages, openai.AssistantMessage(t.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(t.Content))
	}
	return messages
}
