package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lewisedginton/line_companion_bot/internal/conversation"
)

// DefaultClaudeModel is used when no model name is configured.
const DefaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

const claudeMaxTokens = 2048

// ClaudeModel calls the Anthropic messages API.
type ClaudeModel struct {
	client    anthropic.Client
	modelName string
}

// NewClaudeModel creates an Anthropic client.
func NewClaudeModel(apiKey, modelName string, opts ...option.RequestOption) (*ClaudeModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if modelName == "" {
		modelName = DefaultClaudeModel
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)...)
	return &ClaudeModel{client: client, modelName: modelName}, nil
}

// Name returns the model name.
func (c *ClaudeModel) Name() string { return c.modelName }

// Generate sends the turns as messages and concatenates the text blocks of the reply.
func (c *ClaudeModel) Generate(ctx context.Context, turns []conversation.Turn) (string, error) {
	messages := toClaudeMessages(turns)
	if len(messages) == 0 {
		return "", ErrNoTurns
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: claudeMaxTokens,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// toClaudeMessages merges consecutive same-role turns, since the messages API
// requires strict user/assistant alternation, and drops a leading model turn.
func toClaudeMessages(turns []conversation.Turn) []anthropic.MessageParam {
	type merged struct {
		role conversation.Role
		text []string
	}
	var groups []merged
	for _, t := range turns {
		role := conversation.RoleUser
		if t.Role == conversation.RoleModel {
			role = conversation.RoleModel
		}
		if len(groups) == 0 && role == conversation.RoleModel {
			continue
		}
		if n := len(groups); n > 0 && groups[n-1].role == role {
			groups[n-1].text = append(groups[n-1].text, t.Content)
			continue
		}
		groups = append(groups, merged{role: role, text: []string{t.Content}})
	}

	messages := make([]anthropic.MessageParam, 0, len(groups))
	for _, g := range groups {
		block := anthropic.NewTextBlock(strings.Join(g.text, "\n"))
		if g.role == conversation.RoleModel {
			messages = append(messages, anthropic.NewAssistantMessage(block))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(block))
	}
	return messages
}
