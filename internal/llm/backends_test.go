package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/lewisedginton/line_companion_bot/internal/conversation"
)

var sampleTurns = []conversation.Turn{
	conversation.UserTurn("你好"),
	conversation.ModelTurn("哈囉"),
	conversation.UserTurn("推薦一本書"),
}

type fakeGenerator struct {
	model    string
	contents []*genai.Content
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	return f.resp, f.err
}

func TestGeminiModel(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText("小王子", genai.RoleModel)}},
	}}
	m := &GeminiModel{models: gen, modelName: DefaultGeminiModel}

	got, err := m.Generate(context.Background(), sampleTurns)
	require.NoError(t, err)
	assert.Equal(t, "小王子", got)
	assert.Equal(t, "gemini-1.5-pro", gen.model)

	require.Len(t, gen.contents, 3)
	assert.Equal(t, "user", gen.contents[0].Role)
	assert.Equal(t, "model", gen.contents[1].Role)
	assert.Equal(t, "推薦一本書", gen.contents[2].Parts[0].Text)

	t.Run("no candidates", func(t *testing.T) {
		m := &GeminiModel{models: &fakeGenerator{resp: &genai.GenerateContentResponse{}}, modelName: "g"}
		_, err := m.Generate(context.Background(), sampleTurns)
		assert.Error(t, err)
	})

	t.Run("api error", func(t *testing.T) {
		m := &GeminiModel{models: &fakeGenerator{err: errors.New("429")}, modelName: "g"}
		_, err := m.Generate(context.Background(), sampleTurns)
		assert.Error(t, err)
	})

	t.Run("no turns", func(t *testing.T) {
		_, err := m.Generate(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNoTurns)
	})
}

func TestNewGeminiModelRequiresCredentials(t *testing.T) {
	_, err := NewGeminiModel(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}

func TestToOpenAIMessages(t *testing.T) {
	msgs := toOpenAIMessages(sampleTurns)
	require.Len(t, msgs, 3)
	assert.NotNil(t, msgs[0].OfUser)
	assert.NotNil(t, msgs[1].OfAssistant)
	assert.NotNil(t, msgs[2].OfUser)
}

func TestOpenAIModel(t *testing.T) {
	var request struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":0,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"好的"}}]}`))
	}))
	defer server.Close()

	m, err := NewOpenAIModel("sk-test", "", openaioption.WithBaseURL(server.URL+"/"))
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenAIModel, m.Name())

	got, err := m.Generate(context.Background(), sampleTurns)
	require.NoError(t, err)
	assert.Equal(t, "好的", got)

	assert.Equal(t, "gpt-4o", request.Model)
	require.Len(t, request.Messages, 3)
	assert.Equal(t, "user", request.Messages[0].Role)
	assert.Equal(t, "assistant", request.Messages[1].Role)
	assert.Equal(t, "推薦一本書", request.Messages[2].Content)
}

func TestOpenAIModelErrors(t *testing.T) {
	_, err := NewOpenAIModel("", "gpt-4o")
	assert.Error(t, err)

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	m, err := NewOpenAIModel("sk-test", "gpt-4o", openaioption.WithBaseURL(server.URL+"/"))
	require.NoError(t, err)
	_, err = m.Generate(context.Background(), sampleTurns)
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "requests must not be retried")
}

func TestToClaudeMessages(t *testing.T) {
	tests := []struct {
		name  string
		turns []conversation.Turn
		roles []anthropic.MessageParamRole
	}{
		{
			name:  "alternating",
			turns: sampleTurns,
			roles: []anthropic.MessageParamRole{anthropic.MessageParamRoleUser, anthropic.MessageParamRoleAssistant, anthropic.MessageParamRoleUser},
		},
		{
			name:  "consecutive user turns merged",
			turns: []conversation.Turn{conversation.UserTurn("a"), conversation.UserTurn("b")},
			roles: []anthropic.MessageParamRole{anthropic.MessageParamRoleUser},
		},
		{
			name:  "leading model turn dropped",
			turns: []conversation.Turn{conversation.ModelTurn("a"), conversation.UserTurn("b")},
			roles: []anthropic.MessageParamRole{anthropic.MessageParamRoleUser},
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := toClaudeMessages(tt.turns)
			require.Len(t, msgs, len(tt.roles))
			for i, role := range tt.roles {
				assert.Equal(t, role, msgs[i].Role)
			}
		})
	}

	merged := toClaudeMessages([]conversation.Turn{conversation.UserTurn("a"), conversation.UserTurn("b")})
	assert.Equal(t, "a\nb", merged[0].Content[0].OfText.Text)
}

func TestClaudeModel(t *testing.T) {
	var request struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5",
			"content":[{"type":"text","text":"沒問題"}],"stop_reason":"end_turn",
			"usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer server.Close()

	m, err := NewClaudeModel("sk-ant", "claude-sonnet-4-5", anthropicoption.WithBaseURL(server.URL+"/"))
	require.NoError(t, err)

	got, err := m.Generate(context.Background(), sampleTurns)
	require.NoError(t, err)
	assert.Equal(t, "沒問題", got)
	assert.Equal(t, "claude-sonnet-4-5", request.Model)
	assert.Equal(t, claudeMaxTokens, request.MaxTokens)
	assert.Len(t, request.Messages, 3)

	_, err = m.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoTurns)

	_, err = NewClaudeModel("", "")
	assert.Error(t, err)
}
