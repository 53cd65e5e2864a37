package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/line_companion_bot/internal/conversation"
	"github.com/lewisedginton/line_companion_bot/internal/intent"
	"github.com/lewisedginton/line_companion_bot/internal/messaging"
	"github.com/lewisedginton/line_companion_bot/internal/mood"
)

// routedModel answers the classification and sentiment prompts with fixed
// codes and everything else with reply.
type routedModel struct {
	code      string
	sentiment string
	reply     string
	err       error
	calls     [][]conversation.Turn
}

func (m *routedModel) Name() string { return "routed" }

func (m *routedModel) Generate(_ context.Context, turns []conversation.Turn) (string, error) {
	m.calls = append(m.calls, turns)
	last := turns[len(turns)-1].Content
	switch {
	case strings.HasPrefix(last, "請判斷"):
		return m.code, nil
	case strings.HasSuffix(last, "只需回答 positive 或 negative."):
		return m.sentiment, nil
	}
	return m.reply, m.err
}

func (m *routedModel) prompts() []string {
	var out []string
	for _, c := range m.calls {
		out = append(out, c[len(c)-1].Content)
	}
	return out
}

type brokenStore struct {
	conversation.Store
	getErr error
	putErr error
	puts   int
}

func (s *brokenStore) Get(ctx context.Context, id string) (conversation.History, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.Store.Get(ctx, id)
}

func (s *brokenStore) Put(ctx context.Context, id string, h conversation.History) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	return s.Store.Put(ctx, id, h)
}

func newDispatcher(t *testing.T, m *routedModel, store conversation.Store, src mood.Source) *Dispatcher {
	t.Helper()
	d, err := New(Config{Model: m, Store: store, Mood: src})
	require.NoError(t, err)
	return d
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{Store: conversation.NewMemoryStore()})
	assert.Error(t, err)
	_, err = New(Config{Model: &routedModel{}})
	assert.Error(t, err)
}

func TestMenuSkipsClassifier(t *testing.T) {
	m := &routedModel{code: "F"}
	store := &brokenStore{Store: conversation.NewMemoryStore()}
	d := newDispatcher(t, m, store, nil)

	reply, err := d.Respond(context.Background(), "U1", MenuTrigger)
	require.NoError(t, err)
	assert.Empty(t, m.calls)
	assert.Zero(t, store.puts)

	assert.Equal(t, "我能怎麼幫您呢？", reply.Text)
	require.Len(t, reply.QuickActions, 5)
	assert.Equal(t, messaging.QuickAction{Label: "情緒日記", Kind: messaging.ActionURI, URI: "https://liff.line.me/2005781692-mkwZ19g6"}, reply.QuickActions[0])
	assert.Equal(t, messaging.QuickAction{Label: "認識情緒", Kind: messaging.ActionURI, URI: "https://liff.line.me/2005781692-JVRmrwoZ"}, reply.QuickActions[1])
	assert.Equal(t, messaging.QuickAction{Label: "每日精選書籍", Kind: messaging.ActionMessage, Text: "每日推薦書籍"}, reply.QuickActions[2])
	assert.Equal(t, messaging.QuickAction{Label: "故事分享", Kind: messaging.ActionMessage, Text: "故事分享"}, reply.QuickActions[3])
	assert.Equal(t, messaging.QuickAction{Label: "非暴力溝通", Kind: messaging.ActionMessage, Text: "非暴力溝通"}, reply.QuickActions[4])
}

func TestFixedContent(t *testing.T) {
	tests := []struct {
		code string
		text string
		want string
	}{
		{"C", "故事分享", StoryStartText + "\n如果你是蘇珊你會怎麼做呢？"},
		{"D", "故事後續", StoryEndText},
		{"E", "非暴力溝通", "非暴力溝通\n1. 發生什麼事了？跟我分享可以嗎？\n2. 跟我說說你的感受\n3. 提出請求，怎麼樣能夠真正幫助你呢？"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			m := &routedModel{code: tt.code}
			store := &brokenStore{Store: conversation.NewMemoryStore()}
			d := newDispatcher(t, m, store, nil)

			reply, err := d.Respond(context.Background(), "U1", tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply.Text)
			assert.Empty(t, reply.QuickActions)
			assert.Len(t, m.calls, 1, "only the classifier is consulted")
			assert.Zero(t, store.puts)
		})
	}

	assert.True(t, strings.HasPrefix(StoryStartText, "當蘇珊與阿俊第一次相遇時"))
	assert.True(t, strings.HasSuffix(StoryEndText, "愛情才能夠長久地走下去。"))
}

func TestBookRecommendation(t *testing.T) {
	m := &routedModel{code: "B", reply: "《被討厭的勇氣》"}
	d := newDispatcher(t, m, conversation.NewMemoryStore(), mood.Static("有點焦慮"))

	reply, err := d.Respond(context.Background(), "U1", "每日推薦書籍")
	require.NoError(t, err)
	assert.Equal(t, "《被討厭的勇氣》", reply.Text)

	prompts := m.prompts()
	require.Len(t, prompts, 2)
	assert.Equal(t, "請幫我推薦一本書就好，符合我今天的心情：有點焦慮，只要書名以及介紹文字，請不要回傳特殊符號", prompts[1])
	assert.Len(t, m.calls[1], 1, "book prompt carries no history")
}

func TestBookRecommendationWithoutMood(t *testing.T) {
	m := &routedModel{code: "B", reply: "書"}
	d := newDispatcher(t, m, conversation.NewMemoryStore(), nil)

	_, err := d.Respond(context.Background(), "U1", "每日推薦書籍")
	require.NoError(t, err)
	assert.Equal(t, bookPrompt(""), m.prompts()[1])
}

type failingMood struct{}

func (failingMood) Current(context.Context) (string, error) { return "", errors.New("s3 down") }

func TestBookRecommendationMoodFailure(t *testing.T) {
	m := &routedModel{code: "B"}
	d := newDispatcher(t, m, conversation.NewMemoryStore(), failingMood{})

	_, err := d.Respond(context.Background(), "U1", "每日推薦書籍")
	assert.Error(t, err)
	assert.Len(t, m.calls, 1)
}

func TestSentimentChat(t *testing.T) {
	tests := []struct {
		name       string
		sentiment  string
		want       string
		wantPrompt string
	}{
		{"positive", "positive", "太好了", "以下是用戶的回覆：'今天很棒'。"},
		{"negative", "Negative\n", "太好了", "以下是用戶的回覆：'今天很棒'。請將句中負面、有爭議的詞彙替換成較委婉的詞彙。"},
		{"undecided", "neutral", "無法判斷你的回覆。", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &routedModel{code: "F", sentiment: tt.sentiment, reply: "太好了"}
			store := &brokenStore{Store: conversation.NewMemoryStore()}
			d := newDispatcher(t, m, store, nil)

			reply, err := d.Respond(context.Background(), "U1", "今天很棒")
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply.Text)
			assert.Zero(t, store.puts)

			prompts := m.prompts()
			assert.Equal(t, intent.SentimentPrompt("今天很棒"), prompts[1])
			if tt.wantPrompt == "" {
				assert.Len(t, prompts, 2)
				return
			}
			require.Len(t, prompts, 3)
			assert.Equal(t, tt.wantPrompt, prompts[2])
		})
	}
}

func TestGenericChat(t *testing.T) {
	for _, code := range []string{"Z", "A", "The answer is B"} {
		t.Run(code, func(t *testing.T) {
			ctx := context.Background()
			store := conversation.NewMemoryStore()
			prior := conversation.History{conversation.UserTurn("嗨"), conversation.ModelTurn("你好")}
			require.NoError(t, store.Put(ctx, "G1", prior))

			m := &routedModel{code: code, reply: "我在這裡陪你"}
			d := newDispatcher(t, m, store, nil)

			reply, err := d.Respond(ctx, "G1", "我想聊聊")
			require.NoError(t, err)
			assert.Equal(t, "我在這裡陪你", reply.Text)

			require.Len(t, m.calls, 2)
			want := prior.Append(conversation.UserTurn("我想聊聊"))
			assert.Equal(t, []conversation.Turn(want), m.calls[1])

			saved, err := store.Get(ctx, "G1")
			require.NoError(t, err)
			assert.Equal(t, want.Append(conversation.ModelTurn("我在這裡陪你")), saved)
		})
	}
}

func TestFailures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("history load", func(t *testing.T) {
		m := &routedModel{code: "F"}
		d := newDispatcher(t, m, &brokenStore{Store: conversation.NewMemoryStore(), getErr: boom}, nil)
		_, err := d.Respond(context.Background(), "U1", "嗨")
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, m.calls)
	})

	t.Run("chat model", func(t *testing.T) {
		store := &brokenStore{Store: conversation.NewMemoryStore()}
		d := newDispatcher(t, &routedModel{code: "Z", err: boom}, store, nil)
		_, err := d.Respond(context.Background(), "U1", "嗨")
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, store.puts, "nothing is written when the model fails")
	})

	t.Run("history save", func(t *testing.T) {
		store := &brokenStore{Store: conversation.NewMemoryStore(), putErr: boom}
		d := newDispatcher(t, &routedModel{code: "Z", reply: "ok"}, store, nil)
		_, err := d.Respond(context.Background(), "U1", "嗨")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("positive reply model", func(t *testing.T) {
		d := newDispatcher(t, &routedModel{code: "F", sentiment: "positive", err: boom}, conversation.NewMemoryStore(), nil)
		_, err := d.Respond(context.Background(), "U1", "嗨")
		assert.ErrorIs(t, err, boom)
	})
}

type erroringClassifier struct{ err error }

func (c erroringClassifier) Classify(context.Context, string) (intent.Intent, error) {
	return intent.Unknown, c.err
}

func (c erroringClassifier) ClassifySentiment(context.Context, string) (intent.Sentiment, error) {
	return intent.SentimentUnknown, c.err
}

func TestClassifierFailure(t *testing.T) {
	boom := errors.New("quota")
	d, err := New(Config{Model: &routedModel{}, Store: conversation.NewMemoryStore(), Classifier: erroringClassifier{err: boom}})
	require.NoError(t, err)

	_, err = d.Respond(context.Background(), "U1", "嗨")
	assert.ErrorIs(t, err, boom)
}
