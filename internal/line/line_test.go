package line

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/line_companion_bot/internal/messaging"
)

const testSecret = "channel-secret"

const callbackBody = `{
  "destination": "Ubot",
  "events": [
    {
      "type": "message", "mode": "active", "timestamp": 1700000000000,
      "webhookEventId": "e1", "deliveryContext": {"isRedelivery": false},
      "replyToken": "rt-user",
      "source": {"type": "user", "userId": "U1"},
      "message": {"type": "text", "id": "m1", "quoteToken": "q1", "text": "功能選單"}
    },
    {
      "type": "message", "mode": "active", "timestamp": 1700000000001,
      "webhookEventId": "e2", "deliveryContext": {"isRedelivery": false},
      "replyToken": "rt-group",
      "source": {"type": "group", "groupId": "G1", "userId": "U2"},
      "message": {"type": "text", "id": "m2", "quoteToken": "q2", "text": "故事分享"}
    },
    {
      "type": "message", "mode": "active", "timestamp": 1700000000002,
      "webhookEventId": "e3", "deliveryContext": {"isRedelivery": false},
      "replyToken": "rt-sticker",
      "source": {"type": "room", "roomId": "R1", "userId": "U3"},
      "message": {"type": "sticker", "id": "m3", "quoteToken": "q3", "packageId": "1", "stickerId": "1", "stickerResourceType": "STATIC"}
    },
    {
      "type": "follow", "mode": "active", "timestamp": 1700000000003,
      "webhookEventId": "e4", "deliveryContext": {"isRedelivery": false},
      "replyToken": "rt-follow",
      "source": {"type": "user", "userId": "U4"},
      "follow": {"isUnblocked": false}
    }
  ]
}`

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func signedRequest(body, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/line", bytes.NewBufferString(body))
	req.Header.Set("X-Line-Signature", signature)
	return req
}

func TestParser(t *testing.T) {
	p := NewParser(testSecret)

	events, err := p.Parse(signedRequest(callbackBody, sign(testSecret, []byte(callbackBody))))
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, messaging.Event{
		Type: messaging.EventText, ReplyToken: "rt-user",
		SourceType: messaging.SourceUser, UserID: "U1", Text: "功能選單",
	}, events[0])
	assert.Equal(t, "U1", events[0].ConversationID())

	assert.Equal(t, messaging.EventText, events[1].Type)
	assert.Equal(t, messaging.SourceGroup, events[1].SourceType)
	assert.Equal(t, "G1", events[1].ConversationID())
	assert.Equal(t, "U2", events[1].UserID)

	assert.Equal(t, messaging.EventOther, events[2].Type)
	assert.Equal(t, messaging.SourceRoom, events[2].SourceType)
	assert.Equal(t, "U3", events[2].ConversationID())

	assert.Equal(t, messaging.EventOther, events[3].Type)
}

func TestParserRejectsBadSignature(t *testing.T) {
	p := NewParser(testSecret)

	_, err := p.Parse(signedRequest(callbackBody, sign("other-secret", []byte(callbackBody))))
	assert.ErrorIs(t, err, messaging.ErrInvalidSignature)

	_, err = p.Parse(signedRequest(callbackBody, ""))
	assert.ErrorIs(t, err, messaging.ErrInvalidSignature)
}

func TestParserRejectsMalformedBody(t *testing.T) {
	p := NewParser(testSecret)
	body := `{"events": [`
	_, err := p.Parse(signedRequest(body, sign(testSecret, []byte(body))))
	require.Error(t, err)
	assert.NotErrorIs(t, err, messaging.ErrInvalidSignature)
}

func TestReplier(t *testing.T) {
	var got struct {
		ReplyToken string `json:"replyToken"`
		Messages   []struct {
			Type       string `json:"type"`
			Text       string `json:"text"`
			QuickReply *struct {
				Items []struct {
					Type   string            `json:"type"`
					Action map[string]string `json:"action"`
				} `json:"items"`
			} `json:"quickReply"`
		} `json:"messages"`
	}
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v2/bot/message/reply", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sentMessages":[{"id":"1","quoteToken":"q"}]}`))
	}))
	defer server.Close()

	api, err := NewClient("token", messaging_api.WithEndpoint(server.URL))
	require.NoError(t, err)
	r := NewReplier(api)

	reply := messaging.Reply{
		Text: "我能怎麼幫您呢？",
		QuickActions: []messaging.QuickAction{
			messaging.URIAction("情緒日記", "https://liff.line.me/2005781692-mkwZ19g6"),
			messaging.MessageAction("故事分享", "故事分享"),
		},
	}
	require.NoError(t, r.Reply(context.Background(), "rt-1", reply))
	assert.Equal(t, 1, calls)

	assert.Equal(t, "rt-1", got.ReplyToken)
	require.Len(t, got.Messages, 1)
	msg := got.Messages[0]
	assert.Equal(t, "text", msg.Type)
	assert.Equal(t, "我能怎麼幫您呢？", msg.Text)
	require.NotNil(t, msg.QuickReply)
	require.Len(t, msg.QuickReply.Items, 2)
	assert.Equal(t, "action", msg.QuickReply.Items[0].Type)
	assert.Equal(t, map[string]string{"type": "uri", "label": "情緒日記", "uri": "https://liff.line.me/2005781692-mkwZ19g6"}, msg.QuickReply.Items[0].Action)
	assert.Equal(t, map[string]string{"type": "message", "label": "故事分享", "text": "故事分享"}, msg.QuickReply.Items[1].Action)
}

func TestReplierPlainText(t *testing.T) {
	msg := toTextMessage(messaging.TextReply("hi"))
	assert.Equal(t, "hi", msg.Text)
	assert.Nil(t, msg.QuickReply)
}

func TestReplierFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid reply token"}`))
	}))
	defer server.Close()

	api, err := NewClient("token", messaging_api.WithEndpoint(server.URL))
	require.NoError(t, err)
	assert.Error(t, NewReplier(api).Reply(context.Background(), "rt-1", messaging.TextReply("hi")))
}
