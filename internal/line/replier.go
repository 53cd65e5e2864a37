package line

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/lewisedginton/line_companion_bot/internal/messaging"
)

// Replier sends replies through the Messaging API reply endpoint.
type Replier struct {
	api *messaging_api.MessagingApiAPI
}

// NewClient creates a Messaging API client for the channel access token.
func NewClient(channelToken string, opts ...messaging_api.MessagingApiAPIOption) (*messaging_api.MessagingApiAPI, error) {
	api, err := messaging_api.NewMessagingApiAPI(channelToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("create messaging api client: %w", err)
	}
	return api, nil
}

// NewReplier wraps an existing client.
func NewReplier(api *messaging_api.MessagingApiAPI) *Replier {
	return &Replier{api: api}
}

// Reply sends exactly one text message for replyToken.
func (r *Replier) Reply(ctx context.Context, replyToken string, reply messaging.Reply) error {
	_, err := r.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   []messaging_api.MessageInterface{toTextMessage(reply)},
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

func toTextMessage(reply messaging.Reply) *messaging_api.TextMessage {
	msg := &messaging_api.TextMessage{Text: reply.Text}
	if len(reply.QuickActions) == 0 {
		return msg
	}

	items := make([]messaging_api.QuickReplyItem, 0, len(reply.QuickActions))
	for _, a := range reply.QuickActions {
		items = append(items, messaging_api.QuickReplyItem{Type: "action", Action: toAction(a)})
	}
	msg.QuickReply = &messaging_api.QuickReply{Items: items}
	return msg
}

func toAction(a messaging.QuickAction) messaging_api.ActionInterface {
	if a.Kind == messaging.ActionURI {
		return &messaging_api.UriAction{Label: a.Label, Uri: a.URI}
	}
	return &messaging_api.MessageAction{Label: a.Label, Text: a.Text}
}
