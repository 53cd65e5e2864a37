// Package line adapts the LINE Messaging API SDK to the bot's messaging
// types: inbound webhook callbacks become messaging.Events and outbound
// messaging.Replies become reply-API calls.
package line

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/lewisedginton/line_companion_bot/internal/messaging"
)

// Parser verifies and decodes LINE webhook requests.
type Parser struct {
	channelSecret string
}

// NewParser creates a parser that checks signatures against channelSecret.
func NewParser(channelSecret string) *Parser {
	return &Parser{channelSecret: channelSecret}
}

// Parse verifies the X-Line-Signature header and returns the events in the
// order LINE sent them. A signature mismatch is messaging.ErrInvalidSignature.
func (p *Parser) Parse(r *http.Request) ([]messaging.Event, error) {
	cb, err := webhook.ParseRequest(p.channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return nil, messaging.ErrInvalidSignature
		}
		return nil, fmt.Errorf("parse callback: %w", err)
	}

	events := make([]messaging.Event, 0, len(cb.Events))
	for _, e := range cb.Events {
		events = append(events, convertEvent(e))
	}
	return events, nil
}

func convertEvent(e webhook.EventInterface) messaging.Event {
	me, ok := e.(webhook.MessageEvent)
	if !ok {
		return messaging.Event{Type: messaging.EventOther}
	}

	out := messaging.Event{Type: messaging.EventOther, ReplyToken: me.ReplyToken}
	applySource(&out, me.Source)
	if text, ok := me.Message.(webhook.TextMessageContent); ok {
		out.Type = messaging.EventText
		out.Text = text.Text
	}
	return out
}

func applySource(out *messaging.Event, src webhook.SourceInterface) {
	switch s := src.(type) {
	case webhook.UserSource:
		out.SourceType = messaging.SourceUser
		out.UserID = s.UserId
	case webhook.GroupSource:
		out.SourceType = messaging.SourceGroup
		out.GroupID = s.GroupId
		out.UserID = s.UserId
	case webhook.RoomSource:
		out.SourceType = messaging.SourceRoom
		out.UserID = s.UserId
	}
}
