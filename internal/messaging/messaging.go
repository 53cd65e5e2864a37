// Package messaging holds the platform-neutral shapes exchanged between the
// webhook handler, the reply dispatcher and the LINE adapter.
package messaging

import "errors"

// ErrInvalidSignature is returned by parsers when the request signature does
// not match the channel secret.
var ErrInvalidSignature = errors.New("invalid signature")

// EventType distinguishes text messages from everything else the platform sends.
type EventType int

const (
	// EventOther covers follows, postbacks, stickers, images and so on.
	EventOther EventType = iota
	// EventText is a message event carrying text content.
	EventText
)

func (t EventType) String() string {
	if t == EventText {
		return "text"
	}
	return "other"
}

// SourceType is where an event originated.
type SourceType string

const (
	SourceUser  SourceType = "user"
	SourceGroup SourceType = "group"
	SourceRoom  SourceType = "room"
)

// Event is one decoded webhook event.
type Event struct {
	Type       EventType
	ReplyToken string
	SourceType SourceType
	UserID     string
	GroupID    string
	Text       string
}

// ConversationID returns the key under which history for this event is stored:
// the group id for group events, the user id otherwise.
func (e Event) ConversationID() string {
	if e.SourceType == SourceGroup && e.GroupID != "" {
		return e.GroupID
	}
	return e.UserID
}

// ActionKind is what a quick action does when tapped.
type ActionKind int

const (
	// ActionMessage sends Text back as if the user typed it.
	ActionMessage ActionKind = iota
	// ActionURI opens URI.
	ActionURI
)

// QuickAction is a button rendered below a reply.
type QuickAction struct {
	Label string
	Kind  ActionKind
	Text  string
	URI   string
}

// MessageAction builds a quick action that re-submits text.
func MessageAction(label, text string) QuickAction {
	return QuickAction{Label: label, Kind: ActionMessage, Text: text}
}

// URIAction builds a quick action that opens a URL.
func URIAction(label, uri string) QuickAction {
	return QuickAction{Label: label, Kind: ActionURI, URI: uri}
}

// Reply is a text message with optional quick actions.
type Reply struct {
	Text         string
	QuickActions []QuickAction
}

// TextReply builds a plain text reply.
func TextReply(text string) Reply {
	return Reply{Text: text}
}
