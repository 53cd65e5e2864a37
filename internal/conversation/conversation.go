// Package conversation stores per-conversation chat history. A history is the
// ordered list of user and model turns exchanged in one LINE chat, keyed by
// the group id for group chats and the user id otherwise.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Role tags who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    Role
	Content string
}

// UserTurn and ModelTurn are shorthands used by the dispatcher and tests.
func UserTurn(content string) Turn  { return Turn{Role: RoleUser, Content: content} }
func ModelTurn(content string) Turn { return Turn{Role: RoleModel, Content: content} }

// History is a chronologically ordered list of turns.
type History []Turn

// Append returns a new history with turns added at the end. The receiver is
// never modified, so callers can keep the loaded history around.
func (h History) Append(turns ...Turn) History {
	out := make(History, 0, len(h)+len(turns))
	out = append(out, h...)
	return append(out, turns...)
}

// Store loads and saves histories.
type Store interface {
	// Get returns the stored history. A conversation that has never been
	// saved yields an empty history and no error.
	Get(ctx context.Context, id string) (History, error)
	// Put replaces the stored history.
	Put(ctx context.Context, id string, history History) error
}

// wireTurn is the persisted document shape shared by the Firebase, Redis and
// file backends: [{"role":"user","parts":["..."]}].
type wireTurn struct {
	Role  Role     `json:"role"`
	Parts []string `json:"parts"`
}

func toWire(h History) []wireTurn {
	out := make([]wireTurn, len(h))
	for i, t := range h {
		out[i] = wireTurn{Role: t.Role, Parts: []string{t.Content}}
	}
	return out
}

func fromWire(w []wireTurn) History {
	out := make(History, 0, len(w))
	for _, t := range w {
		out = append(out, Turn{Role: t.Role, Content: strings.Join(t.Parts, "")})
	}
	return out
}

// MarshalHistory encodes a history in the persisted document shape.
func MarshalHistory(h History) ([]byte, error) {
	return json.Marshal(toWire(h))
}

// UnmarshalHistory decodes the persisted document shape. Empty input and a JSON
// null both decode to an empty history.
func UnmarshalHistory(data []byte) (History, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return History{}, nil
	}
	var w []wireTurn
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return fromWire(w), nil
}
