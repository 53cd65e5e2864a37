// Package llm adapts generative-language backends (Gemini, OpenAI, Claude) to
// one small interface: take a turn history, return the generated text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lewisedginton/line_companion_bot/internal/conversation"
)

// Model generates a reply for the given turns. Implementations are stateless
// per call and safe for concurrent use.
type Model interface {
	Name() string
	Generate(ctx context.Context, turns []conversation.Turn) (string, error)
}

// Ask sends a single user prompt.
func Ask(ctx context.Context, m Model, prompt string) (string, error) {
	return m.Generate(ctx, []conversation.Turn{conversation.UserTurn(prompt)})
}

// ErrTimeout matches model calls that ran past their deadline.
var ErrTimeout = errors.New("model call timeout")

// ErrNoTurns is returned when Generate is called with nothing to send.
var ErrNoTurns = errors.New("no turns to send")

// Error describes a failed model call.
type Error struct {
	Model string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("model %s: %v", e.Model, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTimeout) match deadline overruns.
func (e *Error) Is(target error) bool {
	return target == ErrTimeout && errors.Is(e.Err, context.DeadlineExceeded)
}

// Observer receives the duration and outcome of each call.
type Observer func(dependency string, took time.Duration, err error)

type guarded struct {
	next    Model
	timeout time.Duration
	observe Observer
}

// Guard bounds every call on m with timeout, reports it to observe and wraps
// failures in *Error. There are no retries. A non-positive timeout leaves
// calls unbounded; observe may be nil.
func Guard(m Model, timeout time.Duration, observe Observer) Model {
	return &guarded{next: m, timeout: timeout, observe: observe}
}

func (g *guarded) Name() string { return g.next.Name() }

func (g *guarded) Generate(ctx context.Context, turns []conversation.Turn) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.next.Generate(ctx, turns)
	if err == nil && ctx.Err() != nil {
		// Some SDKs return a partial body instead of the context error.
		err = ctx.Err()
	}
	if g.observe != nil {
		g.observe("llm", time.Since(start), err)
	}
	if err != nil {
		return "", &Error{Model: g.next.Name(), Err: err}
	}
	return text, nil
}
