// Package webhook serves the LINE callback endpoint.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lewisedginton/line_companion_bot/internal/messaging"
	"github.com/lewisedginton/line_companion_bot/pkg/logger"
	"github.com/lewisedginton/line_companion_bot/pkg/metrics"
)

// EventParser verifies and decodes a callback request.
type EventParser interface {
	Parse(r *http.Request) ([]messaging.Event, error)
}

// Responder produces the reply for one text message.
type Responder interface {
	Respond(ctx context.Context, conversationID, text string) (messaging.Reply, error)
}

// Replier delivers a reply against a reply token.
type Replier interface {
	Reply(ctx context.Context, replyToken string, reply messaging.Reply) error
}

// Config wires the handler. Parser, Responder and Replier are required.
type Config struct {
	Parser       EventParser
	Responder    Responder
	Replier      Replier
	Logger       logger.Logger
	Metrics      *metrics.Metrics
	ReplyTimeout time.Duration
}

// Handler is the http.Handler for POST /webhooks/line.
type Handler struct {
	parser       EventParser
	responder    Responder
	replier      Replier
	log          logger.Logger
	metrics      *metrics.Metrics
	replyTimeout time.Duration
}

// New creates a Handler.
func New(cfg Config) (*Handler, error) {
	if cfg.Parser == nil || cfg.Responder == nil || cfg.Replier == nil {
		return nil, errors.New("webhook: parser, responder and replier are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNopLogger()
	}
	return &Handler{
		parser:       cfg.Parser,
		responder:    cfg.Responder,
		replier:      cfg.Replier,
		log:          cfg.Logger,
		metrics:      cfg.Metrics,
		replyTimeout: cfg.ReplyTimeout,
	}, nil
}

// ServeHTTP processes the events of one callback in order. The first
// failure aborts the remaining events and the request answers 500; writes
// already made to the store are not undone.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLoggerFromContext(r.Context(), h.log)

	events, err := h.parser.Parse(r)
	if err != nil {
		h.metrics.ObserveFailure("parse")
		if errors.Is(err, messaging.ErrInvalidSignature) {
			log.Warn("Rejected callback with invalid signature")
			writeText(w, http.StatusBadRequest, "Invalid signature")
			return
		}
		log.Warn("Rejected malformed callback", logger.ErrorField(err))
		writeText(w, http.StatusBadRequest, "Bad request")
		return
	}

	for i, event := range events {
		h.metrics.ObserveEvent(event.Type.String())
		if event.Type != messaging.EventText {
			log.Debug("Skipping non-text event", logger.IntField("index", i))
			continue
		}
		if err := h.handleText(r.Context(), event); err != nil {
			log.Error("Failed to handle event",
				logger.IntField("index", i),
				logger.IntField("remaining", len(events)-i-1),
				logger.StringField("conversation_id", event.ConversationID()),
				logger.ErrorField(err))
			writeText(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	writeText(w, http.StatusOK, "OK")
}

func (h *Handler) handleText(ctx context.Context, event messaging.Event) error {
	reply, err := h.responder.Respond(ctx, event.ConversationID(), event.Text)
	if err != nil {
		h.metrics.ObserveFailure("respond")
		return fmt.Errorf("respond: %w", err)
	}

	if h.replyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.replyTimeout)
		defer cancel()
	}

	start := time.Now()
	err = h.replier.Reply(ctx, event.ReplyToken, reply)
	h.metrics.ObserveDependency("line_reply", time.Since(start), err)
	if err != nil {
		h.metrics.ObserveFailure("reply")
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
