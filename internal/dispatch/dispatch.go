// Package dispatch turns one user message into one reply: fixed content for
// the menu, story and guide, model-generated text for books and chat.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/lewisedginton/line_companion_bot/internal/conversation"
	"github.com/lewisedginton/line_companion_bot/internal/intent"
	"github.com/lewisedginton/line_companion_bot/internal/llm"
	"github.com/lewisedginton/line_companion_bot/internal/messaging"
	"github.com/lewisedginton/line_companion_bot/internal/mood"
	"github.com/lewisedginton/line_companion_bot/pkg/logger"
	"github.com/lewisedginton/line_companion_bot/pkg/metrics"
)

// Classifier decides the intent of a message and the polarity of chat text.
type Classifier interface {
	Classify(ctx context.Context, text string) (intent.Intent, error)
	ClassifySentiment(ctx context.Context, text string) (intent.Sentiment, error)
}

// Config holds the dispatcher's collaborators. Model and Store are required.
type Config struct {
	Model      llm.Model
	Classifier Classifier // defaults to intent.NewClassifier(Model, DefaultCatalog())
	Store      conversation.Store
	Mood       mood.Source // defaults to an empty mood
	Logger     logger.Logger
	Metrics    *metrics.Metrics
}

// Dispatcher answers messages for any conversation. It holds no per-user
// state; history lives in the store.
type Dispatcher struct {
	model      llm.Model
	classifier Classifier
	store      conversation.Store
	mood       mood.Source
	log        logger.Logger
	metrics    *metrics.Metrics
}

// New validates cfg and fills in defaults.
func New(cfg Config) (*Dispatcher, error) {
	if cfg.Model == nil {
		return nil, errors.New("dispatch: model is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("dispatch: store is required")
	}
	if cfg.Classifier == nil {
		cfg.Classifier = intent.NewClassifier(cfg.Model, intent.DefaultCatalog())
	}
	if cfg.Mood == nil {
		cfg.Mood = mood.Static("")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNopLogger()
	}
	return &Dispatcher{
		model:      cfg.Model,
		classifier: cfg.Classifier,
		store:      cfg.Store,
		mood:       cfg.Mood,
		log:        cfg.Logger,
		metrics:    cfg.Metrics,
	}, nil
}

// Respond produces the reply for text sent in conversationID. History is
// loaded once up front and only the generic chat branch writes it back.
func (d *Dispatcher) Respond(ctx context.Context, conversationID, text string) (messaging.Reply, error) {
	log := logger.GetLoggerFromContext(ctx, d.log).WithFields(logger.StringField("conversation_id", conversationID))

	history, err := d.store.Get(ctx, conversationID)
	if err != nil {
		return messaging.Reply{}, fmt.Errorf("load history: %w", err)
	}

	if text == MenuTrigger {
		d.metrics.ObserveIntent(intent.Menu.String())
		return MenuReply(), nil
	}

	in, err := d.classifier.Classify(ctx, text)
	if err != nil {
		return messaging.Reply{}, err
	}
	d.metrics.ObserveIntent(in.String())
	log.Debug("Classified message", logger.StringField("intent", in.String()))

	switch in {
	case intent.BookRecommendation:
		return d.recommendBook(ctx)
	case intent.StoryStart:
		return messaging.TextReply(StoryStartText + StoryQuestion), nil
	case intent.StoryContinuation:
		return messaging.TextReply(StoryEndText), nil
	case intent.CommunicationGuide:
		return messaging.TextReply(GuideText), nil
	case intent.SentimentChat:
		return d.sentimentChat(ctx, log, text)
	default:
		// Menu here means the model answered A for text other than the
		// trigger; it is treated like any unrecognised message.
		return d.chat(ctx, conversationID, history, text)
	}
}

func (d *Dispatcher) recommendBook(ctx context.Context) (messaging.Reply, error) {
	current, err := d.mood.Current(ctx)
	if err != nil {
		return messaging.Reply{}, err
	}
	out, err := llm.Ask(ctx, d.model, bookPrompt(current))
	if err != nil {
		return messaging.Reply{}, fmt.Errorf("recommend book: %w", err)
	}
	return messaging.TextReply(out), nil
}

func (d *Dispatcher) sentimentChat(ctx context.Context, log logger.Logger, text string) (messaging.Reply, error) {
	s, err := d.classifier.ClassifySentiment(ctx, text)
	if err != nil {
		return messaging.Reply{}, err
	}

	var prompt string
	switch s {
	case intent.Positive:
		prompt = positivePrompt(text)
	case intent.Negative:
		prompt = negativePrompt(text)
	default:
		log.Info("Sentiment undecided")
		return messaging.TextReply(UndecidedText), nil
	}

	out, err := llm.Ask(ctx, d.model, prompt)
	if err != nil {
		return messaging.Reply{}, fmt.Errorf("%s reply: %w", s, err)
	}
	return messaging.TextReply(out), nil
}

func (d *Dispatcher) chat(ctx context.Context, conversationID string, history conversation.History, text string) (messaging.Reply, error) {
	history = history.Append(conversation.UserTurn(text))

	out, err := d.model.Generate(ctx, history)
	if err != nil {
		return messaging.Reply{}, fmt.Errorf("chat: %w", err)
	}

	history = history.Append(conversation.ModelTurn(out))
	if err := d.store.Put(ctx, conversationID, history); err != nil {
		return messaging.Reply{}, fmt.Errorf("save history: %w", err)
	}
	return messaging.TextReply(out), nil
}
