// Package intent maps free-form user text onto the bot's closed set of
// intents by asking a language model to pick a one-letter code.
package intent

import (
	"strings"
)

// Intent is the classified category of an inbound message.
type Intent int

const (
	// Unknown covers any classifier output that is not a known code.
	Unknown Intent = iota
	Menu
	BookRecommendation
	StoryStart
	StoryContinuation
	CommunicationGuide
	SentimentChat
)

func (i Intent) String() string {
	switch i {
	case Menu:
		return "menu"
	case BookRecommendation:
		return "book_recommendation"
	case StoryStart:
		return "story_start"
	case StoryContinuation:
		return "story_continuation"
	case CommunicationGuide:
		return "communication_guide"
	case SentimentChat:
		return "sentiment_chat"
	default:
		return "unknown"
	}
}

// Entry pairs the phrase shown to the model with the code it should answer.
type Entry struct {
	Phrase string
	Code   string
	Intent Intent
}

// Catalog is the ordered list of intents offered to the classifier.
type Catalog []Entry

// DefaultCatalog returns the six intents in the order the prompt lists them.
func DefaultCatalog() Catalog {
	return Catalog{
		{Phrase: "功能選單", Code: "A", Intent: Menu},
		{Phrase: "每日推薦書籍", Code: "B", Intent: BookRecommendation},
		{Phrase: "故事分享", Code: "C", Intent: StoryStart},
		{Phrase: "故事後續", Code: "D", Intent: StoryContinuation},
		{Phrase: "非暴力溝通", Code: "E", Intent: CommunicationGuide},
		{Phrase: "聊天", Code: "F", Intent: SentimentChat},
	}
}

// String renders the catalog as {'功能選單': 'A', ...}, the form the model has
// been prompted with historically.
func (c Catalog) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range c {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("'" + e.Phrase + "': '" + e.Code + "'")
	}
	sb.WriteByte('}')
	return sb.String()
}

// Lookup maps a normalised code back to its intent.
func (c Catalog) Lookup(code string) Intent {
	for _, e := range c {
		if e.Code == code {
			return e.Intent
		}
	}
	return Unknown
}

// lettersOnly keeps ASCII letters and drops everything else, including
// whitespace, punctuation and non-Latin text.
func lettersOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Parse normalises raw model output and looks it up. Only an exact single
// code survives; verbose answers such as "The answer is B" are Unknown rather
// than guessed at.
func (c Catalog) Parse(raw string) Intent {
	return c.Lookup(strings.ToUpper(lettersOnly(raw)))
}

// ParseLabel parses raw model output against the default catalog.
func ParseLabel(raw string) Intent {
	return DefaultCatalog().Parse(raw)
}

// Sentiment is the polarity the model assigns to a chat message.
type Sentiment int

const (
	SentimentUnknown Sentiment = iota
	Positive
	Negative
)

func (s Sentiment) String() string {
	switch s {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "unknown"
	}
}

// ParseSentiment lowercases the letters of raw and accepts exactly
// "positive" or "negative".
func ParseSentiment(raw string) Sentiment {
	switch strings.ToLower(lettersOnly(raw)) {
	case "positive":
		return Positive
	case "negative":
		return Negative
	default:
		return SentimentUnknown
	}
}
