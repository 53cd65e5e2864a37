package intent

import (
	"context"
	"fmt"

	"github.com/lewisedginton/line_companion_bot/internal/llm"
)

// Classifier asks a model which catalog entry a message belongs to.
type Classifier struct {
	model   llm.Model
	catalog Catalog
}

// NewClassifier creates a classifier. An empty catalog uses DefaultCatalog.
func NewClassifier(model llm.Model, catalog Catalog) *Classifier {
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	return &Classifier{model: model, catalog: catalog}
}

// ClassificationPrompt is the single prompt sent for text.
func ClassificationPrompt(text string, catalog Catalog) string {
	return fmt.Sprintf("請判斷 %s 裡面的文字屬於 %s 裡面的哪一項？符合條件請回傳對應的英文文字就好，不要有其他的文字與字元。如果只輸入情緒兩個字，請忽略這則訊息",
		text, catalog)
}

// Classify makes exactly one model call. Output that does not parse to a code
// is Unknown, not an error; only the model call itself can fail.
func (c *Classifier) Classify(ctx context.Context, text string) (Intent, error) {
	raw, err := llm.Ask(ctx, c.model, ClassificationPrompt(text, c.catalog))
	if err != nil {
		return Unknown, fmt.Errorf("classify: %w", err)
	}
	return c.catalog.Parse(raw), nil
}

// SentimentPrompt asks the model for the polarity of text.
func SentimentPrompt(text string) string {
	return fmt.Sprintf("以下是用戶的回覆：'%s'。請判斷這是正面還是負面的回覆。只需回答 positive 或 negative.", text)
}

// ClassifySentiment makes one model call and parses its answer.
func (c *Classifier) ClassifySentiment(ctx context.Context, text string) (Sentiment, error) {
	raw, err := llm.Ask(ctx, c.model, SentimentPrompt(text))
	if err != nil {
		return SentimentUnknown, fmt.Errorf("classify sentiment: %w", err)
	}
	return ParseSentiment(raw), nil
}
