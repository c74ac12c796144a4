// Package nlp provides the natural-language collaborators used by the
// transcript analyzer: text summarization and sentiment classification.
// The interfaces are deliberately narrow so the analyzer can be tested
// with in-memory doubles.
package nlp

import (
	"context"
	"errors"

	"github.com/tickerlens/tickerlens/pkg/models"
)

// Common errors returned by NLP backends.
var (
	ErrNoResult     = errors.New("nlp: model returned no result")
	ErrModelLoading = errors.New("nlp: model is still loading")
)

// Summarizer condenses text into a bounded-length summary.
type Summarizer interface {
	// Summarize returns a shortened version of text with a length
	// between minLen and maxLen tokens.
	Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error)
}

// Classifier assigns a sentiment label with a confidence score to text.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.Sentiment, error)
}
