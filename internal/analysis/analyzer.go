package analysis

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/tickerlens/tickerlens/internal/nlp"
	"github.com/tickerlens/tickerlens/pkg/models"
)

// Summary length bounds. Mention context blocks shorter than
// shortContextLimit bypass summarization entirely: the models produce
// degenerate output on very short inputs.
const (
	shortContextLimit = 100

	mentionSummaryMin = 20
	mentionSummaryMax = 120

	mainSummaryMin = 75
	mainSummaryMax = 300
)

// CompanySource provides the tracked-company registry.
type CompanySource interface {
	Companies(ctx context.Context) ([]models.Company, error)
}

// Analyzer turns a raw transcript plus the company registry into a
// per-company sentiment analysis.
type Analyzer struct {
	companies  CompanySource
	summarizer nlp.Summarizer
	classifier nlp.Classifier
	log        *zap.Logger
}

// NewAnalyzer wires the registry and NLP collaborators.
func NewAnalyzer(companies CompanySource, summarizer nlp.Summarizer, classifier nlp.Classifier, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		companies:  companies,
		summarizer: summarizer,
		classifier: classifier,
		log:        log,
	}
}

// Analyze produces the overall summary and per-company mentions for one
// transcript. Failures are contained at the narrowest possible scope: a
// blank transcript or an unreachable registry yields an empty analysis,
// a failed main summary leaves Summary empty, and a failure while
// processing one company never aborts the remaining companies.
func (a *Analyzer) Analyze(ctx context.Context, text string) models.VideoAnalysis {
	if strings.TrimSpace(text) == "" {
		a.log.Warn("skipping analysis, transcript text is empty")
		return models.VideoAnalysis{}
	}

	companies, err := a.companies.Companies(ctx)
	if err != nil {
		a.log.Error("could not fetch target companies", zap.Error(err))
		return models.VideoAnalysis{}
	}

	var summary string
	if s, err := a.summarizer.Summarize(ctx, text, mainSummaryMin, mainSummaryMax); err != nil {
		a.log.Error("main summarization failed", zap.Error(err))
	} else {
		summary = s
	}

	// Segment once; shared across all companies.
	sentences := Segment(text)

	var stocks []models.StockMention
	for _, company := range companies {
		mention, ok := a.scoreCompany(ctx, sentences, company)
		if !ok {
			continue
		}
		stocks = append(stocks, mention)
	}

	return models.VideoAnalysis{Summary: summary, Stocks: stocks}
}

// scoreCompany matches, summarizes, and scores one company. The second
// return value is false when no mention record should be emitted.
func (a *Analyzer) scoreCompany(ctx context.Context, sentences []string, company models.Company) (models.StockMention, bool) {
	mentions, err := FindMentions(sentences, company)
	if err != nil {
		a.log.Error("mention matching failed, skipping stock",
			zap.String("ticker", company.Ticker), zap.Error(err))
		return models.StockMention{}, false
	}
	if len(mentions) == 0 {
		return models.StockMention{}, false
	}

	contextBlock := strings.TrimSpace(strings.Join(mentions, ". "))
	if contextBlock == "" {
		return models.StockMention{}, false
	}

	explanation := contextBlock
	if len(contextBlock) >= shortContextLimit {
		if s, err := a.summarizer.Summarize(ctx, contextBlock, mentionSummaryMin, mentionSummaryMax); err != nil {
			// Non-fatal: keep the company with the raw context block.
			a.log.Warn("context summarization failed, using raw context",
				zap.String("ticker", company.Ticker), zap.Error(err))
		} else if s != "" {
			explanation = s
		}
	}

	sentiment, err := a.classifier.Classify(ctx, explanation)
	if err != nil {
		// Missing sentiment is worse than a missing record; skip the
		// company rather than fabricating a neutral placeholder.
		a.log.Error("sentiment classification failed, skipping stock",
			zap.String("ticker", company.Ticker), zap.Error(err))
		return models.StockMention{}, false
	}

	return models.StockMention{
		StockName:   company.Ticker,
		Sentiment:   numericalSentiment(sentiment),
		Explanation: explanation,
	}, true
}

// numericalSentiment maps a categorical classification to a signed
// score: Positive keeps the confidence, Negative negates it, anything
// else is 0. Rounded to 4 decimal places.
func numericalSentiment(s models.Sentiment) float64 {
	var v float64
	switch s.Label {
	case models.SentimentPositive:
		v = s.Score
	case models.SentimentNegative:
		v = -s.Score
	default:
		v = 0.0
	}
	return math.Round(v*10000) / 10000
}
