package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tickerlens/tickerlens/internal/nlp"
	"github.com/tickerlens/tickerlens/internal/storage"
	"github.com/tickerlens/tickerlens/pkg/models"
)

// ResultStore persists finished analyses.
type ResultStore interface {
	UpsertResult(ctx context.Context, result storage.AnalysisResult) error
}

// ResultSaver flattens a video analysis into its stored row: tickers
// joined to CSV, an overall sentiment label classified from the video
// summary, and dates normalized to YYYY-MM-DD.
type ResultSaver struct {
	store      ResultStore
	classifier nlp.Classifier
	now        func() time.Time
	log        *zap.Logger
}

// NewResultSaver creates a saver writing to store.
func NewResultSaver(store ResultStore, classifier nlp.Classifier, log *zap.Logger) *ResultSaver {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResultSaver{
		store:      store,
		classifier: classifier,
		now:        time.Now,
		log:        log,
	}
}

// Save stores the analysis for one video, replacing any earlier row.
// rawPublishDate is the YYYYMMDD date reported by the video listing.
func (s *ResultSaver) Save(ctx context.Context, videoID, rawPublishDate string, analysis models.VideoAnalysis) error {
	publishDate, err := time.Parse("20060102", rawPublishDate)
	if err != nil {
		return fmt.Errorf("parse publish date %q: %w", rawPublishDate, err)
	}

	tickers := make([]string, len(analysis.Stocks))
	for i, stock := range analysis.Stocks {
		tickers[i] = stock.StockName
	}

	result := storage.AnalysisResult{
		VideoID:      videoID,
		Tickers:      strings.Join(tickers, ","),
		Sentiment:    s.overallSentiment(ctx, videoID, analysis.Summary),
		Summary:      analysis.Summary,
		AnalysisDate: s.now().Format("2006-01-02"),
		PublishDate:  publishDate.Format("2006-01-02"),
	}
	return s.store.UpsertResult(ctx, result)
}

// overallSentiment classifies the video summary. An empty summary or a
// classification failure both fall back to NEUTRAL rather than losing
// the rest of the row.
func (s *ResultSaver) overallSentiment(ctx context.Context, videoID, summary string) string {
	if strings.TrimSpace(summary) == "" {
		return "NEUTRAL"
	}
	sentiment, err := s.classifier.Classify(ctx, summary)
	if err != nil {
		s.log.Warn("summary classification failed, storing neutral",
			zap.String("video_id", videoID), zap.Error(err))
		return "NEUTRAL"
	}
	return strings.ToUpper(string(sentiment.Label))
}
