// Package models defines the shared domain types for tickerlens:
// tracked companies, channel videos, sentiment classifications, and
// per-video analysis results.
package models

// Company is one tracked public company from the registry.
type Company struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// Video is the metadata the video-list collaborator returns for one
// channel upload. UploadDate uses the compact YYYYMMDD format.
type Video struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	UploadDate string `json:"upload_date"`
}

// SentimentLabel is a categorical sentiment classification.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// Sentiment is the output of the sentiment-classification collaborator:
// a label and a confidence score in [0, 1].
type Sentiment struct {
	Label SentimentLabel `json:"label"`
	Score float64        `json:"score"`
}

// StockMention records one company that was mentioned in a transcript.
// Sentiment is a signed score in [-1, 1] derived from the explanation
// text alone.
type StockMention struct {
	StockName   string  `json:"stock_name"`
	Sentiment   float64 `json:"sentiment"`
	Explanation string  `json:"explanation"`
}

// VideoAnalysis is the full analysis of one transcript: an overall
// summary (possibly empty) and the mentioned stocks in registry order.
type VideoAnalysis struct {
	Summary string         `json:"summary"`
	Stocks  []StockMention `json:"stocks"`
}
