package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tickerlens/tickerlens/pkg/models"
)

// Default models, matching the financial-tone classifier and the CNN
// summarizer the analysis was tuned against.
const (
	DefaultSummaryModel   = "facebook/bart-large-cnn"
	DefaultSentimentModel = "yiyanghkust/finbert-tone"
)

// HFClient implements Summarizer and Classifier against the Hugging Face
// Inference API.
type HFClient struct {
	apiKey         string
	baseURL        string
	summaryModel   string
	sentimentModel string
	client         *http.Client
}

var (
	_ Summarizer = (*HFClient)(nil)
	_ Classifier = (*HFClient)(nil)
)

// HFOption configures the Hugging Face client.
type HFOption func(*HFClient)

// WithBaseURL sets a custom inference endpoint.
func WithBaseURL(url string) HFOption {
	return func(c *HFClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithSummaryModel sets the summarization model.
func WithSummaryModel(model string) HFOption {
	return func(c *HFClient) { c.summaryModel = model }
}

// WithSentimentModel sets the sentiment-classification model.
func WithSentimentModel(model string) HFOption {
	return func(c *HFClient) { c.sentimentModel = model }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HFOption {
	return func(c *HFClient) { c.client = client }
}

// NewHFClient creates a Hugging Face Inference API client. An empty
// apiKey is allowed (anonymous access with tighter rate limits).
func NewHFClient(apiKey string, opts ...HFOption) *HFClient {
	c := &HFClient{
		apiKey:         apiKey,
		baseURL:        "https://api-inference.huggingface.co",
		summaryModel:   DefaultSummaryModel,
		sentimentModel: DefaultSentimentModel,
		client:         &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Summarizer ---

type summaryRequest struct {
	Inputs     string            `json:"inputs"`
	Parameters summaryParameters `json:"parameters"`
	Options    requestOptions    `json:"options"`
}

type summaryParameters struct {
	MinLength int  `json:"min_length"`
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// Summarize calls the summarization model with bounded output length.
func (c *HFClient) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	body := summaryRequest{
		Inputs:     text,
		Parameters: summaryParameters{MinLength: minLen, MaxLength: maxLen},
		Options:    requestOptions{WaitForModel: true},
	}

	var out []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := c.post(ctx, c.summaryModel, body, &out); err != nil {
		return "", err
	}
	if len(out) == 0 || out[0].SummaryText == "" {
		return "", ErrNoResult
	}
	return out[0].SummaryText, nil
}

// --- Classifier ---

type classifyRequest struct {
	Inputs  string         `json:"inputs"`
	Options requestOptions `json:"options"`
}

// Classify calls the sentiment model and returns the highest-scoring
// label for the input.
func (c *HFClient) Classify(ctx context.Context, text string) (models.Sentiment, error) {
	body := classifyRequest{
		Inputs:  text,
		Options: requestOptions{WaitForModel: true},
	}

	// The classification endpoint returns one row of label scores per input.
	var out [][]struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := c.post(ctx, c.sentimentModel, body, &out); err != nil {
		return models.Sentiment{}, err
	}
	if len(out) == 0 || len(out[0]) == 0 {
		return models.Sentiment{}, ErrNoResult
	}

	best := out[0][0]
	for _, cand := range out[0][1:] {
		if cand.Score > best.Score {
			best = cand
		}
	}
	return models.Sentiment{Label: models.SentimentLabel(best.Label), Score: best.Score}, nil
}

// --- Transport ---

func (c *HFClient) post(ctx context.Context, model string, payload, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return fmt.Errorf("%w: %s", ErrModelLoading, model)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %s: %s", model, resp.Status, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", model, err)
	}
	return nil
}
