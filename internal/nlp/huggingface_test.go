package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tickerlens/tickerlens/pkg/models"
)

func TestSummarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/facebook/bart-large-cnn" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req summaryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Parameters.MinLength != 20 || req.Parameters.MaxLength != 120 {
			t.Errorf("unexpected length bounds: %d/%d", req.Parameters.MinLength, req.Parameters.MaxLength)
		}
		if req.Parameters.DoSample {
			t.Error("do_sample should be false")
		}
		_, _ = w.Write([]byte(`[{"summary_text":"Condensed."}]`))
	}))
	defer server.Close()

	c := NewHFClient("", WithBaseURL(server.URL))
	got, err := c.Summarize(context.Background(), strings.Repeat("the market moved today ", 20), 20, 120)
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if got != "Condensed." {
		t.Fatalf("got %q, want Condensed.", got)
	}
}

func TestSummarizeEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewHFClient("", WithBaseURL(server.URL))
	_, err := c.Summarize(context.Background(), "text", 20, 120)
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("got %v, want ErrNoResult", err)
	}
}

func TestClassifyPicksTopLabel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/yiyanghkust/finbert-tone" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[[
			{"label":"Neutral","score":0.05},
			{"label":"Positive","score":0.9},
			{"label":"Negative","score":0.05}
		]]`))
	}))
	defer server.Close()

	c := NewHFClient("", WithBaseURL(server.URL))
	got, err := c.Classify(context.Background(), "earnings beat expectations")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if got.Label != models.SentimentPositive {
		t.Errorf("label: got %q, want Positive", got.Label)
	}
	if got.Score != 0.9 {
		t.Errorf("score: got %f, want 0.9", got.Score)
	}
}

func TestClassifyAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer hf_key" {
			t.Errorf("Authorization: got %q", got)
		}
		_, _ = w.Write([]byte(`[[{"label":"Neutral","score":1.0}]]`))
	}))
	defer server.Close()

	c := NewHFClient("hf_key", WithBaseURL(server.URL))
	if _, err := c.Classify(context.Background(), "flat quarter"); err != nil {
		t.Fatalf("Classify error: %v", err)
	}
}

func TestClassifyModelLoading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewHFClient("", WithBaseURL(server.URL))
	_, err := c.Classify(context.Background(), "text")
	if !errors.Is(err, ErrModelLoading) {
		t.Fatalf("got %v, want ErrModelLoading", err)
	}
}

func TestClassifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewHFClient("", WithBaseURL(server.URL))
	if _, err := c.Classify(context.Background(), "text"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}
