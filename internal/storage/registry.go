package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tickerlens/tickerlens/pkg/models"
)

// DefaultRegistryURL is the SEC's public company ticker list.
const DefaultRegistryURL = "https://www.sec.gov/files/company_tickers.json"

// The SEC blocks requests without a descriptive User-Agent.
const registryUserAgent = "tickerlens/1.0 (+https://github.com/tickerlens/tickerlens)"

// RegistryClient downloads the public company list used to seed the
// ticker registry.
type RegistryClient struct {
	url    string
	client *http.Client
}

// RegistryOption configures the registry client.
type RegistryOption func(*RegistryClient)

// WithRegistryURL overrides the company list URL.
func WithRegistryURL(url string) RegistryOption {
	return func(r *RegistryClient) { r.url = url }
}

// WithRegistryHTTPClient sets a custom HTTP client.
func WithRegistryHTTPClient(client *http.Client) RegistryOption {
	return func(r *RegistryClient) { r.client = client }
}

// NewRegistryClient creates a client for the SEC company listing.
func NewRegistryClient(opts ...RegistryOption) *RegistryClient {
	r := &RegistryClient{
		url:    DefaultRegistryURL,
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch downloads and decodes the company list. The SEC serves a map
// keyed by row index, so entries are sorted by key to keep the
// registry order stable across runs.
func (r *RegistryClient) Fetch(ctx context.Context) ([]models.Company, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("User-Agent", registryUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch company registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("company registry returned %s", resp.Status)
	}

	var raw map[string]struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode company registry: %w", err)
	}

	keys := make([]int, 0, len(raw))
	byIndex := make(map[int]string, len(raw))
	for k := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("unexpected registry key %q", k)
		}
		keys = append(keys, idx)
		byIndex[idx] = k
	}
	sort.Ints(keys)

	companies := make([]models.Company, 0, len(keys))
	for _, idx := range keys {
		entry := raw[byIndex[idx]]
		companies = append(companies, models.Company{
			Ticker: strings.ToUpper(strings.TrimSpace(entry.Ticker)),
			Name:   strings.ToUpper(strings.Join(strings.Fields(entry.Title), " ")),
		})
	}
	return companies, nil
}
