// Package search provides web search over the Brave Search API.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBraveBaseURL = "https://api.search.brave.com/res/v1"

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("search not configured")

// Result is one web search hit.
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// BraveClient calls the Brave web search endpoint.
type BraveClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewBraveClient creates a client with the given key. An empty key
// yields a client that fails fast with ErrNotConfigured.
func NewBraveClient(apiKey string) *BraveClient {
	return &BraveClient{
		apiKey:  apiKey,
		baseURL: defaultBraveBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether an API key is present.
func (c *BraveClient) Configured() bool { return c.apiKey != "" }

// Search runs a web search and returns up to count results.
func (c *BraveClient) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if count <= 0 {
		count = 5
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("count", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/web/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Web struct {
			Results []Result `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return payload.Web.Results, nil
}
