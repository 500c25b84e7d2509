// Package memory archives conversations and saved notes to Supermemory
// and searches them back.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.supermemory.ai/v3"

var (
	// ErrNotFound is returned when a document id does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("memory not configured")
)

// Document is a stored memory entry.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// SearchResult is one hit from a memory search.
type SearchResult struct {
	ID      string  `json:"documentId"`
	Title   string  `json:"title"`
	Summary string  `json:"summary"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Client is a thin HTTP client for the Supermemory API.
type Client struct {
	apiKey      string
	workspaceID string
	baseURL     string
	http        *http.Client
}

// NewClient creates a client. The workspace id scopes every document
// and search; it may be empty.
func NewClient(apiKey, workspaceID string) *Client {
	return &Client{
		apiKey:      apiKey,
		workspaceID: workspaceID,
		baseURL:     defaultBaseURL,
		http:        &http.Client{Timeout: 20 * time.Second},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// CreateDocument stores content with metadata and returns the new
// document id.
func (c *Client) CreateDocument(ctx context.Context, content string, metadata map[string]any) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	body := map[string]any{
		"content":  content,
		"metadata": metadata,
	}
	if c.workspaceID != "" {
		body["containerTags"] = []string{c.workspaceID}
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/documents", body, &out); err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	return out.ID, nil
}

// Search queries stored documents and returns up to limit hits.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = 5
	}

	body := map[string]any{
		"q":     query,
		"limit": limit,
	}
	if c.workspaceID != "" {
		body["containerTags"] = []string{c.workspaceID}
	}

	var out struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "/search", body, &out); err != nil {
		return nil, fmt.Errorf("search memory: %w", err)
	}
	return out.Results, nil
}

// GetDocument fetches one document by id.
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	var doc Document
	if err := c.do(ctx, http.MethodGet, "/documents/"+id, nil, &doc); err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
