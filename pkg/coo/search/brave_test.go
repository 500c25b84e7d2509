package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBraveSearch(t *testing.T) {
	t.Run("parses web results", func(t *testing.T) {
		var gotToken, gotQuery, gotCount string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotToken = r.Header.Get("X-Subscription-Token")
			gotQuery = r.URL.Query().Get("q")
			gotCount = r.URL.Query().Get("count")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"web":{"results":[
				{"title":"Saudi delivery market 2026","url":"https://example.com/a","description":"Overview"},
				{"title":"Competitor landscape","url":"https://example.com/b","description":"Details"}
			]}}`))
		}))
		defer srv.Close()

		c := NewBraveClient("test-key")
		c.baseURL = srv.URL

		results, err := c.Search(context.Background(), "delivery market", 5)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if gotToken != "test-key" {
			t.Errorf("token header = %q, want test-key", gotToken)
		}
		if gotQuery != "delivery market" || gotCount != "5" {
			t.Errorf("query params = %q/%q", gotQuery, gotCount)
		}
		if len(results) != 2 {
			t.Fatalf("got %d results, want 2", len(results))
		}
		if results[0].Title != "Saudi delivery market 2026" || results[1].URL != "https://example.com/b" {
			t.Errorf("unexpected results: %+v", results)
		}
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		c := NewBraveClient("test-key")
		c.baseURL = srv.URL

		if _, err := c.Search(context.Background(), "anything", 3); err == nil {
			t.Fatal("expected error for 429 response")
		}
	})

	t.Run("missing key fails fast", func(t *testing.T) {
		c := NewBraveClient("")
		if c.Configured() {
			t.Error("Configured() = true for empty key")
		}
		if _, err := c.Search(context.Background(), "q", 1); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("error = %v, want ErrNotConfigured", err)
		}
	})
}
