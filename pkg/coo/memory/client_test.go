package memory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient(t *testing.T) {
	t.Run("create document scopes to workspace", func(t *testing.T) {
		var gotAuth string
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.Write([]byte(`{"id":"doc-42"}`))
		}))
		defer srv.Close()

		c := NewClient("sm-key", "ws-1")
		c.baseURL = srv.URL

		id, err := c.CreateDocument(context.Background(), "note", map[string]any{"type": "document"})
		if err != nil {
			t.Fatalf("CreateDocument() error = %v", err)
		}
		if id != "doc-42" {
			t.Errorf("id = %q, want doc-42", id)
		}
		if gotAuth != "Bearer sm-key" {
			t.Errorf("auth header = %q", gotAuth)
		}
		tags, _ := gotBody["containerTags"].([]any)
		if len(tags) != 1 || tags[0] != "ws-1" {
			t.Errorf("containerTags = %v, want [ws-1]", gotBody["containerTags"])
		}
	})

	t.Run("search decodes results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[{"documentId":"d1","title":"Pricing","score":0.91}]}`))
		}))
		defer srv.Close()

		c := NewClient("sm-key", "")
		c.baseURL = srv.URL

		results, err := c.Search(context.Background(), "pricing", 5)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(results) != 1 || results[0].ID != "d1" || results[0].Score != 0.91 {
			t.Errorf("results = %+v", results)
		}
	})

	t.Run("404 maps to ErrNotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := NewClient("sm-key", "")
		c.baseURL = srv.URL

		if _, err := c.GetDocument(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("empty key fails fast", func(t *testing.T) {
		c := NewClient("", "")
		if _, err := c.CreateDocument(context.Background(), "x", nil); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("error = %v, want ErrNotConfigured", err)
		}
	})
}
