package memory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

type fakeStore struct {
	mu         sync.Mutex
	configured bool
	createErr  error
	docs       []fakeDoc
	results    []SearchResult
	byID       map[string]*Document
}

type fakeDoc struct {
	content  string
	metadata map[string]any
}

func (s *fakeStore) Configured() bool { return s.configured }

func (s *fakeStore) CreateDocument(ctx context.Context, content string, metadata map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	s.docs = append(s.docs, fakeDoc{content: content, metadata: metadata})
	return "doc-1", nil
}

func (s *fakeStore) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	return s.results, nil
}

func (s *fakeStore) GetDocument(ctx context.Context, id string) (*Document, error) {
	if doc, ok := s.byID[id]; ok {
		return doc, nil
	}
	return nil, ErrNotFound
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	return f.reply, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestArchiveMessage(t *testing.T) {
	t.Run("records with channel type", func(t *testing.T) {
		store := &fakeStore{configured: true}
		a := NewArchiver(store, nil, testLogger())

		a.ArchiveMessage("telegram", "owner", "مرحبا")
		a.Flush()
		a.ArchiveResponse("telegram", "أهلاً")
		a.Flush()

		if len(store.docs) != 2 {
			t.Fatalf("archived %d docs, want 2", len(store.docs))
		}
		if store.docs[0].metadata["type"] != "telegram_message" {
			t.Errorf("inbound type = %v, want telegram_message", store.docs[0].metadata["type"])
		}
		if store.docs[0].metadata["source"] != "telegram" {
			t.Errorf("inbound source = %v, want telegram", store.docs[0].metadata["source"])
		}
		if store.docs[1].metadata["type"] != "telegram_response" {
			t.Errorf("outbound type = %v, want telegram_response", store.docs[1].metadata["type"])
		}
	})

	t.Run("failures are swallowed", func(t *testing.T) {
		store := &fakeStore{configured: true, createErr: errors.New("boom")}
		a := NewArchiver(store, nil, testLogger())

		a.ArchiveMessage("whatsapp", "owner", "hello")
		a.Flush()
	})

	t.Run("unconfigured store is a no-op", func(t *testing.T) {
		store := &fakeStore{configured: false}
		a := NewArchiver(store, nil, testLogger())

		a.ArchiveMessage("telegram", "owner", "hello")
		a.Flush()

		if len(store.docs) != 0 {
			t.Errorf("archived %d docs, want 0", len(store.docs))
		}
	})
}

func TestSave(t *testing.T) {
	t.Run("uses llm classification", func(t *testing.T) {
		store := &fakeStore{configured: true}
		llm := &fakeLLM{reply: "```json\n{\"title\":\"Q3 pricing decision\",\"summary\":\"Raised delivery fees by 5%\",\"tags\":[\"pricing\"],\"type\":\"decision\"}\n```"}
		a := NewArchiver(store, llm, testLogger())

		meta, err := a.Save(context.Background(), "قررنا رفع رسوم التوصيل 5%")
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if meta.Title != "Q3 pricing decision" || meta.Type != "decision" {
			t.Errorf("metadata = %+v", meta)
		}
		if len(store.docs) != 1 || store.docs[0].metadata["title"] != "Q3 pricing decision" {
			t.Errorf("stored metadata = %+v", store.docs[0].metadata)
		}
	})

	t.Run("falls back when llm errors", func(t *testing.T) {
		store := &fakeStore{configured: true}
		llm := &fakeLLM{err: errors.New("unavailable")}
		a := NewArchiver(store, llm, testLogger())

		content := strings.Repeat("نص طويل ", 20)
		meta, err := a.Save(context.Background(), content)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if meta.Title != "Untitled Document" {
			t.Errorf("title = %q, want Untitled Document", meta.Title)
		}
		if got := len([]rune(meta.Summary)); got > 50 {
			t.Errorf("summary length = %d runes, want <= 50", got)
		}
		if len(meta.Tags) != 1 || meta.Tags[0] != "general" {
			t.Errorf("tags = %v, want [general]", meta.Tags)
		}
		if meta.Type != "document" {
			t.Errorf("type = %q, want document", meta.Type)
		}
	})

	t.Run("falls back on junk reply", func(t *testing.T) {
		store := &fakeStore{configured: true}
		llm := &fakeLLM{reply: "sorry, I cannot help with that"}
		a := NewArchiver(store, llm, testLogger())

		meta, err := a.Save(context.Background(), "short note")
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if meta.Title != "Untitled Document" || meta.Summary != "short note" {
			t.Errorf("metadata = %+v", meta)
		}
	})
}

func TestRecall(t *testing.T) {
	t.Run("fetches document by id", func(t *testing.T) {
		store := &fakeStore{
			configured: true,
			byID:       map[string]*Document{"doc-9": {ID: "doc-9", Content: "full content"}},
		}
		a := NewArchiver(store, nil, testLogger())

		doc, err := a.Recall(context.Background(), "doc-9")
		if err != nil {
			t.Fatalf("Recall() error = %v", err)
		}
		if doc.Content != "full content" {
			t.Errorf("content = %q, want full content", doc.Content)
		}
	})

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		store := &fakeStore{configured: true}
		a := NewArchiver(store, nil, testLogger())

		if _, err := a.Recall(context.Background(), "doc-0"); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}
