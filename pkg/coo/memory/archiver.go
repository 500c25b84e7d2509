package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// MetadataProvider classifies note content into structured metadata.
// It matches the Complete method of the LLM providers.
type MetadataProvider interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// DocumentMetadata is the classification attached to a saved note.
type DocumentMetadata struct {
	Title   string
	Summary string
	Tags    []string
	Type    string
}

const classifySystemPrompt = `You classify business notes. Reply with a single JSON object and nothing else:
{"title": "short title", "summary": "one sentence summary", "tags": ["tag1", "tag2"], "type": "decision|task|note|contact|document"}`

// Store is the subset of Client the archiver needs.
type Store interface {
	Configured() bool
	CreateDocument(ctx context.Context, content string, metadata map[string]any) (string, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	GetDocument(ctx context.Context, id string) (*Document, error)
}

// Archiver records conversation traffic and explicit saves. Archival
// runs in the background and never blocks or fails a message flow.
type Archiver struct {
	store  Store
	llm    MetadataProvider
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewArchiver creates an archiver. llm may be nil, in which case saves
// always use the deterministic fallback metadata.
func NewArchiver(store Store, llm MetadataProvider, logger *slog.Logger) *Archiver {
	return &Archiver{
		store:  store,
		llm:    llm,
		logger: logger.With("component", "archiver"),
	}
}

// ArchiveMessage records an inbound message in the background.
func (a *Archiver) ArchiveMessage(channel, sender, content string) {
	a.archive(channel+"_message", channel, sender, content)
}

// ArchiveResponse records an outbound reply in the background.
func (a *Archiver) ArchiveResponse(channel, content string) {
	a.archive(channel+"_response", channel, "assistant", content)
}

// ArchiveBriefing records a delivered daily briefing in the background.
func (a *Archiver) ArchiveBriefing(content string) {
	a.archive("daily_briefing", "manual", "assistant", content)
}

func (a *Archiver) archive(docType, source, sender, content string) {
	if !a.store.Configured() || content == "" {
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// source plus type make archived traffic filterable by
		// channel and direction without re-parsing content.
		metadata := map[string]any{
			"type":       docType,
			"source":     source,
			"sender":     sender,
			"message_id": uuid.NewString(),
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		}
		if _, err := a.store.CreateDocument(ctx, content, metadata); err != nil {
			a.logger.Debug("archive failed", "type", docType, "error", err)
		}
	}()
}

// Flush waits for in-flight archive writes. Used on shutdown and in
// tests.
func (a *Archiver) Flush() {
	a.wg.Wait()
}

// Save stores content as an explicit memory with classified metadata
// and returns the stored document's metadata.
func (a *Archiver) Save(ctx context.Context, content string) (*DocumentMetadata, error) {
	if !a.store.Configured() {
		return nil, ErrNotConfigured
	}

	meta := a.classify(ctx, content)

	_, err := a.store.CreateDocument(ctx, content, map[string]any{
		"title":     meta.Title,
		"summary":   meta.Summary,
		"tags":      meta.Tags,
		"type":      meta.Type,
		"source":    "manual",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("save memory: %w", err)
	}
	return meta, nil
}

// classify asks the LLM for metadata and falls back to deterministic
// values when the model is unavailable or replies with junk.
func (a *Archiver) classify(ctx context.Context, content string) *DocumentMetadata {
	fallback := fallbackMetadata(content)
	if a.llm == nil {
		return fallback
	}

	reply, err := a.llm.Complete(ctx, classifySystemPrompt, content)
	if err != nil {
		a.logger.Debug("classification failed", "error", err)
		return fallback
	}

	parsed := gjson.Parse(extractJSON(reply))
	title := parsed.Get("title").String()
	summary := parsed.Get("summary").String()
	if title == "" || summary == "" {
		return fallback
	}

	meta := &DocumentMetadata{
		Title:   title,
		Summary: summary,
		Type:    parsed.Get("type").String(),
	}
	for _, tag := range parsed.Get("tags").Array() {
		if s := tag.String(); s != "" {
			meta.Tags = append(meta.Tags, s)
		}
	}
	if meta.Type == "" {
		meta.Type = fallback.Type
	}
	if len(meta.Tags) == 0 {
		meta.Tags = fallback.Tags
	}
	return meta
}

func fallbackMetadata(content string) *DocumentMetadata {
	summary := content
	if runes := []rune(summary); len(runes) > 50 {
		summary = string(runes[:50])
	}
	return &DocumentMetadata{
		Title:   "Untitled Document",
		Summary: summary,
		Tags:    []string{"general"},
		Type:    "document",
	}
}

// extractJSON trims model chatter around a JSON object, including
// markdown code fences.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// Search queries archived memories.
func (a *Archiver) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if !a.store.Configured() {
		return nil, ErrNotConfigured
	}
	return a.store.Search(ctx, query, limit)
}

// Recall fetches an archived memory by its store-assigned document id.
func (a *Archiver) Recall(ctx context.Context, id string) (*Document, error) {
	if !a.store.Configured() {
		return nil, ErrNotConfigured
	}
	return a.store.GetDocument(ctx, id)
}
