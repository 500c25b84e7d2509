package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/digitalcoo/coo/pkg/coo/channels"
	"github.com/digitalcoo/coo/pkg/coo/engine"
	"github.com/digitalcoo/coo/pkg/coo/intent"
	"github.com/digitalcoo/coo/pkg/coo/memory"
	"github.com/digitalcoo/coo/pkg/coo/providers"
	"github.com/digitalcoo/coo/pkg/coo/search"
)

// User-facing replies are in Arabic, matching the principal's locale.
const (
	errorReply       = "عذراً، حدث خطأ أثناء معالجة طلبك. حاول مرة أخرى."
	noEngineReply    = "عذراً، لا يتوفر محرك ذكاء اصطناعي مهيأ حالياً."
	noDocumentsReply = "لم يتم العثور على مستندات مطابقة."
	emptySaveReply   = "ماذا تريد أن أحفظ؟ أرسل المحتوى مع كلمة حفظ."

	notConfiguredFmt = "عذراً، ميزة %s غير مهيأة حالياً."

	flowTimeout = 3 * time.Minute
)

// Searcher is the web search surface the flows use.
type Searcher interface {
	Configured() bool
	Search(ctx context.Context, query string, count int) ([]search.Result, error)
}

// Workspace is the calendar and spreadsheet surface the flows use.
type Workspace interface {
	Configured() bool
	ScheduleMeeting(ctx context.Context, title, description string, duration time.Duration, from time.Time, attendees []string) (*calendar.Event, error)
	AppendInvoiceRow(ctx context.Context, row []any) error
}

// Mailer is the email surface the flows use.
type Mailer interface {
	Configured() bool
	Send(ctx context.Context, to []string, subject, body string) error
}

// Assistant runs the message pipeline: archive, route, execute the
// matched flow, reply, archive the reply.
type Assistant struct {
	config   *Config
	logger   *slog.Logger
	manager  *channels.Manager
	registry *providers.Registry
	router   *intent.Router
	archiver *memory.Archiver
	searcher Searcher
	work     Workspace
	mail     Mailer

	// clock feeds the engine selector. Tests override it.
	clock func() time.Time

	wg sync.WaitGroup
}

// New builds an assistant from its collaborators.
func New(config *Config, manager *channels.Manager, registry *providers.Registry, archiver *memory.Archiver, searcher Searcher, work Workspace, mail Mailer, logger *slog.Logger) *Assistant {
	return &Assistant{
		config:   config,
		logger:   logger.With("component", "assistant"),
		manager:  manager,
		registry: registry,
		router:   intent.NewRouter(),
		archiver: archiver,
		searcher: searcher,
		work:     work,
		mail:     mail,
		clock:    time.Now,
	}
}

// Start connects the channels and spawns one worker per channel. Each
// worker handles its channel's messages to completion, in order.
func (a *Assistant) Start(ctx context.Context) error {
	if err := a.manager.Start(ctx); err != nil {
		return fmt.Errorf("starting channels: %w", err)
	}

	// Workers start for every registered channel, connected or not.
	// A channel still pairing (WhatsApp QR) delivers messages later
	// through the same stream.
	for _, ch := range a.manager.Channels() {
		a.wg.Add(1)
		go a.runWorker(ch)
	}
	return nil
}

// Stop disconnects the channels, waits for in-flight messages to be
// handled, and flushes pending archive writes.
func (a *Assistant) Stop() {
	a.manager.Stop()
	a.wg.Wait()
	a.archiver.Flush()
	a.logger.Info("assistant stopped")
}

func (a *Assistant) runWorker(ch channels.Channel) {
	defer a.wg.Done()
	for msg := range ch.Receive() {
		a.handleMessage(ch, msg)
	}
}

// handleMessage runs the full pipeline for one inbound message. It
// deliberately uses a fresh context so shutdown never cancels a flow
// mid-execution.
func (a *Assistant) handleMessage(ch channels.Channel, msg *channels.IncomingMessage) {
	start := time.Now()
	a.logger.Info("message received", "channel", msg.Channel, "from", msg.From)

	a.archiver.ArchiveMessage(msg.Channel, msg.From, msg.Content)

	ctx, cancel := context.WithTimeout(context.Background(), flowTimeout)
	defer cancel()

	reply := a.respond(ctx, msg)
	if reply == "" {
		return
	}

	if err := ch.Send(ctx, msg.ChatID, &channels.OutgoingMessage{Content: reply, ReplyTo: msg.ID}); err != nil {
		a.logger.Error("failed to send reply", "channel", msg.Channel, "error", err)
		return
	}

	a.archiver.ArchiveResponse(msg.Channel, reply)
	a.logger.Info("message handled",
		"channel", msg.Channel, "duration", time.Since(start).Round(time.Millisecond))
}

// respond picks a flow and produces the reply text.
func (a *Assistant) respond(ctx context.Context, msg *channels.IncomingMessage) string {
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return ""
	}

	if reply, handled := a.handleCommand(ctx, content); handled {
		return reply
	}

	flow := a.router.Route(content)
	decision := engine.Select(a.clock())
	a.logger.Debug("flow selected",
		"flow", flow, "engine", decision.Primary, "peak", decision.PeakTime)

	reply, err := a.runFlow(ctx, flow, decision, content)
	if err != nil {
		a.logger.Error("flow failed", "flow", flow, "error", err)
		return errorReply
	}
	return reply
}

// handleCommand processes slash commands. Returns handled=false for
// normal messages.
func (a *Assistant) handleCommand(ctx context.Context, content string) (string, bool) {
	switch {
	case strings.HasPrefix(content, "/search"):
		query := strings.TrimSpace(strings.TrimPrefix(content, "/search"))
		if query == "" {
			return "الاستخدام: /search <كلمات البحث>", true
		}
		return a.searchMemories(ctx, query), true

	case strings.HasPrefix(content, "/recall"):
		id := strings.TrimSpace(strings.TrimPrefix(content, "/recall"))
		if id == "" {
			return "الاستخدام: /recall <معرّف المستند>", true
		}
		return a.recallMemory(ctx, id), true
	}
	return "", false
}

func (a *Assistant) searchMemories(ctx context.Context, query string) string {
	results, err := a.archiver.Search(ctx, query, 5)
	if err != nil {
		a.logger.Error("memory search failed", "error", err)
		return errorReply
	}
	if len(results) == 0 {
		return noDocumentsReply
	}

	var b strings.Builder
	b.WriteString("نتائج البحث:\n")
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = firstLine(r.Content)
		}
		fmt.Fprintf(&b, "%d. %s", i+1, title)
		if r.ID != "" {
			fmt.Fprintf(&b, " (%s)", r.ID)
		}
		b.WriteString("\n")
		if r.Summary != "" {
			fmt.Fprintf(&b, "   %s\n", r.Summary)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *Assistant) recallMemory(ctx context.Context, id string) string {
	doc, err := a.archiver.Recall(ctx, id)
	if err != nil {
		if errors.Is(err, memory.ErrNotFound) {
			return noDocumentsReply
		}
		a.logger.Error("memory recall failed", "error", err)
		return errorReply
	}
	return doc.Content
}

// systemPrompt builds the base persona prompt.
func (a *Assistant) systemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, the digital chief operating officer for a Saudi business. ", a.config.Name)
	b.WriteString("Reply in the language the user writes in, Arabic or English. Be concise and practical.")
	if a.config.Instructions != "" {
		b.WriteString("\n\n")
		b.WriteString(a.config.Instructions)
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if runes := []rune(s); len(runes) > 80 {
		s = string(runes[:80])
	}
	return s
}
