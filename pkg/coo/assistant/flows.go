package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/digitalcoo/coo/pkg/coo/engine"
	"github.com/digitalcoo/coo/pkg/coo/intent"
	"github.com/digitalcoo/coo/pkg/coo/providers"
)

func (a *Assistant) runFlow(ctx context.Context, flow intent.Flow, decision engine.Decision, content string) (string, error) {
	switch flow {
	case intent.FlowInvoice:
		return a.invoiceFlow(ctx, decision, content)
	case intent.FlowMeeting:
		return a.meetingFlow(ctx, decision, content)
	case intent.FlowMarketResearch:
		return a.researchFlow(ctx, decision, content)
	case intent.FlowRecruiting:
		return a.recruitingFlow(ctx, decision, content)
	case intent.FlowSaveMemory:
		return a.saveFlow(ctx, content)
	default:
		return a.chatFlow(ctx, decision, content)
	}
}

// complete resolves the engine's provider chain and runs a completion.
func (a *Assistant) complete(ctx context.Context, decision engine.Decision, system, user string) (string, error) {
	provider, err := a.registry.Resolve(decision.Primary)
	if err != nil {
		return "", err
	}
	return provider.Complete(ctx, system, user)
}

// chatFlow answers free-form conversation.
func (a *Assistant) chatFlow(ctx context.Context, decision engine.Decision, content string) (string, error) {
	reply, err := a.complete(ctx, decision, a.systemPrompt(), content)
	if err != nil {
		if errors.Is(err, providers.ErrNoProvider) {
			return noEngineReply, nil
		}
		return "", err
	}
	return reply, nil
}

// saveFlow stores an explicit memory and confirms with its title.
func (a *Assistant) saveFlow(ctx context.Context, content string) (string, error) {
	toSave := intent.ExtractSaveContent(content)
	if toSave == "" {
		return emptySaveReply, nil
	}

	meta, err := a.archiver.Save(ctx, toSave)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("تم الحفظ: %s", meta.Title), nil
}

// researchFlow runs market research. During peak hours the agentic
// tool does the digging; off-peak it is a web search plus a summary.
func (a *Assistant) researchFlow(ctx context.Context, decision engine.Decision, content string) (string, error) {
	const researchSystem = "You are a market research analyst for a Saudi business. " +
		"Produce a short, structured brief: market overview, key players, and an actionable takeaway. " +
		"Reply in the language of the request."

	if decision.Agentic == engine.ToolZai {
		if agentic, err := a.registry.Agentic(); err == nil {
			reply, err := agentic.Complete(ctx, researchSystem, content)
			if err == nil {
				return reply, nil
			}
			a.logger.Warn("agentic research failed, falling back to web search", "error", err)
		}
	}

	if !a.searcher.Configured() {
		return a.chatFlow(ctx, decision, content)
	}

	results, err := a.searcher.Search(ctx, content, 5)
	if err != nil {
		return "", fmt.Errorf("web search: %w", err)
	}

	var sources strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sources, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Description)
	}

	prompt := fmt.Sprintf("Request: %s\n\nWeb results:\n%s\nWrite the research brief based on these results. Cite the sources by number.", content, sources.String())
	reply, err := a.complete(ctx, decision, researchSystem, prompt)
	if err != nil {
		if errors.Is(err, providers.ErrNoProvider) {
			return noEngineReply, nil
		}
		return "", err
	}
	return reply, nil
}

// recruitingFlow drafts a role profile and sourcing plan. The model is
// asked for structured JSON; unparseable replies fall back to the raw
// text.
func (a *Assistant) recruitingFlow(ctx context.Context, decision engine.Decision, content string) (string, error) {
	const recruitingSystem = `You are a recruiting advisor. Reply with a single JSON object:
{"role": "job title", "summary": "one line role summary", "requirements": ["req1", "req2"], "sourcing": ["where to find candidates"]}`

	reply, err := a.complete(ctx, decision, recruitingSystem, content)
	if err != nil {
		if errors.Is(err, providers.ErrNoProvider) {
			return noEngineReply, nil
		}
		return "", err
	}

	parsed := gjson.Parse(extractJSONObject(reply))
	role := parsed.Get("role").String()
	if role == "" {
		return reply, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "الدور: %s\n", role)
	if summary := parsed.Get("summary").String(); summary != "" {
		fmt.Fprintf(&b, "%s\n", summary)
	}
	if reqs := parsed.Get("requirements").Array(); len(reqs) > 0 {
		b.WriteString("\nالمتطلبات:\n")
		for _, r := range reqs {
			fmt.Fprintf(&b, "- %s\n", r.String())
		}
	}
	if sourcing := parsed.Get("sourcing").Array(); len(sourcing) > 0 {
		b.WriteString("\nمصادر الاستقطاب:\n")
		for _, s := range sourcing {
			fmt.Fprintf(&b, "- %s\n", s.String())
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// invoiceFlow extracts invoice details, logs them to the spreadsheet,
// and emails a notification.
func (a *Assistant) invoiceFlow(ctx context.Context, decision engine.Decision, content string) (string, error) {
	if !a.work.Configured() {
		return fmt.Sprintf(notConfiguredFmt, "الفواتير"), nil
	}

	const invoiceSystem = `You extract invoice details from a request. Reply with a single JSON object:
{"client": "client name", "amount": "amount with currency", "description": "what the invoice covers"}
Use empty strings for anything not mentioned.`

	client, amount, description := "", "", content
	if reply, err := a.complete(ctx, decision, invoiceSystem, content); err == nil {
		parsed := gjson.Parse(extractJSONObject(reply))
		client = parsed.Get("client").String()
		amount = parsed.Get("amount").String()
		if d := parsed.Get("description").String(); d != "" {
			description = d
		}
	} else {
		a.logger.Warn("invoice extraction failed, logging raw request", "error", err)
	}

	now := a.clock().UTC()
	row := []any{now.Format("2006-01-02"), client, amount, description, "draft"}
	if err := a.work.AppendInvoiceRow(ctx, row); err != nil {
		return "", fmt.Errorf("logging invoice: %w", err)
	}

	if a.mail.Configured() && a.config.OwnerEmail != "" {
		subject := "New invoice draft"
		if client != "" {
			subject = fmt.Sprintf("New invoice draft for %s", client)
		}
		body := fmt.Sprintf("Client: %s\nAmount: %s\nDescription: %s\nDate: %s\n",
			client, amount, description, now.Format("2006-01-02"))
		if err := a.mail.Send(ctx, []string{a.config.OwnerEmail}, subject, body); err != nil {
			a.logger.Warn("invoice notification email failed", "error", err)
		}
	}

	if client != "" {
		return fmt.Sprintf("تم تسجيل مسودة فاتورة للعميل %s بمبلغ %s.", client, amount), nil
	}
	return "تم تسجيل مسودة الفاتورة في السجل.", nil
}

// meetingFlow books the first open calendar slot and sends the invite.
func (a *Assistant) meetingFlow(ctx context.Context, decision engine.Decision, content string) (string, error) {
	if !a.work.Configured() {
		return fmt.Sprintf(notConfiguredFmt, "الاجتماعات"), nil
	}

	const meetingSystem = `You extract meeting details from a request. Reply with a single JSON object:
{"title": "meeting title", "duration_minutes": 30, "attendees": ["email1"]}
Default duration_minutes to 30. Only include attendee emails explicitly mentioned.`

	title := "اجتماع"
	duration := 30 * time.Minute
	var attendees []string

	if reply, err := a.complete(ctx, decision, meetingSystem, content); err == nil {
		parsed := gjson.Parse(extractJSONObject(reply))
		if t := parsed.Get("title").String(); t != "" {
			title = t
		}
		if mins := parsed.Get("duration_minutes").Int(); mins > 0 {
			duration = time.Duration(mins) * time.Minute
		}
		for _, att := range parsed.Get("attendees").Array() {
			if email := att.String(); strings.Contains(email, "@") {
				attendees = append(attendees, email)
			}
		}
	} else {
		a.logger.Warn("meeting extraction failed, using defaults", "error", err)
	}

	if a.config.OwnerEmail != "" {
		attendees = append(attendees, a.config.OwnerEmail)
	}

	event, err := a.work.ScheduleMeeting(ctx, title, content, duration, a.clock(), attendees)
	if err != nil {
		return "", fmt.Errorf("scheduling meeting: %w", err)
	}

	start := event.Start.DateTime
	if t, err := time.Parse(time.RFC3339, start); err == nil {
		start = t.In(riyadhZone).Format("Monday 2006-01-02 15:04")
	}

	if a.mail.Configured() && len(attendees) > 0 {
		body := fmt.Sprintf("Meeting: %s\nWhen: %s\n\n%s\n", title, start, content)
		if err := a.mail.Send(ctx, attendees, "Meeting invitation: "+title, body); err != nil {
			a.logger.Warn("meeting invite email failed", "error", err)
		}
	}

	return fmt.Sprintf("تم جدولة الاجتماع \"%s\" في %s.", title, start), nil
}

var riyadhZone = time.FixedZone("AST", 3*60*60)

// extractJSONObject trims model chatter around a JSON object.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
