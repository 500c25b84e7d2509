// Package intent classifies inbound message text into one of the bot's
// business flows by keyword matching.
//
// Routing is an explicit ordered list of (keyword set, flow) rules evaluated
// in priority order; the first rule whose keywords appear in the text wins.
// Matching is literal case-sensitive substring containment, with no case
// folding, diacritic stripping, or tokenization. A message containing
// keywords from several rules resolves to the highest-priority rule, so the
// rule order below is part of the contract.
package intent

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Flow identifies the business flow a message is routed to.
type Flow string

const (
	FlowInvoice        Flow = "invoice"
	FlowMeeting        Flow = "meeting"
	FlowMarketResearch Flow = "market_research"
	FlowRecruiting     Flow = "recruiting"
	FlowSaveMemory     Flow = "save_memory"
	FlowGenericChat    Flow = "generic_chat"
)

// rule pairs a keyword set with the flow it triggers. Any single keyword
// matching routes to the flow.
type rule struct {
	keywords []string
	flow     Flow
}

// saveTriggers are the keywords that activate the save-to-memory flow and
// are stripped from the saved content.
var saveTriggers = []string{"حفظ", "save"}

// Router routes message text to flows using an ordered rule list.
type Router struct {
	rules []rule
}

// NewRouter returns a router with the default rule set, in priority order:
// invoice, meeting, market research, recruiting, save-to-memory. Everything
// else falls through to generic chat.
func NewRouter() *Router {
	return &Router{
		rules: []rule{
			{keywords: []string{"فاتورة", "invoice", "عرض سعر", "quotation"}, flow: FlowInvoice},
			{keywords: []string{"اجتماع", "meeting", "موعد"}, flow: FlowMeeting},
			{keywords: []string{"سوق", "market", "research", "بحث"}, flow: FlowMarketResearch},
			{keywords: []string{"توظيف", "مرشح", "recruit", "candidate", "hiring"}, flow: FlowRecruiting},
			{keywords: saveTriggers, flow: FlowSaveMemory},
		},
	}
}

// Route classifies the text. Pure; no side effects.
func (r *Router) Route(text string) Flow {
	for _, rl := range r.rules {
		for _, kw := range rl.keywords {
			if strings.Contains(text, kw) {
				return rl.flow
			}
		}
	}
	return FlowGenericChat
}

// ExtractSaveContent derives the document content for the save-to-memory
// flow: every save trigger word is removed case-insensitively wherever it
// occurs, even as a substring inside legitimate content, then a leading
// separator and surrounding whitespace are trimmed.
func ExtractSaveContent(text string) string {
	content := text
	for _, trigger := range saveTriggers {
		content = removeFold(content, trigger)
	}
	content = strings.TrimSpace(content)
	content = strings.TrimLeft(content, ":：-–—،")
	return strings.TrimSpace(content)
}

// removeFold deletes every case-insensitive occurrence of sub from s.
// All offsets index the original string, so runes whose lowercase form
// has a different byte length cannot shift the cut points.
func removeFold(s, sub string) string {
	if sub == "" {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if n, ok := foldPrefixLen(s[i:], sub); ok {
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}

// foldPrefixLen reports whether s starts with a case-insensitive match
// of sub and returns the match's byte length within s.
func foldPrefixLen(s, sub string) (int, bool) {
	i := 0
	for _, want := range sub {
		r, size := utf8.DecodeRuneInString(s[i:])
		if size == 0 {
			return 0, false
		}
		if r != want && unicode.ToLower(r) != unicode.ToLower(want) {
			return 0, false
		}
		i += size
	}
	return i, true
}
