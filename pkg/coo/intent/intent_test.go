package intent

import "testing"

func TestRoute(t *testing.T) {
	r := NewRouter()

	tests := []struct {
		name string
		text string
		want Flow
	}{
		{"arabic invoice keyword", "ابغى فاتورة للعميل الجديد", FlowInvoice},
		{"english invoice keyword", "please prepare an invoice for Acme", FlowInvoice},
		{"quotation keyword", "need a quotation for the new project", FlowInvoice},
		{"arabic meeting keyword", "رتب اجتماع مع فريق المبيعات", FlowMeeting},
		{"english meeting keyword", "schedule a meeting tomorrow", FlowMeeting},
		{"market research", "give me a market overview for delivery apps", FlowMarketResearch},
		{"arabic research", "ابغى بحث عن المنافسين", FlowMarketResearch},
		{"recruiting", "find a candidate for the backend role", FlowRecruiting},
		{"arabic recruiting", "نحتاج توظيف مهندس جديد", FlowRecruiting},
		{"arabic save", "حفظ: قرار استراتيجي", FlowSaveMemory},
		{"english save", "save this decision for later", FlowSaveMemory},
		{"plain chat", "كيف حالك اليوم؟", FlowGenericChat},
		{"empty text", "", FlowGenericChat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Route(tt.text); got != tt.want {
				t.Errorf("Route(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}

	t.Run("matching is case-sensitive", func(t *testing.T) {
		if got := r.Route("INVOICE for Acme"); got != FlowGenericChat {
			t.Errorf("uppercase keyword routed to %s, want generic chat", got)
		}
	})

	t.Run("priority order decides keyword overlap", func(t *testing.T) {
		// Contains both "meeting" and "invoice"; invoice is checked first.
		if got := r.Route("meeting about the invoice"); got != FlowInvoice {
			t.Errorf("overlap routed to %s, want invoice", got)
		}
		// Contains both "save" and "meeting"; meeting outranks save.
		if got := r.Route("save the meeting notes"); got != FlowMeeting {
			t.Errorf("overlap routed to %s, want meeting", got)
		}
	})
}

func TestExtractSaveContent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"arabic trigger with colon", "حفظ: قرار استراتيجي", "قرار استراتيجي"},
		{"english trigger", "save the supplier shortlist", "the supplier shortlist"},
		{"trigger only", "حفظ", ""},
		{"uppercase trigger is stripped too", "SAVE quarterly targets", "quarterly targets"},
		// Stripping is global: a trigger substring inside real content is
		// lost as well. Pinned on purpose.
		{"trigger inside content is stripped", "please save this saved note", "please  this d note"},
		// U+0130 lowercases to a longer byte sequence; the cut points
		// must not shift.
		{"length-changing fold before trigger", "İstanbul save plan", "İstanbul  plan"},
		{"no trigger present", "quarterly targets", "quarterly targets"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSaveContent(tt.text); got != tt.want {
				t.Errorf("ExtractSaveContent(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
