// Package engine decides which LLM backend and which agentic search tool
// serve a message, based on the time of day in Riyadh.
//
// During the evening peak window (20:00–01:00 Riyadh time) the bot runs on
// Claude with Z.ai as the paired search tool; the rest of the day it runs on
// Groq with Brave Search. Riyadh is a fixed UTC+3 offset with no daylight
// saving, so the conversion is plain hour arithmetic.
package engine

import "time"

// Engine identifies a primary LLM backend.
type Engine string

const (
	EngineClaude Engine = "claude"
	EngineGroq   Engine = "groq"
)

// Tool identifies the agentic search/retrieval service paired with the
// primary engine for a given time window.
type Tool string

const (
	ToolZai   Tool = "zai"
	ToolBrave Tool = "brave"
)

// riyadhOffsetHours is the fixed UTC offset for Asia/Riyadh. No DST.
const riyadhOffsetHours = 3

// Peak window boundaries, in Riyadh local hours. The window is half-open:
// [20:00, 01:00).
const (
	peakStartHour = 20
	peakEndHour   = 1
)

// Decision is the engine selection for a single message. It is derived
// purely from wall-clock time, recomputed per message, and never cached.
type Decision struct {
	PeakTime   bool
	Primary    Engine
	Agentic    Tool
	RiyadhHour int
}

// Select maps the given instant to an engine decision. Pure and
// deterministic; no I/O, no error cases.
func Select(now time.Time) Decision {
	riyadhHour := (now.UTC().Hour() + riyadhOffsetHours) % 24
	peak := riyadhHour >= peakStartHour || riyadhHour < peakEndHour

	d := Decision{
		PeakTime:   peak,
		RiyadhHour: riyadhHour,
	}
	if peak {
		d.Primary = EngineClaude
		d.Agentic = ToolZai
	} else {
		d.Primary = EngineGroq
		d.Agentic = ToolBrave
	}
	return d
}
