package engine

import (
	"testing"
	"time"
)

func at(utcHour, utcMinute int) time.Time {
	return time.Date(2025, 6, 15, utcHour, utcMinute, 0, 0, time.UTC)
}

func TestSelect(t *testing.T) {
	t.Run("peak window boundaries", func(t *testing.T) {
		tests := []struct {
			name       string
			now        time.Time
			wantPeak   bool
			wantRiyadh int
		}{
			{"one minute before window opens", at(16, 59), false, 19},
			{"window opens at 20:00 Riyadh", at(17, 0), true, 20},
			{"last minute of window", at(21, 59), true, 0},
			{"window closes at 01:00 Riyadh", at(22, 0), false, 1},
			{"midnight Riyadh is peak", at(21, 0), true, 0},
			{"noon Riyadh is off-peak", at(9, 0), false, 12},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				d := Select(tt.now)
				if d.PeakTime != tt.wantPeak {
					t.Errorf("PeakTime = %v, want %v", d.PeakTime, tt.wantPeak)
				}
				if d.RiyadhHour != tt.wantRiyadh {
					t.Errorf("RiyadhHour = %d, want %d", d.RiyadhHour, tt.wantRiyadh)
				}
			})
		}
	})

	t.Run("engine and tool pairing follows the window", func(t *testing.T) {
		for h := 0; h < 24; h++ {
			d := Select(at(h, 30))
			riyadh := (h + 3) % 24
			wantPeak := riyadh >= 20 || riyadh < 1
			if d.PeakTime != wantPeak {
				t.Errorf("hour %02d UTC: PeakTime = %v, want %v", h, d.PeakTime, wantPeak)
			}
			if wantPeak {
				if d.Primary != EngineClaude || d.Agentic != ToolZai {
					t.Errorf("hour %02d UTC: got %s/%s, want claude/zai", h, d.Primary, d.Agentic)
				}
			} else {
				if d.Primary != EngineGroq || d.Agentic != ToolBrave {
					t.Errorf("hour %02d UTC: got %s/%s, want groq/brave", h, d.Primary, d.Agentic)
				}
			}
		}
	})

	t.Run("non-UTC input is normalized", func(t *testing.T) {
		// 20:00 in Riyadh expressed as a +03:00 local time.
		loc := time.FixedZone("AST", 3*3600)
		d := Select(time.Date(2025, 6, 15, 20, 0, 0, 0, loc))
		if !d.PeakTime || d.RiyadhHour != 20 {
			t.Errorf("got peak=%v hour=%d, want peak=true hour=20", d.PeakTime, d.RiyadhHour)
		}
	})
}
