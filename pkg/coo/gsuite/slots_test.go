package gsuite

import (
	"errors"
	"testing"
	"time"
)

func riyadh(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, riyadhZone)
}

func TestFirstFreeSlot(t *testing.T) {
	meeting := 30 * time.Minute

	t.Run("empty calendar books the next slot", func(t *testing.T) {
		from := riyadh(2026, time.September, 1, 10, 12)
		slot, err := FirstFreeSlot(nil, from, meeting)
		if err != nil {
			t.Fatalf("FirstFreeSlot() error = %v", err)
		}
		if !slot.Equal(riyadh(2026, time.September, 1, 10, 30)) {
			t.Errorf("slot = %v, want 10:30", slot)
		}
	})

	t.Run("skips busy periods", func(t *testing.T) {
		busy := []Interval{
			{Start: riyadh(2026, time.September, 1, 10, 30), End: riyadh(2026, time.September, 1, 12, 0)},
		}
		from := riyadh(2026, time.September, 1, 10, 12)
		slot, err := FirstFreeSlot(busy, from, meeting)
		if err != nil {
			t.Fatalf("FirstFreeSlot() error = %v", err)
		}
		if !slot.Equal(riyadh(2026, time.September, 1, 12, 0)) {
			t.Errorf("slot = %v, want 12:00", slot)
		}
	})

	t.Run("rolls past end of workday", func(t *testing.T) {
		from := riyadh(2026, time.September, 1, 16, 45)
		slot, err := FirstFreeSlot(nil, from, time.Hour)
		if err != nil {
			t.Fatalf("FirstFreeSlot() error = %v", err)
		}
		if !slot.Equal(riyadh(2026, time.September, 2, 9, 0)) {
			t.Errorf("slot = %v, want next day 09:00", slot)
		}
	})

	t.Run("before working hours waits for opening", func(t *testing.T) {
		from := riyadh(2026, time.September, 1, 6, 0)
		slot, err := FirstFreeSlot(nil, from, meeting)
		if err != nil {
			t.Fatalf("FirstFreeSlot() error = %v", err)
		}
		if !slot.Equal(riyadh(2026, time.September, 1, 9, 0)) {
			t.Errorf("slot = %v, want 09:00", slot)
		}
	})

	t.Run("fully booked horizon errors", func(t *testing.T) {
		busy := []Interval{
			{Start: riyadh(2026, time.September, 1, 0, 0), End: riyadh(2026, time.September, 30, 0, 0)},
		}
		from := riyadh(2026, time.September, 1, 9, 0)
		if _, err := FirstFreeSlot(busy, from, meeting); !errors.Is(err, ErrNoFreeSlot) {
			t.Errorf("error = %v, want ErrNoFreeSlot", err)
		}
	})

	t.Run("meeting longer than remaining day moves on", func(t *testing.T) {
		busy := []Interval{
			{Start: riyadh(2026, time.September, 1, 9, 0), End: riyadh(2026, time.September, 1, 15, 0)},
		}
		from := riyadh(2026, time.September, 1, 9, 0)
		slot, err := FirstFreeSlot(busy, from, 3*time.Hour)
		if err != nil {
			t.Fatalf("FirstFreeSlot() error = %v", err)
		}
		if !slot.Equal(riyadh(2026, time.September, 2, 9, 0)) {
			t.Errorf("slot = %v, want next day 09:00", slot)
		}
	})
}
