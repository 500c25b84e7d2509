package gsuite

import "time"

// Scheduling runs over Riyadh working hours.
const (
	workdayStartHour  = 9
	workdayEndHour    = 17
	slotGranularity   = 30 * time.Minute
	schedulingHorizon = 14 * 24 * time.Hour
)

var riyadhZone = time.FixedZone("AST", 3*60*60)

// Interval is a busy period on the calendar.
type Interval struct {
	Start time.Time
	End   time.Time
}

// FirstFreeSlot scans forward from the given time in half-hour steps
// and returns the start of the first opening of the given duration
// within Riyadh working hours. It looks two weeks ahead.
func FirstFreeSlot(busy []Interval, from time.Time, duration time.Duration) (time.Time, error) {
	if duration <= 0 {
		duration = slotGranularity
	}

	cursor := roundUpToSlot(from.In(riyadhZone))
	horizon := from.Add(schedulingHorizon)

	for cursor.Before(horizon) {
		end := cursor.Add(duration)
		if !withinWorkday(cursor, end) {
			cursor = nextWorkdayStart(cursor)
			continue
		}
		if conflict := firstConflict(busy, cursor, end); conflict != nil {
			cursor = roundUpToSlot(conflict.End.In(riyadhZone))
			continue
		}
		return cursor, nil
	}
	return time.Time{}, ErrNoFreeSlot
}

func roundUpToSlot(t time.Time) time.Time {
	rounded := t.Truncate(slotGranularity)
	if rounded.Before(t) {
		rounded = rounded.Add(slotGranularity)
	}
	return rounded
}

func withinWorkday(start, end time.Time) bool {
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), workdayStartHour, 0, 0, 0, riyadhZone)
	dayEnd := time.Date(start.Year(), start.Month(), start.Day(), workdayEndHour, 0, 0, 0, riyadhZone)
	return !start.Before(dayStart) && !end.After(dayEnd)
}

func nextWorkdayStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), workdayStartHour, 0, 0, 0, riyadhZone)
	if t.Before(day) {
		return day
	}
	return day.Add(24 * time.Hour)
}

func firstConflict(busy []Interval, start, end time.Time) *Interval {
	for i := range busy {
		if busy[i].Start.Before(end) && busy[i].End.After(start) {
			return &busy[i]
		}
	}
	return nil
}
