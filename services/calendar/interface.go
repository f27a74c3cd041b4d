package calendar

import (
	"context"
	"time"
)

// BusyInterval is a half-open [Start, End) span during which the agency
// calendar is occupied.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the interval intersects [start, end).
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && start.Before(b.End)
}

// BusySource yields the busy intervals of the agency calendar overlapping a
// time range. Implementations query an external calendar; callers must treat
// the result as a point-in-time snapshot.
type BusySource interface {
	BusyIntervals(ctx context.Context, from, to time.Time) ([]BusyInterval, error)
}
