package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/models"
	"bookify/services/calendar"
)

type fakeBusySource struct {
	intervals []calendar.BusyInterval
	err       error
	calls     int
}

func (f *fakeBusySource) BusyIntervals(ctx context.Context, from, to time.Time) ([]calendar.BusyInterval, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.intervals, nil
}

func busyAt(t *testing.T, date, start, end string) calendar.BusyInterval {
	t.Helper()
	s, err := SlotStart(date, start)
	require.NoError(t, err)
	e, err := SlotStart(date, end)
	require.NoError(t, err)
	return calendar.BusyInterval{Start: s, End: e}
}

func window(start, end string, duration int) models.AvailabilityWindow {
	return models.AvailabilityWindow{
		StartDate:         start,
		EndDate:           end,
		DurationMinutes:   duration,
		BusinessHoursOnly: true,
	}
}

func TestResolveAvailabilityOpenDay(t *testing.T) {
	engine := &DefaultAvailabilityEngine{Busy: &fakeBusySource{}}

	result, err := engine.ResolveAvailability(context.Background(), window("2025-06-02", "2025-06-02", 30))
	require.NoError(t, err)

	assert.Equal(t, 17, result.TotalAvailable)
	assert.Equal(t, 30, result.DurationMinutes)
	assert.Equal(t, BusinessTimezone, result.Timezone)
	require.Len(t, result.Slots, 17)
	assert.Equal(t, "2025-06-02", result.Slots[0].Date)
	assert.Equal(t, "09:00", result.Slots[0].Time)
	assert.Equal(t, "17:00", result.Slots[len(result.Slots)-1].Time)
}

func TestResolveAvailabilitySubtractsOverlaps(t *testing.T) {
	// Busy 09:15-09:45: both the 09:00 and 09:30 slots overlap it, 10:00 is free.
	busy := &fakeBusySource{intervals: []calendar.BusyInterval{
		{
			Start: mustSlotStart(t, "2025-06-02", "09:00").Add(15 * time.Minute),
			End:   mustSlotStart(t, "2025-06-02", "09:30").Add(15 * time.Minute),
		},
	}}
	engine := &DefaultAvailabilityEngine{Busy: busy}

	result, err := engine.ResolveAvailability(context.Background(), window("2025-06-02", "2025-06-02", 30))
	require.NoError(t, err)

	times := slotTimes(result.Slots)
	assert.NotContains(t, times, "09:00")
	assert.NotContains(t, times, "09:30")
	assert.Contains(t, times, "10:00")
	assert.Equal(t, 15, result.TotalAvailable)
}

func TestResolveAvailabilityDurationExtendsConflict(t *testing.T) {
	// Busy 10:00-10:30 with a 60-minute service: 09:30 ends 10:30 and collides too.
	busy := &fakeBusySource{intervals: []calendar.BusyInterval{
		busyAt(t, "2025-06-02", "10:00", "10:30"),
	}}
	engine := &DefaultAvailabilityEngine{Busy: busy}

	result, err := engine.ResolveAvailability(context.Background(), window("2025-06-02", "2025-06-02", 60))
	require.NoError(t, err)

	times := slotTimes(result.Slots)
	assert.NotContains(t, times, "09:30")
	assert.NotContains(t, times, "10:00")
	assert.Contains(t, times, "09:00")
	assert.Contains(t, times, "10:30")
}

func TestResolveAvailabilityChronologicalAcrossDays(t *testing.T) {
	engine := &DefaultAvailabilityEngine{Busy: &fakeBusySource{}}

	result, err := engine.ResolveAvailability(context.Background(), window("2025-06-02", "2025-06-04", 30))
	require.NoError(t, err)
	require.Len(t, result.Slots, 3*17)

	for i := 1; i < len(result.Slots); i++ {
		prev, cur := result.Slots[i-1], result.Slots[i]
		ordered := prev.Date < cur.Date || (prev.Date == cur.Date && prev.Time < cur.Time)
		require.True(t, ordered, "slots out of order at %d: %v then %v", i, prev, cur)
	}
}

func TestResolveAvailabilityFullyBookedIsNotAnError(t *testing.T) {
	// One busy block across the whole business day: zero free slots, nil error.
	busy := &fakeBusySource{intervals: []calendar.BusyInterval{
		busyAt(t, "2025-06-02", "09:00", "18:00"),
	}}
	engine := &DefaultAvailabilityEngine{Busy: busy}

	result, err := engine.ResolveAvailability(context.Background(), window("2025-06-02", "2025-06-02", 60))
	require.NoError(t, err)
	assert.Empty(t, result.Slots)
	assert.Zero(t, result.TotalAvailable)
}

func TestResolveAvailabilityQueryFailureIsTyped(t *testing.T) {
	engine := &DefaultAvailabilityEngine{Busy: &fakeBusySource{err: errors.New("connection refused")}}

	result, err := engine.ResolveAvailability(context.Background(), window("2025-06-02", "2025-06-02", 30))
	require.Error(t, err)
	assert.Nil(t, result)

	var queryErr *AvailabilityQueryError
	assert.True(t, errors.As(err, &queryErr), "expected AvailabilityQueryError, got %T", err)
}

func TestResolveAvailabilityValidation(t *testing.T) {
	engine := &DefaultAvailabilityEngine{Busy: &fakeBusySource{}}
	ctx := context.Background()

	cases := []struct {
		name   string
		window models.AvailabilityWindow
	}{
		{"reversed range", window("2025-06-05", "2025-06-02", 30)},
		{"bad start date", window("06/02/2025", "2025-06-02", 30)},
		{"zero duration", window("2025-06-02", "2025-06-02", 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.ResolveAvailability(ctx, tc.window)
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
		})
	}
}

func TestGetAvailableSlotsDegradedFallback(t *testing.T) {
	busy := &fakeBusySource{err: errors.New("calendar unreachable")}
	engine := &DefaultAvailabilityEngine{Busy: busy}

	slots, degraded, err := engine.GetAvailableSlots(context.Background(), "2025-06-02", 30)

	require.NoError(t, err)
	assert.True(t, degraded)
	require.Len(t, slots, 17, "fallback must offer the full canonical set")
	assert.Equal(t, "09:00", slots[0].Time)
	assert.Equal(t, "17:00", slots[len(slots)-1].Time)
	for _, s := range slots {
		assert.Equal(t, "2025-06-02", s.Date)
	}
}

func TestGetAvailableSlotsHealthyPath(t *testing.T) {
	busy := &fakeBusySource{intervals: []calendar.BusyInterval{
		busyAt(t, "2025-06-02", "09:00", "12:00"),
	}}
	engine := &DefaultAvailabilityEngine{Busy: busy}

	slots, degraded, err := engine.GetAvailableSlots(context.Background(), "2025-06-02", 30)

	require.NoError(t, err)
	assert.False(t, degraded)
	times := slotTimes(slots)
	assert.NotContains(t, times, "09:00")
	assert.NotContains(t, times, "11:30")
	assert.Contains(t, times, "12:00")
}

func TestGetAvailableSlotsBadDateIsRejected(t *testing.T) {
	// A malformed date is the caller's mistake, not a broken calendar; it must
	// surface as a validation error, never as the degraded fallback or an
	// empty "fully booked" answer.
	busy := &fakeBusySource{}
	engine := &DefaultAvailabilityEngine{Busy: busy}

	slots, degraded, err := engine.GetAvailableSlots(context.Background(), "not-a-date", 30)

	assert.Nil(t, slots)
	assert.False(t, degraded)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
	assert.Zero(t, busy.calls, "validation precedes the calendar query")
}

func mustSlotStart(t *testing.T, date, tod string) time.Time {
	t.Helper()
	ts, err := SlotStart(date, tod)
	require.NoError(t, err)
	return ts
}

func slotTimes(slots []models.TimeSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Time)
	}
	return out
}
