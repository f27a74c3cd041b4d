package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icsServer(t *testing.T, status int, body string) *ICSBusySource {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewICSBusySource(srv.URL, 5*time.Second)
}

func feed(lines ...string) string {
	all := append([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//bookify//test//EN",
	}, lines...)
	all = append(all, "END:VCALENDAR")
	return strings.Join(all, "\r\n") + "\r\n"
}

func TestICSBusyIntervalsSingleEvent(t *testing.T) {
	src := icsServer(t, http.StatusOK, feed(
		"BEGIN:VEVENT",
		"UID:call-1",
		"DTSTART:20250602T140000Z",
		"DTEND:20250602T150000Z",
		"SUMMARY:Client call",
		"END:VEVENT",
	))

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)

	intervals, err := src.BusyIntervals(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.True(t, intervals[0].Start.Equal(time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)))
	assert.True(t, intervals[0].End.Equal(time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)))
}

func TestICSBusyIntervalsOutsideRangeDropped(t *testing.T) {
	src := icsServer(t, http.StatusOK, feed(
		"BEGIN:VEVENT",
		"UID:past-1",
		"DTSTART:20250101T140000Z",
		"DTEND:20250101T150000Z",
		"END:VEVENT",
	))

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)

	intervals, err := src.BusyIntervals(context.Background(), from, to)
	require.NoError(t, err)
	assert.Empty(t, intervals)
}

func TestICSBusyIntervalsRecurrenceWithExdate(t *testing.T) {
	src := icsServer(t, http.StatusOK, feed(
		"BEGIN:VEVENT",
		"UID:standup",
		"DTSTART:20250603T160000Z",
		"DTEND:20250603T163000Z",
		"RRULE:FREQ=WEEKLY;COUNT=4",
		"EXDATE:20250610T160000Z",
		"SUMMARY:Weekly standup",
		"END:VEVENT",
	))

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	intervals, err := src.BusyIntervals(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, intervals, 3, "four occurrences minus one EXDATE")

	days := make([]int, 0, len(intervals))
	for _, iv := range intervals {
		days = append(days, iv.Start.UTC().Day())
		assert.Equal(t, 30*time.Minute, iv.End.Sub(iv.Start))
	}
	assert.Equal(t, []int{3, 17, 24}, days)
}

func TestICSBusyIntervalsExdateFloatingUsesEventZone(t *testing.T) {
	// EXDATE without a zone designator must be read in the event's own
	// location, not the server's, or the cancelled occurrence stays busy.
	src := icsServer(t, http.StatusOK, feed(
		"BEGIN:VEVENT",
		"UID:standup-floating",
		"DTSTART:20250603T160000Z",
		"DTEND:20250603T163000Z",
		"RRULE:FREQ=WEEKLY;COUNT=4",
		"EXDATE:20250610T160000",
		"END:VEVENT",
	))

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	intervals, err := src.BusyIntervals(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, intervals, 3)
	for _, iv := range intervals {
		assert.NotEqual(t, 10, iv.Start.UTC().Day(), "the excluded occurrence must not appear")
	}
}

func TestICSBusyIntervalsExdateWithTzid(t *testing.T) {
	// 11:00 America/Chicago is 16:00 UTC in June; the TZID parameter must be
	// honored for the exclusion to land on the right occurrence.
	src := icsServer(t, http.StatusOK, feed(
		"BEGIN:VEVENT",
		"UID:standup-tzid",
		"DTSTART:20250603T160000Z",
		"DTEND:20250603T163000Z",
		"RRULE:FREQ=WEEKLY;COUNT=4",
		"EXDATE;TZID=America/Chicago:20250610T110000",
		"END:VEVENT",
	))

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	intervals, err := src.BusyIntervals(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, intervals, 3)
	for _, iv := range intervals {
		assert.NotEqual(t, 10, iv.Start.UTC().Day(), "the excluded occurrence must not appear")
	}
}

func TestICSBusyIntervalsAllDayBlocksWholeDay(t *testing.T) {
	src := icsServer(t, http.StatusOK, feed(
		"BEGIN:VEVENT",
		"UID:offsite",
		"DTSTART;VALUE=DATE:20250605",
		"DTEND;VALUE=DATE:20250606",
		"SUMMARY:Team offsite",
		"END:VEVENT",
	))

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)

	intervals, err := src.BusyIntervals(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.Equal(t, 24*time.Hour, intervals[0].End.Sub(intervals[0].Start))
	assert.Zero(t, intervals[0].Start.Hour())
	assert.Equal(t, 5, intervals[0].Start.Day())
}

func TestICSBusyIntervalsMergesOverlaps(t *testing.T) {
	src := icsServer(t, http.StatusOK, feed(
		"BEGIN:VEVENT",
		"UID:a",
		"DTSTART:20250602T100000Z",
		"DTEND:20250602T110000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:b",
		"DTSTART:20250602T103000Z",
		"DTEND:20250602T120000Z",
		"END:VEVENT",
	))

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)

	intervals, err := src.BusyIntervals(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, intervals, 1, "overlapping events coalesce into one busy block")
	assert.True(t, intervals[0].Start.Equal(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)))
	assert.True(t, intervals[0].End.Equal(time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)))
}

func TestICSBusyIntervalsFetchFailure(t *testing.T) {
	src := icsServer(t, http.StatusBadGateway, "upstream broken")

	_, err := src.BusyIntervals(context.Background(),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
}

func TestICSBusyIntervalsMalformedFeed(t *testing.T) {
	src := icsServer(t, http.StatusOK, "this is not a calendar")

	_, err := src.BusyIntervals(context.Background(),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
}

func TestBusyIntervalOverlaps(t *testing.T) {
	iv := BusyInterval{
		Start: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC),
	}

	assert.True(t, iv.Overlaps(
		time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC),
		time.Date(2025, 6, 2, 11, 30, 0, 0, time.UTC)))
	// Half-open: an interval ending exactly at the query start does not overlap.
	assert.False(t, iv.Overlaps(
		time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)))
	assert.False(t, iv.Overlaps(
		time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)))
}
