package calendar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"bookify/utils"
)

// Safety cap on recurrence expansion; a 31-day query window never comes close.
const maxOccurrencesPerEvent = 1000

// ICSBusySource reads the agency calendar as an ICS feed and derives busy
// intervals from its events, expanding RRULE recurrences and honoring EXDATE.
type ICSBusySource struct {
	url    string
	client *http.Client
}

// NewICSBusySource constructs a BusySource over an ICS subscription URL.
func NewICSBusySource(url string, timeout time.Duration) *ICSBusySource {
	return &ICSBusySource{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// BusyIntervals fetches and parses the feed, returning merged busy intervals
// overlapping [from, to). All-day events block their whole calendar days.
func (s *ICSBusySource) BusyIntervals(ctx context.Context, from, to time.Time) ([]BusyInterval, error) {
	body, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse ICS feed: %w", err)
	}

	logger := utils.GetLogger()
	var intervals []BusyInterval
	for _, ve := range cal.Events() {
		evs, err := expandEvent(ve, from, to)
		if err != nil {
			// Skip the malformed event, keep the rest of the feed usable.
			logger.Warn("skipping unparseable calendar event", zap.Error(err))
			continue
		}
		intervals = append(intervals, evs...)
	}

	return mergeIntervals(intervals), nil
}

func (s *ICSBusySource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ICS feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch ICS feed: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// expandEvent converts one VEVENT into the busy intervals it contributes
// within [from, to).
func expandEvent(ve *ical.VEvent, from, to time.Time) ([]BusyInterval, error) {
	start, err := ve.GetStartAt()
	if err != nil {
		return nil, fmt.Errorf("event missing DTSTART: %w", err)
	}
	end, err := ve.GetEndAt()
	if err != nil || !end.After(start) {
		// DTEND is optional; default to a one-hour block.
		end = start.Add(time.Hour)
	}
	allDay := isAllDay(ve)
	duration := end.Sub(start)

	var rawRRule string
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		rawRRule = p.Value
	}

	if rawRRule == "" {
		iv := eventInterval(start, end, allDay)
		if iv.Overlaps(from, to) {
			return []BusyInterval{iv}, nil
		}
		return nil, nil
	}

	r, err := rrule.StrToRRule(rawRRule)
	if err != nil {
		return nil, fmt.Errorf("parse RRULE %q: %w", rawRRule, err)
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range exDates(ve, start.Location()) {
		set.ExDate(ex.In(start.Location()))
	}

	// Between() works in the event's own location; widen the range by the
	// event duration so occurrences straddling the boundary are kept.
	rangeStart := from.Add(-duration).In(start.Location())
	rangeEnd := to.In(start.Location())
	occs := set.Between(rangeStart, rangeEnd, true)
	if len(occs) > maxOccurrencesPerEvent {
		occs = occs[:maxOccurrencesPerEvent]
	}

	var out []BusyInterval
	for _, occStart := range occs {
		iv := eventInterval(occStart, occStart.Add(duration), allDay)
		if iv.Overlaps(from, to) {
			out = append(out, iv)
		}
	}
	return out, nil
}

func eventInterval(start, end time.Time, allDay bool) BusyInterval {
	if allDay {
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		return BusyInterval{Start: day, End: day.Add(24 * time.Hour)}
	}
	return BusyInterval{Start: start, End: end}
}

func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}

// exDates extracts EXDATE values. A TZID parameter on the property wins;
// otherwise floating values are read in the event's own location so they line
// up with the occurrences they are meant to cancel.
func exDates(ve *ical.VEvent, eventLoc *time.Location) []time.Time {
	var out []time.Time
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		loc := eventLoc
		if params := p.ICalParameters; params != nil {
			if vs, ok := params["TZID"]; ok && len(vs) > 0 {
				if tz, err := time.LoadLocation(vs[0]); err == nil {
					loc = tz
				}
			}
		}
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, loc); err == nil {
				out = append(out, t)
			}
		}
	}
	return out
}

// parseICSTime handles the basic DATE/DATE-TIME/UTC forms used by EXDATE.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}

// mergeIntervals sorts intervals and coalesces overlapping or adjacent ones.
func mergeIntervals(intervals []BusyInterval) []BusyInterval {
	if len(intervals) == 0 {
		return intervals
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})
	merged := []BusyInterval{intervals[0]}
	for _, cur := range intervals[1:] {
		last := &merged[len(merged)-1]
		if !cur.Start.After(last.End) {
			if cur.End.After(last.End) {
				last.End = cur.End
			}
		} else {
			merged = append(merged, cur)
		}
	}
	return merged
}
