package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bookify/models"
	"bookify/services/calendar"
	"bookify/utils"
)

// AvailabilityEngine computes free/busy status of candidate slots against the
// agency calendar.
type AvailabilityEngine interface {
	// ResolveAvailability computes free slots across a date range. A failed
	// calendar query surfaces as *AvailabilityQueryError; a successful query
	// with nothing free returns an empty result and nil error.
	ResolveAvailability(ctx context.Context, window models.AvailabilityWindow) (*models.AvailabilityResult, error)
	// GetAvailableSlots is the narrow single-day helper. When the calendar
	// query fails it degrades to the full canonical candidate list instead of
	// blocking the booking flow; the second return reports that degradation.
	// Bad input is not absorbed: it comes back as a *ValidationError.
	GetAvailableSlots(ctx context.Context, date string, durationMinutes int) ([]models.TimeSlot, bool, error)
}

// DefaultAvailabilityEngine resolves availability against a BusySource.
type DefaultAvailabilityEngine struct {
	Busy calendar.BusySource
}

func (e *DefaultAvailabilityEngine) ResolveAvailability(ctx context.Context, window models.AvailabilityWindow) (*models.AvailabilityResult, error) {
	loc := BusinessLocation()

	start, err := time.ParseInLocation(models.DateLayout, window.StartDate, loc)
	if err != nil {
		return nil, NewValidationError("startDate", fmt.Sprintf("invalid date %q", window.StartDate))
	}
	end, err := time.ParseInLocation(models.DateLayout, window.EndDate, loc)
	if err != nil {
		return nil, NewValidationError("endDate", fmt.Sprintf("invalid date %q", window.EndDate))
	}
	if end.Before(start) {
		return nil, NewValidationError("endDate", "endDate precedes startDate")
	}
	if window.DurationMinutes <= 0 {
		return nil, NewValidationError("durationMinutes", "must be positive")
	}

	busy, err := e.Busy.BusyIntervals(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, &AvailabilityQueryError{Err: err}
	}

	duration := time.Duration(window.DurationMinutes) * time.Minute
	candidates := candidateTimes(window.BusinessHoursOnly)

	result := &models.AvailabilityResult{
		Slots:           []models.TimeSlot{},
		DurationMinutes: window.DurationMinutes,
		Timezone:        BusinessTimezone,
	}

	// Days ascending, candidate times ascending within each day; callers rely
	// on this ordering and do not re-sort.
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format(models.DateLayout)
		for _, tod := range candidates {
			slotStart, err := SlotStart(date, tod)
			if err != nil {
				return nil, NewValidationError("time", fmt.Sprintf("invalid slot time %q", tod))
			}
			if overlapsAny(busy, slotStart, slotStart.Add(duration)) {
				continue
			}
			slot, err := NewTimeSlot(date, tod)
			if err != nil {
				return nil, err
			}
			result.Slots = append(result.Slots, slot)
		}
	}
	result.TotalAvailable = len(result.Slots)
	return result, nil
}

func (e *DefaultAvailabilityEngine) GetAvailableSlots(ctx context.Context, date string, durationMinutes int) ([]models.TimeSlot, bool, error) {
	if durationMinutes <= 0 {
		durationMinutes = models.DefaultDurationMinutes
	}
	window := models.AvailabilityWindow{
		StartDate:         date,
		EndDate:           date,
		DurationMinutes:   durationMinutes,
		BusinessHoursOnly: true,
	}
	result, err := e.ResolveAvailability(ctx, window)
	if err == nil {
		return result.Slots, false, nil
	}

	var queryErr *AvailabilityQueryError
	if !errors.As(err, &queryErr) {
		// Bad input, not a broken calendar; the caller must see it.
		return nil, false, err
	}

	// A broken calendar integration must not block all bookings: offer the
	// unfiltered canonical set and let the scheduler reject stale picks.
	logger := utils.GetLogger()
	logger.Warn("availability query failed, falling back to canonical slots",
		zap.String("date", date), zap.Error(err))

	fallback := make([]models.TimeSlot, 0, 17)
	for _, tod := range GenerateCandidateSlots() {
		slot, serr := NewTimeSlot(date, tod)
		if serr != nil {
			logger.Error("failed to build fallback slot",
				zap.String("date", date), zap.String("time", tod), zap.Error(serr))
			continue
		}
		fallback = append(fallback, slot)
	}
	return fallback, true, nil
}

// candidateTimes returns the canonical business-hours set, or the full-day
// 30-minute grid when businessHoursOnly is off. Every call site in the
// booking flow passes true.
func candidateTimes(businessHoursOnly bool) []string {
	if businessHoursOnly {
		return GenerateCandidateSlots()
	}
	var out []string
	for minutes := 0; minutes < 24*60; minutes += slotStepMinutes {
		out = append(out, fmt.Sprintf("%02d:%02d", minutes/60, minutes%60))
	}
	return out
}

func overlapsAny(busy []calendar.BusyInterval, start, end time.Time) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
