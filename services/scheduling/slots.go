package scheduling

import (
	"fmt"
	"sync"
	"time"

	"bookify/models"
)

// Business-hour policy. Fixed operator policy, not user input: consultations
// are offered 09:00-17:00 CST on 30-minute boundaries, so the last slot ends
// at 17:30. All slot times are in America/Chicago regardless of the
// requester's local timezone.
const (
	BusinessTimezone  = "America/Chicago"
	businessStartHour = 9
	businessEndHour   = 17
	slotStepMinutes   = 30
	horizonDays       = 30
)

var (
	businessLoc     *time.Location
	businessLocOnce sync.Once
)

// BusinessLocation returns the fixed business timezone.
func BusinessLocation() *time.Location {
	businessLocOnce.Do(func() {
		loc, err := time.LoadLocation(BusinessTimezone)
		if err != nil {
			// The tzdata for America/Chicago ships with every supported platform.
			panic(fmt.Sprintf("load business timezone: %v", err))
		}
		businessLoc = loc
	})
	return businessLoc
}

// GenerateCandidateSlots returns the canonical ordered time-of-day candidates
// for one business day: 09:00 through 17:00 on 30-minute steps, 17 in total.
// Pure and deterministic; it is also the fallback set offered when live
// availability cannot be determined.
func GenerateCandidateSlots() []string {
	slots := make([]string, 0, 17)
	for hour := businessStartHour; hour <= businessEndHour; hour++ {
		slots = append(slots, fmt.Sprintf("%02d:00", hour))
		if hour < businessEndHour {
			slots = append(slots, fmt.Sprintf("%02d:30", hour))
		}
	}
	return slots
}

// IsCanonicalSlotTime reports whether a time-of-day lies on one of the
// canonical slot boundaries.
func IsCanonicalSlotTime(timeOfDay string) bool {
	for _, s := range GenerateCandidateSlots() {
		if s == timeOfDay {
			return true
		}
	}
	return false
}

// SlotStart combines a wire date and time-of-day into the slot's start
// instant in the business timezone.
func SlotStart(date, timeOfDay string) (time.Time, error) {
	return time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, date+" "+timeOfDay, BusinessLocation())
}

// NewTimeSlot builds a fully-derived TimeSlot for a canonical (date, time)
// pair: the timezone-qualified datetime and the 12-hour display rendering.
func NewTimeSlot(date, timeOfDay string) (models.TimeSlot, error) {
	start, err := SlotStart(date, timeOfDay)
	if err != nil {
		return models.TimeSlot{}, err
	}
	return models.TimeSlot{
		Date:     date,
		Time:     timeOfDay,
		Datetime: start.Format(time.RFC3339),
		Display:  FormatTime12Hour(timeOfDay),
	}, nil
}

// FormatTime12Hour renders a 24-hour "HH:MM" as "H:MM AM/PM". Presentation
// only; no semantic bearing on the contract.
func FormatTime12Hour(time24 string) string {
	t, err := time.Parse(models.TimeLayout, time24)
	if err != nil {
		return time24
	}
	return t.Format("3:04 PM")
}

// MinBookableDate is the earliest schedulable date: tomorrow in business time.
func MinBookableDate(clock Clock) string {
	return clock.Now().In(BusinessLocation()).AddDate(0, 0, 1).Format(models.DateLayout)
}

// MaxBookableDate is the latest schedulable date: 30 days out in business time.
func MaxBookableDate(clock Clock) string {
	return clock.Now().In(BusinessLocation()).AddDate(0, 0, horizonDays).Format(models.DateLayout)
}

// WithinBookingHorizon reports whether a wire date falls in
// [MinBookableDate, MaxBookableDate]. YYYY-MM-DD compares lexically.
func WithinBookingHorizon(clock Clock, date string) bool {
	return date >= MinBookableDate(clock) && date <= MaxBookableDate(clock)
}
