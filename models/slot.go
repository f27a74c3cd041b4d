package models

// Wire formats for all scheduling dates and times. Slot times are always
// expressed in the fixed business timezone (America/Chicago).
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// TimeSlot is a bookable (date, time-of-day) pair in the business timezone.
type TimeSlot struct {
	Date     string `bson:"date" json:"date"`                             // e.g., "2025-06-02"
	Time     string `bson:"time" json:"time"`                             // 24-hour, e.g., "09:00"
	Datetime string `bson:"datetime,omitempty" json:"datetime,omitempty"` // RFC3339, timezone-qualified
	Display  string `bson:"display,omitempty" json:"display,omitempty"`   // 12-hour rendering, e.g., "9:00 AM"
}

// AvailabilityWindow scopes a single availability query. It is transient and
// never persisted.
type AvailabilityWindow struct {
	StartDate         string `json:"startDate" binding:"required"` // inclusive
	EndDate           string `json:"endDate" binding:"required"`   // inclusive
	DurationMinutes   int    `json:"durationMinutes"`
	BusinessHoursOnly bool   `json:"businessHoursOnly"`
}

// AvailabilityResult is the outcome of a successful availability query.
// Slots are ordered chronologically (date ascending, then time ascending);
// callers iterate them without re-sorting.
type AvailabilityResult struct {
	Slots           []TimeSlot `json:"slots"`
	TotalAvailable  int        `json:"totalAvailable"`
	DurationMinutes int        `json:"durationMinutes"`
	Timezone        string     `json:"timezone"`
}
