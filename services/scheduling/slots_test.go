package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// clockAt builds a fixed clock at midnight business time on the given date.
func clockAt(date string) fixedClock {
	t, err := time.ParseInLocation("2006-01-02", date, BusinessLocation())
	if err != nil {
		panic(err)
	}
	return fixedClock{now: t.Add(10 * time.Hour)}
}

func TestGenerateCandidateSlots(t *testing.T) {
	slots := GenerateCandidateSlots()

	require.Len(t, slots, 17)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "17:00", slots[len(slots)-1])

	seen := make(map[string]bool)
	for i, s := range slots {
		assert.False(t, seen[s], "duplicate slot %s", s)
		seen[s] = true
		if i > 0 {
			assert.Less(t, slots[i-1], s, "slots must ascend")
		}
	}

	// Pure: repeated calls yield the identical sequence.
	assert.Equal(t, slots, GenerateCandidateSlots())
}

func TestIsCanonicalSlotTime(t *testing.T) {
	assert.True(t, IsCanonicalSlotTime("09:00"))
	assert.True(t, IsCanonicalSlotTime("16:30"))
	assert.True(t, IsCanonicalSlotTime("17:00"))
	assert.False(t, IsCanonicalSlotTime("08:30"))
	assert.False(t, IsCanonicalSlotTime("17:30"))
	assert.False(t, IsCanonicalSlotTime("09:15"))
	assert.False(t, IsCanonicalSlotTime("9:00"))
}

func TestFormatTime12Hour(t *testing.T) {
	assert.Equal(t, "9:00 AM", FormatTime12Hour("09:00"))
	assert.Equal(t, "12:30 PM", FormatTime12Hour("12:30"))
	assert.Equal(t, "5:00 PM", FormatTime12Hour("17:00"))
}

func TestNewTimeSlot(t *testing.T) {
	slot, err := NewTimeSlot("2025-06-02", "09:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", slot.Date)
	assert.Equal(t, "09:00", slot.Time)
	assert.Equal(t, "9:00 AM", slot.Display)
	// June is CDT (UTC-5).
	assert.Equal(t, "2025-06-02T09:00:00-05:00", slot.Datetime)
}

func TestBookingHorizon(t *testing.T) {
	clock := clockAt("2025-06-01")

	assert.Equal(t, "2025-06-02", MinBookableDate(clock))
	assert.Equal(t, "2025-07-01", MaxBookableDate(clock))

	assert.False(t, WithinBookingHorizon(clock, "2025-06-01"), "today is not bookable")
	assert.True(t, WithinBookingHorizon(clock, "2025-06-02"))
	assert.True(t, WithinBookingHorizon(clock, "2025-07-01"))
	assert.False(t, WithinBookingHorizon(clock, "2025-07-02"), "beyond 30 days")
}
