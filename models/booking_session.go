package models

// SessionState is the booking flow step a session is currently in.
type SessionState string

const (
	StateSelectingDate   SessionState = "selecting_date"
	StateSelectingTime   SessionState = "selecting_time"
	StateEnteringDetails SessionState = "entering_details"
	StateSubmitting      SessionState = "submitting"
	StateConfirmed       SessionState = "confirmed"
	StateFailed          SessionState = "failed"
	StateAbandoned       SessionState = "abandoned"
)

// ContactDetails is the requester info collected in the entering_details step.
type ContactDetails struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	SendEmail bool   `json:"sendEmail"`
	SendSms   bool   `json:"sendSms"`
}

// BookingSession holds context between availability resolution and the final
// booking. The availability snapshot is point-in-time only: any concurrent
// booking against the same calendar can invalidate it, so the scheduler is
// the final authority on whether a slot is still free.
type BookingSession struct {
	SessionID       string               `json:"sessionId"`
	State           SessionState         `json:"state"`
	Service         string               `json:"service"`
	DurationMinutes int                  `json:"durationMinutes"`
	SelectedDate    string               `json:"selectedDate,omitempty"`
	SelectedTime    string               `json:"selectedTime,omitempty"`
	Availability    []TimeSlot           `json:"availability,omitempty"`
	Degraded        bool                 `json:"degraded,omitempty"` // snapshot is the unfiltered fallback set
	Contact         *ContactDetails      `json:"contact,omitempty"`
	Confirmation    *BookingConfirmation `json:"confirmation,omitempty"`
	FailureKind     string               `json:"failureKind,omitempty"`
	FailureReason   string               `json:"failureReason,omitempty"`
}

// SessionResponse is the wire shape returned by the session endpoints.
type SessionResponse struct {
	SessionID    string               `json:"sessionID"`
	State        SessionState         `json:"state"`
	Availability []TimeSlot           `json:"availability,omitempty"`
	Degraded     bool                 `json:"degraded,omitempty"`
	Confirmation *BookingConfirmation `json:"confirmation,omitempty"`
	FailureKind  string               `json:"failureKind,omitempty"`
	Failure      string               `json:"failure,omitempty"`
}
