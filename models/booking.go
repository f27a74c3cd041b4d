package models

import "time"

// Defaults applied when a booking request omits the optional fields.
const (
	DefaultService         = "AI Consultation"
	DefaultDurationMinutes = 60
)

// BookingRequest is a fully-specified attempt to reserve one slot. It is
// built once the session has collected date, time, and contact details, and
// is never mutated after submission.
type BookingRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone,omitempty"`
	Slot            TimeSlot `json:"slot"`
	Service         string   `json:"service"`
	DurationMinutes int      `json:"durationMinutes"`
	SendEmail       bool     `json:"sendEmail"`
	SendSms         bool     `json:"sendSms"`
}

// NewBookingRequest builds a BookingRequest with defaults applied.
// A missing phone number always forces SendSms off, whatever the caller asked for.
func NewBookingRequest(name, email, phone string, slot TimeSlot, service string, durationMinutes int, sendEmail, sendSms bool) BookingRequest {
	if service == "" {
		service = DefaultService
	}
	if durationMinutes <= 0 {
		durationMinutes = DefaultDurationMinutes
	}
	if phone == "" {
		sendSms = false
	}
	return BookingRequest{
		Name:            name,
		Email:           email,
		Phone:           phone,
		Slot:            slot,
		Service:         service,
		DurationMinutes: durationMinutes,
		SendEmail:       sendEmail,
		SendSms:         sendSms,
	}
}

// BookingConfirmation is the durable result of a successful schedule call.
// Rebooking produces a new confirmation, never a mutation of an old one.
type BookingConfirmation struct {
	AppointmentID   string `bson:"appointmentId" json:"appointmentId"`
	CalendarEventID string `bson:"calendarEventId,omitempty" json:"calendarEventId,omitempty"`
	MeetingLink     string `bson:"meetingLink,omitempty" json:"meetingLink,omitempty"`
	MeetingID       string `bson:"meetingId,omitempty" json:"meetingId,omitempty"`
	Message         string `bson:"message" json:"message"`
}

// AppointmentRecord is the locally persisted trace of a confirmed booking.
// It backs the "did this booking already happen" lookup used before retrying
// a timed-out schedule call.
type AppointmentRecord struct {
	ID              string    `bson:"id" json:"id"`
	AppointmentID   string    `bson:"appointmentId" json:"appointmentId"`
	CalendarEventID string    `bson:"calendarEventId,omitempty" json:"calendarEventId,omitempty"`
	MeetingLink     string    `bson:"meetingLink,omitempty" json:"meetingLink,omitempty"`
	MeetingID       string    `bson:"meetingId,omitempty" json:"meetingId,omitempty"`
	Name            string    `bson:"name" json:"name"`
	Email           string    `bson:"email" json:"email"`
	Phone           string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Date            string    `bson:"date" json:"date"`
	Time            string    `bson:"time" json:"time"`
	Service         string    `bson:"service" json:"service"`
	DurationMinutes int       `bson:"durationMinutes" json:"durationMinutes"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}
