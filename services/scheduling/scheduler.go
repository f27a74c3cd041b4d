package scheduling

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	appointmentRepo "bookify/database/repository/appointment"
	"bookify/models"
	"bookify/utils"
)

// SchedulingEngine attempts to durably reserve slots. It is the last line of
// defense against double-booking: the availability snapshot a caller holds
// may be stale by the time Schedule runs, and the provider's rejection is
// authoritative.
type SchedulingEngine interface {
	// Schedule validates the request, then asks the provider to create the
	// calendar event, meeting, and notifications. It never reports success
	// unless the calendar event was actually created. Failures are typed:
	// *ValidationError, *SchedulingConflictError, *SchedulingProviderError.
	Schedule(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error)
	// FindExistingConfirmation answers "did this booking already happen" for
	// a requester/slot pair. Callers whose Schedule call timed out must check
	// here before re-submitting; there is no idempotency key to lean on.
	FindExistingConfirmation(ctx context.Context, email, date, timeOfDay string) (*models.BookingConfirmation, error)
	// ListBookings returns the locally recorded booking history for one email.
	ListBookings(ctx context.Context, email string) ([]models.AppointmentRecord, error)
}

// DefaultSchedulingEngine is the production implementation.
type DefaultSchedulingEngine struct {
	Provider SchedulingProvider
	Repo     appointmentRepo.AppointmentRepository
	Clock    Clock
}

func (se *DefaultSchedulingEngine) Schedule(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error) {
	logger := utils.GetLogger()

	// All validation happens before any network call.
	if err := se.validate(req); err != nil {
		return nil, err
	}

	confirmation, err := se.Provider.Schedule(ctx, req)
	if err != nil {
		logger.Warn("schedule attempt failed",
			zap.String("date", req.Slot.Date),
			zap.String("time", req.Slot.Time),
			zap.Error(err))
		return nil, err
	}

	// Persist the local trace. The provider already committed the booking, so
	// a record write failure is logged rather than surfaced as a booking
	// failure; the lookup path just loses this one entry.
	rec := models.AppointmentRecord{
		AppointmentID:   confirmation.AppointmentID,
		CalendarEventID: confirmation.CalendarEventID,
		MeetingLink:     confirmation.MeetingLink,
		MeetingID:       confirmation.MeetingID,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Date:            req.Slot.Date,
		Time:            req.Slot.Time,
		Service:         req.Service,
		DurationMinutes: req.DurationMinutes,
		CreatedAt:       se.Clock.Now(),
	}
	if err := se.Repo.Insert(ctx, rec); err != nil {
		logger.Error("failed to persist appointment record",
			zap.String("appointmentID", confirmation.AppointmentID), zap.Error(err))
	}

	logger.Info("appointment scheduled",
		zap.String("appointmentID", confirmation.AppointmentID),
		zap.String("date", req.Slot.Date),
		zap.String("time", req.Slot.Time))
	return confirmation, nil
}

func (se *DefaultSchedulingEngine) FindExistingConfirmation(ctx context.Context, email, date, timeOfDay string) (*models.BookingConfirmation, error) {
	rec, err := se.Repo.FindByBookingFingerprint(ctx, email, date, timeOfDay)
	if err != nil {
		return nil, &SchedulingProviderError{Err: err}
	}
	if rec == nil {
		return nil, nil
	}
	return &models.BookingConfirmation{
		AppointmentID:   rec.AppointmentID,
		CalendarEventID: rec.CalendarEventID,
		MeetingLink:     rec.MeetingLink,
		MeetingID:       rec.MeetingID,
		Message:         "Appointment already scheduled",
	}, nil
}

func (se *DefaultSchedulingEngine) ListBookings(ctx context.Context, email string) ([]models.AppointmentRecord, error) {
	recs, err := se.Repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, &SchedulingProviderError{Err: err}
	}
	return recs, nil
}

func (se *DefaultSchedulingEngine) validate(req models.BookingRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return NewValidationError("name", "required")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return NewValidationError("email", "required")
	}
	if !strings.Contains(email, "@") {
		return NewValidationError("email", "malformed address")
	}
	if req.DurationMinutes <= 0 {
		return NewValidationError("durationMinutes", "must be positive")
	}
	if _, err := time.ParseInLocation(models.DateLayout, req.Slot.Date, BusinessLocation()); err != nil {
		return NewValidationError("date", "expected YYYY-MM-DD")
	}
	if _, err := time.Parse(models.TimeLayout, req.Slot.Time); err != nil {
		return NewValidationError("time", "expected 24-hour HH:MM")
	}
	if !IsCanonicalSlotTime(req.Slot.Time) {
		return NewValidationError("time", "outside business-hours slot boundaries")
	}
	if !WithinBookingHorizon(se.Clock, req.Slot.Date) {
		return NewValidationError("date", "bookable dates run from tomorrow through 30 days ahead")
	}
	return nil
}
