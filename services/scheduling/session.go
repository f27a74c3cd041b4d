package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bookify/models"
	"bookify/utils"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("booking session not found or expired")

// SessionStore persists booking sessions between steps.
type SessionStore interface {
	Save(ctx context.Context, session models.BookingSession, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*models.BookingSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionStore keeps sessions as JSON blobs in Redis.
type RedisSessionStore struct {
	Client *redis.Client
}

func (s *RedisSessionStore) Save(ctx context.Context, session models.BookingSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal booking session: %w", err)
	}
	return s.Client.Set(ctx, session.SessionID, data, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	data, err := s.Client.Get(ctx, sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var session models.BookingSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("parse booking session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.Client.Del(ctx, sessionID).Err()
}

// BookingSessionService drives the consumer-facing booking flow:
// selecting_date -> selecting_time -> entering_details -> submitting ->
// confirmed | failed, with failed -> entering_details as the only backward
// transition.
type BookingSessionService interface {
	Initiate(ctx context.Context, service string, durationMinutes int) (*models.BookingSession, error)
	SelectDate(ctx context.Context, sessionID, date string) (*models.BookingSession, error)
	SelectTime(ctx context.Context, sessionID, timeOfDay string) (*models.BookingSession, error)
	SetContact(ctx context.Context, sessionID string, contact models.ContactDetails) (*models.BookingSession, error)
	Confirm(ctx context.Context, sessionID string) (*models.BookingSession, error)
	Cancel(ctx context.Context, sessionID string) error
}

// DefaultBookingSessionService orchestrates the availability engine and the
// scheduling engine. It holds no locks between the two: a slot shown free can
// be claimed by anyone else before Confirm, and the scheduler's conflict
// answer wins.
type DefaultBookingSessionService struct {
	Availability AvailabilityEngine
	Scheduler    SchedulingEngine
	Store        SessionStore
	Clock        Clock
	TTL          time.Duration
}

func (s *DefaultBookingSessionService) Initiate(ctx context.Context, service string, durationMinutes int) (*models.BookingSession, error) {
	if service == "" {
		service = models.DefaultService
	}
	if durationMinutes <= 0 {
		durationMinutes = models.DefaultDurationMinutes
	}
	session := models.BookingSession{
		SessionID:       uuid.New().String(),
		State:           models.StateSelectingDate,
		Service:         service,
		DurationMinutes: durationMinutes,
	}
	if err := s.Store.Save(ctx, session, s.TTL); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *DefaultBookingSessionService) SelectDate(ctx context.Context, sessionID, date string) (*models.BookingSession, error) {
	session, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if isTerminal(session.State) {
		return nil, NewValidationError("state", "session already finished")
	}
	// Horizon is enforced before any availability query goes out.
	if !WithinBookingHorizon(s.Clock, date) {
		return nil, NewValidationError("date", "bookable dates run from tomorrow through 30 days ahead")
	}

	slots, degraded, err := s.Availability.GetAvailableSlots(ctx, date, session.DurationMinutes)
	if err != nil {
		return nil, err
	}
	session.SelectedDate = date
	session.SelectedTime = ""
	session.Availability = slots
	session.Degraded = degraded
	session.State = models.StateSelectingTime
	session.FailureKind = ""
	session.FailureReason = ""

	if err := s.Store.Save(ctx, *session, s.TTL); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *DefaultBookingSessionService) SelectTime(ctx context.Context, sessionID, timeOfDay string) (*models.BookingSession, error) {
	session, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.SelectedDate == "" {
		return nil, NewValidationError("state", "select a date first")
	}
	if isTerminal(session.State) {
		return nil, NewValidationError("state", "session already finished")
	}
	if session.Availability == nil && session.State == models.StateFailed {
		// A conflict cleared the snapshot; the date must be re-resolved.
		return nil, NewValidationError("state", "availability must be re-checked for this date")
	}
	if !IsCanonicalSlotTime(timeOfDay) {
		return nil, NewValidationError("time", "outside business-hours slot boundaries")
	}
	// In degraded mode the snapshot is the unfiltered candidate set, so
	// membership adds nothing; the scheduler stays the final authority.
	if !session.Degraded && !slotOffered(session.Availability, session.SelectedDate, timeOfDay) {
		return nil, NewValidationError("time", "slot was not offered for this date")
	}

	session.SelectedTime = timeOfDay
	session.State = models.StateEnteringDetails
	if err := s.Store.Save(ctx, *session, s.TTL); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *DefaultBookingSessionService) SetContact(ctx context.Context, sessionID string, contact models.ContactDetails) (*models.BookingSession, error) {
	session, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.SelectedTime == "" {
		return nil, NewValidationError("state", "select a time first")
	}
	if isTerminal(session.State) {
		return nil, NewValidationError("state", "session already finished")
	}
	if contact.Phone == "" {
		contact.SendSms = false
	}

	session.Contact = &contact
	session.State = models.StateEnteringDetails
	if err := s.Store.Save(ctx, *session, s.TTL); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *DefaultBookingSessionService) Confirm(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	session, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Contact == nil || session.SelectedDate == "" || session.SelectedTime == "" {
		return nil, NewValidationError("state", "date, time, and contact details are all required before confirming")
	}
	if isTerminal(session.State) {
		return nil, NewValidationError("state", "session already finished")
	}

	slot, err := NewTimeSlot(session.SelectedDate, session.SelectedTime)
	if err != nil {
		return nil, NewValidationError("slot", err.Error())
	}
	req := models.NewBookingRequest(
		session.Contact.Name,
		session.Contact.Email,
		session.Contact.Phone,
		slot,
		session.Service,
		session.DurationMinutes,
		session.Contact.SendEmail,
		session.Contact.SendSms,
	)

	session.State = models.StateSubmitting
	if err := s.Store.Save(ctx, *session, s.TTL); err != nil {
		return nil, err
	}

	confirmation, err := s.Scheduler.Schedule(ctx, req)
	if err != nil {
		s.recordFailure(ctx, session, err)
		return session, nil
	}

	session.State = models.StateConfirmed
	session.Confirmation = confirmation
	session.FailureKind = ""
	session.FailureReason = ""
	if err := s.Store.Save(ctx, *session, s.TTL); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *DefaultBookingSessionService) Cancel(ctx context.Context, sessionID string) error {
	session, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if isTerminal(session.State) {
		return NewValidationError("state", "session already finished")
	}
	session.State = models.StateAbandoned
	// Keep the tombstone briefly so a late poll sees the terminal state.
	if err := s.Store.Save(ctx, *session, time.Minute); err != nil {
		return err
	}
	return nil
}

// recordFailure moves the session to failed with a typed kind the UI can
// branch on. A conflict additionally drops the availability snapshot: the
// same date must be re-resolved before another attempt.
func (s *DefaultBookingSessionService) recordFailure(ctx context.Context, session *models.BookingSession, cause error) {
	var (
		validationErr *ValidationError
		conflictErr   *SchedulingConflictError
	)
	switch {
	case errors.As(cause, &conflictErr):
		session.FailureKind = "conflict"
		session.Availability = nil
		session.SelectedTime = ""
	case errors.As(cause, &validationErr):
		session.FailureKind = "validation"
	default:
		session.FailureKind = "provider"
	}
	session.State = models.StateFailed
	session.FailureReason = cause.Error()

	if err := s.Store.Save(ctx, *session, s.TTL); err != nil {
		utils.GetLogger().Error("failed to persist session failure",
			zap.String("sessionID", session.SessionID), zap.Error(err))
	}
}

func isTerminal(state models.SessionState) bool {
	return state == models.StateConfirmed || state == models.StateAbandoned
}

func slotOffered(slots []models.TimeSlot, date, timeOfDay string) bool {
	for _, s := range slots {
		if s.Date == date && s.Time == timeOfDay {
			return true
		}
	}
	return false
}
