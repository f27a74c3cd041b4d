package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bookify/models"
)

// SchedulingProvider is the external service that actually reserves a slot:
// it creates the calendar event, provisions the video meeting, and dispatches
// confirmation email/SMS. It is the sole authority on whether a slot is free.
type SchedulingProvider interface {
	Schedule(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error)
	CheckHealth(ctx context.Context) bool
}

// HTTPSchedulingProvider talks to the provider's JSON endpoint.
type HTTPSchedulingProvider struct {
	Endpoint       string
	HealthEndpoint string
	Client         *http.Client
}

// NewHTTPSchedulingProvider constructs a provider client with a bounded
// timeout; a human is waiting in a UI on every call.
func NewHTTPSchedulingProvider(endpoint, healthEndpoint string, timeout time.Duration) *HTTPSchedulingProvider {
	return &HTTPSchedulingProvider{
		Endpoint:       endpoint,
		HealthEndpoint: healthEndpoint,
		Client:         &http.Client{Timeout: timeout},
	}
}

// schedulePayload is the provider's wire shape.
type schedulePayload struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Service   string `json:"service"`
	Duration  int    `json:"duration"`
	SendEmail bool   `json:"send_email"`
	SendSms   bool   `json:"send_sms"`
}

type scheduleResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	AppointmentID   string `json:"appointment_id"`
	MeetingLink     string `json:"meeting_link"`
	MeetingID       string `json:"meeting_id"`
	CalendarEventID string `json:"calendar_event_id"`
	Error           string `json:"error"`
}

func (p *HTTPSchedulingProvider) Schedule(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error) {
	payload := schedulePayload{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Date:      req.Slot.Date,
		Time:      req.Slot.Time,
		Service:   req.Service,
		Duration:  req.DurationMinutes,
		SendEmail: req.SendEmail,
		SendSms:   req.SendSms,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &SchedulingProviderError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &SchedulingProviderError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return nil, &SchedulingProviderError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SchedulingProviderError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusConflict {
		return nil, &SchedulingConflictError{Message: strings.TrimSpace(string(raw))}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &SchedulingProviderError{
			Err: fmt.Errorf("scheduling failed: %d - %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}

	var out scheduleResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &SchedulingProviderError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if !out.Success {
		if isConflictMessage(out.Error) || isConflictMessage(out.Message) {
			return nil, &SchedulingConflictError{Message: firstNonEmpty(out.Error, out.Message)}
		}
		return nil, &SchedulingProviderError{
			Err: fmt.Errorf("provider rejected booking: %s", firstNonEmpty(out.Error, out.Message, "unknown error")),
		}
	}

	message := out.Message
	if message == "" {
		message = "Appointment scheduled successfully!"
	}
	return &models.BookingConfirmation{
		AppointmentID:   out.AppointmentID,
		CalendarEventID: out.CalendarEventID,
		MeetingLink:     out.MeetingLink,
		MeetingID:       out.MeetingID,
		Message:         message,
	}, nil
}

// CheckHealth is a liveness probe used by monitoring, not by the booking flow.
func (p *HTTPSchedulingProvider) CheckHealth(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.HealthEndpoint, nil)
	if err != nil {
		return false
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// isConflictMessage sniffs the provider's free-text rejection for the
// slot-already-taken case so it maps to a conflict, not a transient fault.
func isConflictMessage(msg string) bool {
	m := strings.ToLower(msg)
	for _, marker := range []string{"already booked", "no longer available", "not available", "taken", "conflict"} {
		if strings.Contains(m, marker) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
