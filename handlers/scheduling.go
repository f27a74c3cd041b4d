package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookify/models"
	"bookify/services/scheduling"
	"bookify/utils"
)

// SchedulingHandler exposes the availability and appointment endpoints.
type SchedulingHandler struct {
	Availability scheduling.AvailabilityEngine
	Scheduler    scheduling.SchedulingEngine
	Clock        scheduling.Clock
	Logger       *zap.Logger
}

// NewSchedulingHandler constructs a SchedulingHandler.
func NewSchedulingHandler(availability scheduling.AvailabilityEngine, scheduler scheduling.SchedulingEngine, clock scheduling.Clock, logger *zap.Logger) *SchedulingHandler {
	return &SchedulingHandler{
		Availability: availability,
		Scheduler:    scheduler,
		Clock:        clock,
		Logger:       logger,
	}
}

// GetDaySlots returns the slots for one date, falling back to the canonical
// set when the calendar is unreachable. The degraded flag tells the UI it is
// looking at possibly-stale slots, not confirmed-free ones.
func (h *SchedulingHandler) GetDaySlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing date", "query parameter 'date' is required (YYYY-MM-DD)")
		return
	}
	duration := models.DefaultDurationMinutes
	var q struct {
		Duration int `form:"durationMinutes"`
	}
	if err := c.ShouldBindQuery(&q); err == nil && q.Duration > 0 {
		duration = q.Duration
	}

	slots, degraded, err := h.Availability.GetAvailableSlots(c.Request.Context(), date, duration)
	if err != nil {
		var validationErr *scheduling.ValidationError
		if errors.As(err, &validationErr) {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", validationErr.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "availability lookup failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":     date,
		"slots":    slots,
		"degraded": degraded,
		"timezone": scheduling.BusinessTimezone,
	})
}

// ResolveAvailability computes free slots across a date range. A failed
// calendar query and an empty result are different outcomes and get
// different responses.
func (h *SchedulingHandler) ResolveAvailability(c *gin.Context) {
	var window models.AvailabilityWindow
	if err := c.ShouldBindJSON(&window); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if window.DurationMinutes == 0 {
		window.DurationMinutes = models.DefaultDurationMinutes
	}

	result, err := h.Availability.ResolveAvailability(c.Request.Context(), window)
	if err != nil {
		var (
			validationErr *scheduling.ValidationError
			queryErr      *scheduling.AvailabilityQueryError
		)
		switch {
		case errors.As(err, &validationErr):
			utils.JSONError(c, http.StatusBadRequest, "invalid availability window", validationErr.Error())
		case errors.As(err, &queryErr):
			utils.JSONError(c, http.StatusBadGateway, "couldn't check availability", queryErr.Error())
		default:
			utils.JSONError(c, http.StatusInternalServerError, "availability resolution failed", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// ScheduleAppointment books a fully-specified request directly, outside the
// session flow.
func (h *SchedulingHandler) ScheduleAppointment(c *gin.Context) {
	var input struct {
		Name      string `json:"name" binding:"required"`
		Email     string `json:"email" binding:"required"`
		Phone     string `json:"phone"`
		Date      string `json:"date" binding:"required"`
		Time      string `json:"time" binding:"required"`
		Service   string `json:"service"`
		Duration  int    `json:"durationMinutes"`
		SendEmail *bool  `json:"sendEmail"`
		SendSms   *bool  `json:"sendSms"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	slot := models.TimeSlot{Date: input.Date, Time: input.Time}
	sendEmail := input.SendEmail == nil || *input.SendEmail
	sendSms := input.Phone != ""
	if input.SendSms != nil {
		sendSms = *input.SendSms
	}
	req := models.NewBookingRequest(input.Name, input.Email, input.Phone, slot, input.Service, input.Duration, sendEmail, sendSms)

	confirmation, err := h.Scheduler.Schedule(c.Request.Context(), req)
	if err != nil {
		h.respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, confirmation)
}

// LookupAppointment answers whether a booking already exists for a
// requester/slot pair, so a timed-out schedule call can be retried safely.
func (h *SchedulingHandler) LookupAppointment(c *gin.Context) {
	email := c.Query("email")
	date := c.Query("date")
	timeOfDay := c.Query("time")
	if email == "" || date == "" || timeOfDay == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing parameters", "email, date, and time are all required")
		return
	}

	confirmation, err := h.Scheduler.FindExistingConfirmation(c.Request.Context(), email, date, timeOfDay)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "lookup failed", err.Error())
		return
	}
	if confirmation == nil {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": true, "confirmation": confirmation})
}

// ListAppointments returns the recorded booking history for one email.
func (h *SchedulingHandler) ListAppointments(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing email", "query parameter 'email' is required")
		return
	}

	records, err := h.Scheduler.ListBookings(c.Request.Context(), email)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "history lookup failed", err.Error())
		return
	}
	if records == nil {
		records = []models.AppointmentRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"appointments": records})
}

// BookingHorizon reports the currently bookable date range.
func (h *SchedulingHandler) BookingHorizon(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"minDate":  scheduling.MinBookableDate(h.Clock),
		"maxDate":  scheduling.MaxBookableDate(h.Clock),
		"timezone": scheduling.BusinessTimezone,
	})
}

func (h *SchedulingHandler) respondScheduleError(c *gin.Context, err error) {
	var (
		validationErr *scheduling.ValidationError
		conflictErr   *scheduling.SchedulingConflictError
		providerErr   *scheduling.SchedulingProviderError
	)
	switch {
	case errors.As(err, &validationErr):
		utils.JSONError(c, http.StatusBadRequest, "invalid booking request", validationErr.Error())
	case errors.As(err, &conflictErr):
		utils.JSONError(c, http.StatusConflict, "that slot was just taken, please pick another time", conflictErr.Error())
	case errors.As(err, &providerErr):
		utils.JSONError(c, http.StatusBadGateway, "something went wrong, try again", providerErr.Error())
	default:
		h.Logger.Error("unexpected scheduling failure", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "scheduling failed", err.Error())
	}
}
