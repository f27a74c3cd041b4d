package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookify/models"
	"bookify/services/scheduling"
	"bookify/utils"
)

// SessionHandler exposes the step-by-step booking session flow.
type SessionHandler struct {
	Sessions scheduling.BookingSessionService
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(sessions scheduling.BookingSessionService) *SessionHandler {
	return &SessionHandler{Sessions: sessions}
}

// InitiateSession starts a new booking session.
func (h *SessionHandler) InitiateSession(c *gin.Context) {
	var input struct {
		Service         string `json:"service"`
		DurationMinutes int    `json:"durationMinutes"`
	}
	// Body is optional; defaults apply.
	_ = c.ShouldBindJSON(&input)

	session, err := h.Sessions.Initiate(c.Request.Context(), input.Service, input.DurationMinutes)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to start booking session", err.Error())
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session))
}

// UpdateSession advances a session one step: pick a date, pick a time, or
// supply contact details. Exactly one of the three must be present.
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	var input struct {
		Date    string                 `json:"date"`
		Time    string                 `json:"time"`
		Contact *models.ContactDetails `json:"contact"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	var (
		session *models.BookingSession
		err     error
	)
	switch {
	case input.Date != "":
		session, err = h.Sessions.SelectDate(c.Request.Context(), sessionID, input.Date)
	case input.Time != "":
		session, err = h.Sessions.SelectTime(c.Request.Context(), sessionID, input.Time)
	case input.Contact != nil:
		session, err = h.Sessions.SetContact(c.Request.Context(), sessionID, *input.Contact)
	default:
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "provide one of date, time, or contact")
		return
	}
	if err != nil {
		h.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session))
}

// ConfirmSession submits the collected booking request to the scheduler. The
// outcome lands in the session state: confirmed, or failed with a kind the
// UI branches on (validation / conflict / provider).
func (h *SessionHandler) ConfirmSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	session, err := h.Sessions.Confirm(c.Request.Context(), sessionID)
	if err != nil {
		h.respondSessionError(c, err)
		return
	}
	status := http.StatusOK
	if session.State == models.StateFailed {
		switch session.FailureKind {
		case "conflict":
			status = http.StatusConflict
		case "validation":
			status = http.StatusBadRequest
		default:
			status = http.StatusBadGateway
		}
	}
	c.JSON(status, sessionResponse(session))
}

// CancelSession abandons a session.
func (h *SessionHandler) CancelSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if err := h.Sessions.Cancel(c.Request.Context(), sessionID); err != nil {
		h.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionID": sessionID, "state": models.StateAbandoned})
}

func (h *SessionHandler) respondSessionError(c *gin.Context, err error) {
	var validationErr *scheduling.ValidationError
	switch {
	case errors.Is(err, scheduling.ErrSessionNotFound):
		utils.JSONError(c, http.StatusNotFound, "booking session not found or expired", err.Error())
	case errors.As(err, &validationErr):
		utils.JSONError(c, http.StatusBadRequest, "invalid input", validationErr.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "session update failed", err.Error())
	}
}

func sessionResponse(session *models.BookingSession) models.SessionResponse {
	return models.SessionResponse{
		SessionID:    session.SessionID,
		State:        session.State,
		Availability: session.Availability,
		Degraded:     session.Degraded,
		Confirmation: session.Confirmation,
		FailureKind:  session.FailureKind,
		Failure:      session.FailureReason,
	}
}
