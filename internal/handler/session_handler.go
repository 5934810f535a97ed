package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
	"github.com/campuswell/counsel-api/internal/service"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
	"github.com/campuswell/counsel-api/pkg/response"
)

// SessionHandler wires HTTP endpoints for the session lifecycle.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new handler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Start godoc
// @Summary Check in a student via QR scan
// @Description Opens a session against the matching scheduled appointment
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body dto.StartSessionRequest true "Scanned QR payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Start(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid check-in payload"))
		return
	}

	session, err := h.sessions.Start(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, session)
}

// End godoc
// @Summary Check out a session
// @Description Closes an open session with notes and triage severity
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.EndSessionRequest true "Check-out payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/end [post]
func (h *SessionHandler) End(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid check-out payload"))
		return
	}

	session, err := h.sessions.End(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, session, nil)
}

// SubmitFeedback godoc
// @Summary Submit feedback for an ended session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.FeedbackRequest true "Feedback payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/feedback [post]
func (h *SessionHandler) SubmitFeedback(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}

	fb, err := h.sessions.SubmitFeedback(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, fb)
}

// List godoc
// @Summary List own session history
// @Description Students see counsellor names; counsellors see anonymous handles
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		views []dto.SessionView
		err   error
	)
	switch claims.Role {
	case models.RoleCounsellor:
		views, err = h.sessions.ListForCounsellor(c.Request.Context(), claims.UserID)
	default:
		views, err = h.sessions.ListForStudent(c.Request.Context(), claims.UserID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, views, nil)
}
