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

// AppointmentHandler wires HTTP endpoints for slots and bookings.
type AppointmentHandler struct {
	appointments *service.AppointmentService
	availability *service.AvailabilityService
}

// NewAppointmentHandler creates a new handler.
func NewAppointmentHandler(appointments *service.AppointmentService, availability *service.AvailabilityService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, availability: availability}
}

// CreateSlot godoc
// @Summary Declare an availability slot
// @Tags Slots
// @Accept json
// @Produce json
// @Param payload body dto.CreateSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /slots [post]
func (h *AppointmentHandler) CreateSlot(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}

	slot, err := h.availability.CreateSlot(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, slot)
}

// ListSlots godoc
// @Summary List a counsellor's bookable slots
// @Tags Slots
// @Produce json
// @Param counsellorId path string true "Counsellor ID"
// @Success 200 {object} response.Envelope
// @Router /counsellors/{counsellorId}/slots [get]
func (h *AppointmentHandler) ListSlots(c *gin.Context) {
	counsellorID := c.Param("counsellorId")
	if counsellorID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "counsellor id required"))
		return
	}

	slots, err := h.availability.ListSlots(c.Request.Context(), counsellorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, slots, nil)
}

// UpdateSlot godoc
// @Summary Edit or toggle an owned slot
// @Tags Slots
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body dto.UpdateSlotRequest true "Slot changes"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /slots/{id} [patch]
func (h *AppointmentHandler) UpdateSlot(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}

	slot, err := h.availability.UpdateSlot(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, slot, nil)
}

// DeleteSlot godoc
// @Summary Remove an owned slot
// @Tags Slots
// @Param id path string true "Slot ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /slots/{id} [delete]
func (h *AppointmentHandler) DeleteSlot(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.availability.DeleteSlot(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Book godoc
// @Summary Book an appointment
// @Description A student may hold at most one scheduled appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body dto.BookAppointmentRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /appointments [post]
func (h *AppointmentHandler) Book(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	appt, err := h.appointments.Book(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, appt)
}

// Cancel godoc
// @Summary Cancel an appointment
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.appointments.Cancel(c.Request.Context(), claims.UserID, claims.Role, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// RequestReschedule godoc
// @Summary Request rescheduling of an appointment
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /appointments/{id}/reschedule [post]
func (h *AppointmentHandler) RequestReschedule(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.appointments.RequestReschedule(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// List godoc
// @Summary List own appointments
// @Description Students see counsellor names; counsellors see anonymous handles
// @Tags Appointments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		views []dto.AppointmentView
		err   error
	)
	switch claims.Role {
	case models.RoleCounsellor:
		views, err = h.appointments.ListForCounsellor(c.Request.Context(), claims.UserID)
	default:
		views, err = h.appointments.ListForStudent(c.Request.Context(), claims.UserID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, views, nil)
}
