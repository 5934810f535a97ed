package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/service"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
	"github.com/campuswell/counsel-api/pkg/response"
)

// JournalHandler wires HTTP endpoints for private mood and journal entries.
type JournalHandler struct {
	journals *service.JournalService
}

// NewJournalHandler creates a new handler.
func NewJournalHandler(journals *service.JournalService) *JournalHandler {
	return &JournalHandler{journals: journals}
}

// Log godoc
// @Summary Record a mood or journal entry
// @Description Replays of the same clientKey return the stored entry
// @Tags Journal
// @Accept json
// @Produce json
// @Param payload body dto.LogJournalRequest true "Entry payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Router /journal [post]
func (h *JournalHandler) Log(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.LogJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid journal payload"))
		return
	}

	entry, created, err := h.journals.Log(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.JSON(c, status, entry, nil)
}

// List godoc
// @Summary List own journal entries
// @Tags Journal
// @Produce json
// @Param kind query string false "mood or journal"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /journal [get]
func (h *JournalHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := dto.JournalFilter{Kind: c.Query("kind")}
	if raw := c.Query("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be RFC3339"))
			return
		}
		filter.From = &ts
	}
	if raw := c.Query("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be RFC3339"))
			return
		}
		filter.To = &ts
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	entries, pagination, err := h.journals.List(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, pagination)
}
