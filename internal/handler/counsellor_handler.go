package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuswell/counsel-api/internal/service"
	"github.com/campuswell/counsel-api/pkg/response"
)

// CounsellorHandler wires HTTP endpoints for the counsellor directory.
type CounsellorHandler struct {
	counsellors *service.CounsellorService
}

// NewCounsellorHandler creates a new handler.
func NewCounsellorHandler(counsellors *service.CounsellorService) *CounsellorHandler {
	return &CounsellorHandler{counsellors: counsellors}
}

// Directory godoc
// @Summary List active counsellors
// @Description Availability is derived from the absence of an open session
// @Tags Counsellors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /counsellors [get]
func (h *CounsellorHandler) Directory(c *gin.Context) {
	views, err := h.counsellors.Directory(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}
