package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/service"
	appErrors "github.com/campuswell/counsel-api/pkg/errors"
	"github.com/campuswell/counsel-api/pkg/response"
)

// AnalyticsHandler wires HTTP endpoints for management rollups and reports.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	reports   *service.ReportService
}

// NewAnalyticsHandler creates a new handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, reports *service.ReportService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, reports: reports}
}

// Departments godoc
// @Summary Sessions grouped by department
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/departments [get]
func (h *AnalyticsHandler) Departments(c *gin.Context) {
	rows, err := h.analytics.DepartmentSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Years godoc
// @Summary Sessions grouped by academic year
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/years [get]
func (h *AnalyticsHandler) Years(c *gin.Context) {
	rows, err := h.analytics.YearSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Severity godoc
// @Summary Severity distribution over completed sessions
// @Description Always returns all three buckets, zero-filled
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/severity [get]
func (h *AnalyticsHandler) Severity(c *gin.Context) {
	dist, err := h.analytics.SeverityDistribution(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dist, nil)
}

// Volume godoc
// @Summary Monthly session volume
// @Tags Analytics
// @Produce json
// @Param months query int false "Trailing months (default 6, max 24)"
// @Success 200 {object} response.Envelope
// @Router /analytics/volume [get]
func (h *AnalyticsHandler) Volume(c *gin.Context) {
	months, _ := strconv.Atoi(c.DefaultQuery("months", "0"))
	vol, err := h.analytics.Volume(c.Request.Context(), months)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vol, nil)
}

// CreateReport godoc
// @Summary Queue an asynchronous report export
// @Tags Analytics
// @Accept json
// @Produce json
// @Param payload body dto.ReportRequest true "Report request"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analytics/reports [post]
func (h *AnalyticsHandler) CreateReport(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "report exports are disabled"))
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	res, err := h.reports.Enqueue(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusAccepted, res, nil)
}

// ReportStatus godoc
// @Summary Report job status
// @Tags Analytics
// @Produce json
// @Param id path string true "Report job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /analytics/reports/{id} [get]
func (h *AnalyticsHandler) ReportStatus(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "report exports are disabled"))
		return
	}

	res, err := h.reports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// DownloadReport godoc
// @Summary Download a finished report via signed token
// @Tags Analytics
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /analytics/reports/download [get]
func (h *AnalyticsHandler) DownloadReport(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "report exports are disabled"))
		return
	}

	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	file, relPath, err := h.reports.OpenDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	contentType := "text/csv"
	if filepath.Ext(relPath) == ".pdf" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(relPath))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
