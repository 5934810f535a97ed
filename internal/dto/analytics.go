package dto

import "github.com/campuswell/counsel-api/internal/models"

// SeverityDistributionResponse always contains all three buckets.
type SeverityDistributionResponse struct {
	Buckets []models.SeverityBucket `json:"buckets"`
	Total   int                     `json:"total"`
}

// VolumeResponse holds per-month session counts.
type VolumeResponse struct {
	Months []models.VolumeBucket `json:"months"`
}

// ReportRequest captures POST /analytics/reports payload.
type ReportRequest struct {
	Type   models.ReportType   `json:"type"`
	Format models.ReportFormat `json:"format"`
	Months int                 `json:"months,omitempty"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ReportStatus `json:"status"`
}

// ReportStatusResponse exposes job state metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
