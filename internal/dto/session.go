package dto

import "time"

// StartSessionRequest captures the scanned QR payload at check-in.
type StartSessionRequest struct {
	QRData string `json:"qrData" validate:"required"`
}

// EndSessionRequest captures check-out notes and triage severity. Severity
// accepts red/yellow/green and the legacy high/moderate/low aliases.
type EndSessionRequest struct {
	Notes    string `json:"notes" validate:"required"`
	Severity string `json:"severity" validate:"required"`
}

// FeedbackRequest captures the student's post-session feedback.
type FeedbackRequest struct {
	Rating         int    `json:"rating" validate:"min=1,max=5"`
	Comment        string `json:"comment"`
	WasHelpful     bool   `json:"wasHelpful"`
	WouldRecommend bool   `json:"wouldRecommend"`
}

// SessionView is the role-filtered projection of a session. Students see
// the counsellor's display name; counsellors only ever see the anonymous
// handle.
type SessionView struct {
	ID             string     `db:"id" json:"id"`
	AppointmentID  string     `db:"appointment_id" json:"appointmentId"`
	StudentHandle  string     `db:"student_handle" json:"studentHandle,omitempty"`
	CounsellorName string     `db:"counsellor_name" json:"counsellorName,omitempty"`
	StartedAt      time.Time  `db:"started_at" json:"startedAt"`
	EndedAt        *time.Time `db:"ended_at" json:"endedAt,omitempty"`
	Severity       *string    `db:"severity" json:"severity,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
}
