package models

import (
	"fmt"
	"time"
)

// Severity is the counsellor-assigned triage level for a completed session.
// red/yellow/green is canonical; legacy client surfaces using
// high/moderate/low are translated at the DTO boundary.
type Severity string

const (
	SeverityRed    Severity = "red"
	SeverityYellow Severity = "yellow"
	SeverityGreen  Severity = "green"
)

// Severities lists all buckets in reporting order. Aggregations must emit
// every bucket even at zero count.
var Severities = []Severity{SeverityRed, SeverityYellow, SeverityGreen}

var severityAliases = map[string]Severity{
	"red":      SeverityRed,
	"high":     SeverityRed,
	"critical": SeverityRed,
	"yellow":   SeverityYellow,
	"moderate": SeverityYellow,
	"green":    SeverityGreen,
	"low":      SeverityGreen,
}

// ParseSeverity resolves canonical values and legacy aliases.
func ParseSeverity(raw string) (Severity, error) {
	if s, ok := severityAliases[raw]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown severity %q", raw)
}

// Session is the realised, timestamped encounter between a student and a
// counsellor. It is created only by a QR check-in and mutated exactly once,
// at check-out.
type Session struct {
	ID             string     `db:"id" json:"id"`
	AppointmentID  string     `db:"appointment_id" json:"appointment_id"`
	StudentID      string     `db:"student_id" json:"student_id"`
	CounsellorID   string     `db:"counsellor_id" json:"counsellor_id"`
	StartedAt      time.Time  `db:"started_at" json:"started_at"`
	EndedAt        *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	QRScannedInAt  time.Time  `db:"qr_scanned_in_at" json:"qr_scanned_in_at"`
	QRScannedOutAt *time.Time `db:"qr_scanned_out_at" json:"qr_scanned_out_at,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	Severity       *Severity  `db:"severity" json:"severity,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Open reports whether the session has not been checked out yet.
func (s *Session) Open() bool {
	return s.EndedAt == nil
}

// QRPayload is the wire format encoded into the student's QR code. The
// serialized JSON string is what counsellors scan back in at check-in.
type QRPayload struct {
	StudentID string `json:"studentId"`
	Username  string `json:"username"`
	Secret    string `json:"secret"`
}
