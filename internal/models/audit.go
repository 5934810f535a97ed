package models

import "time"

// Audit actions recorded for sensitive operations.
const (
	AuditActionLogin         = "LOGIN"
	AuditActionLogout        = "LOGOUT"
	AuditActionOnboarding    = "ONBOARDING_COMPLETED"
	AuditActionSessionStart  = "SESSION_STARTED"
	AuditActionSessionEnd    = "SESSION_ENDED"
	AuditActionReportCreated = "REPORT_CREATED"
)

// AuditLog stores a trail entry for a sensitive operation. Student-facing
// values never include the real identity behind an anonymous handle.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"-"`
	UserAgent  string    `db:"user_agent" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
