package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent    UserRole = "STUDENT"
	RoleCounsellor UserRole = "COUNSELLOR"
	RoleManagement UserRole = "MANAGEMENT"
)

// User holds the identity core shared by every role. Role-specific data
// lives in StudentProfile and CounsellorProfile rather than nullable
// columns on this record.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentProfile is the student payload of a user. AnonHandle and QRSecret
// are nil until onboarding completes and never change afterwards; the
// QR secret is only ever returned to the owning student.
type StudentProfile struct {
	UserID      string     `db:"user_id" json:"user_id"`
	AnonHandle  *string    `db:"anon_handle" json:"anon_handle,omitempty"`
	QRSecret    *string    `db:"qr_secret" json:"-"`
	Year        *int       `db:"year" json:"year,omitempty"`
	Department  *string    `db:"department" json:"department,omitempty"`
	Onboarded   bool       `db:"onboarded" json:"onboarded"`
	OnboardedAt *time.Time `db:"onboarded_at" json:"onboarded_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// CounsellorProfile is the counsellor payload of a user. Availability is
// not stored: a counsellor is busy exactly when an open session exists.
type CounsellorProfile struct {
	UserID         string    `db:"user_id" json:"user_id"`
	DisplayName    string    `db:"display_name" json:"display_name"`
	Specialization string    `db:"specialization" json:"specialization"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
