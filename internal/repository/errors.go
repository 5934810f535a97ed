package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres unique constraint names. They are the real enforcement mechanism
// behind the service-layer pre-checks.
const (
	constraintUsersEmail           = "users_email_key"
	constraintStudentHandle        = "student_profiles_anon_handle_key"
	constraintSlotOwnerDayStart    = "time_slots_counsellor_day_start_key"
	constraintOneScheduledBooking  = "appointments_one_scheduled_per_student"
	constraintOneSessionPerBooking = "sessions_appointment_id_key"
	constraintOneFeedbackPerSess   = "session_feedback_session_id_key"
	constraintJournalClientKey     = "journal_entries_student_client_key_key"
)

// isUniqueViolation reports whether err is a Postgres duplicate-key error,
// optionally restricted to a specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
