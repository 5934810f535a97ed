package models

import "time"

// AppointmentStatus enumerates the booking lifecycle.
type AppointmentStatus string

const (
	AppointmentScheduled           AppointmentStatus = "scheduled"
	AppointmentCompleted           AppointmentStatus = "completed"
	AppointmentCancelled           AppointmentStatus = "cancelled"
	AppointmentRescheduleRequested AppointmentStatus = "reschedule_requested"
	AppointmentNoShow              AppointmentStatus = "no_show"
)

// Appointment is a booked-but-not-yet-realised encounter. A partial unique
// index allows at most one `scheduled` appointment per student; the service
// pre-check only exists to return a friendlier error first.
type Appointment struct {
	ID           string            `db:"id" json:"id"`
	StudentID    string            `db:"student_id" json:"student_id"`
	CounsellorID string            `db:"counsellor_id" json:"counsellor_id"`
	TimeSlotID   string            `db:"time_slot_id" json:"time_slot_id"`
	ScheduledAt  time.Time         `db:"scheduled_at" json:"scheduled_at"`
	Status       AppointmentStatus `db:"status" json:"status"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}
