package dto

import (
	"time"

	"github.com/campuswell/counsel-api/internal/models"
)

// BookAppointmentRequest captures POST /appointments payload.
type BookAppointmentRequest struct {
	CounsellorID    string    `json:"counsellorId" validate:"required"`
	TimeSlotID      string    `json:"timeSlotId" validate:"required"`
	AppointmentDate time.Time `json:"appointmentDate" validate:"required"`
}

// AppointmentView is the role-filtered projection of an appointment. The
// counsellor view only ever carries the student's anonymous handle.
type AppointmentView struct {
	ID             string                   `db:"id" json:"id"`
	CounsellorID   string                   `db:"counsellor_id" json:"counsellorId"`
	CounsellorName string                   `db:"counsellor_name" json:"counsellorName,omitempty"`
	StudentHandle  string                   `db:"student_handle" json:"studentHandle,omitempty"`
	TimeSlotID     string                   `db:"time_slot_id" json:"timeSlotId"`
	ScheduledAt    time.Time                `db:"scheduled_at" json:"scheduledAt"`
	Status         models.AppointmentStatus `db:"status" json:"status"`
}
