package models

import "time"

// TimeSlot is a counsellor-declared recurring availability window.
// (counsellor_id, day_of_week, start_time) carries a unique constraint.
type TimeSlot struct {
	ID           string    `db:"id" json:"id"`
	CounsellorID string    `db:"counsellor_id" json:"counsellor_id"`
	DayOfWeek    int       `db:"day_of_week" json:"day_of_week"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	Available    bool      `db:"available" json:"available"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
