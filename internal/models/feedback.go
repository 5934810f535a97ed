package models

import "time"

// Feedback is the one-to-one student rating attached to an ended session.
// session_id carries a unique constraint.
type Feedback struct {
	ID             string    `db:"id" json:"id"`
	SessionID      string    `db:"session_id" json:"session_id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	Rating         int       `db:"rating" json:"rating"`
	Comment        string    `db:"comment" json:"comment"`
	WasHelpful     bool      `db:"was_helpful" json:"was_helpful"`
	WouldRecommend bool      `db:"would_recommend" json:"would_recommend"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
