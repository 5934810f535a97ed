package models

import "time"

// JournalKind distinguishes quick mood logs from long-form journal entries.
type JournalKind string

const (
	JournalKindMood    JournalKind = "mood"
	JournalKindJournal JournalKind = "journal"
)

// JournalEntry is a student-authored mood or journal record. ClientKey is a
// client-generated idempotency key: the offline queue may flush the same
// entry more than once and (student_id, client_key) is unique, so a replay
// resolves to the already-stored entry.
type JournalEntry struct {
	ID        string      `db:"id" json:"id"`
	StudentID string      `db:"student_id" json:"student_id"`
	Kind      JournalKind `db:"kind" json:"kind"`
	Mood      *string     `db:"mood" json:"mood,omitempty"`
	Body      string      `db:"body" json:"body"`
	ClientKey string      `db:"client_key" json:"client_key"`
	LoggedAt  time.Time   `db:"logged_at" json:"logged_at"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}
