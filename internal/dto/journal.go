package dto

import "time"

// LogJournalRequest captures a mood or journal write. ClientKey is the
// idempotency key generated by the offline queue on the client.
type LogJournalRequest struct {
	Kind      string     `json:"kind" validate:"required,oneof=mood journal"`
	Mood      *string    `json:"mood,omitempty"`
	Body      string     `json:"body" validate:"required"`
	ClientKey string     `json:"clientKey" validate:"required"`
	LoggedAt  *time.Time `json:"loggedAt,omitempty"`
}

// JournalFilter filters the owner's journal listing.
type JournalFilter struct {
	Kind     string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
