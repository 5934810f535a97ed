package dto

// CreateSlotRequest defines payload for declaring an availability window.
type CreateSlotRequest struct {
	DayOfWeek int    `json:"dayOfWeek" validate:"min=0,max=6"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
}

// UpdateSlotRequest toggles or edits an existing slot.
type UpdateSlotRequest struct {
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
	Available *bool   `json:"available,omitempty"`
}
