package dto

import (
	"time"

	"github.com/google/uuid"
)

// ToggleCheckinRequest flips the completion for one day. An omitted day
// means today.
type ToggleCheckinRequest struct {
	Day string `json:"day"`
}

// RecordCheckinRequest represents an explicit checkin create
type RecordCheckinRequest struct {
	Day            string  `json:"day" binding:"required"`
	Completed      *bool   `json:"completed"`
	Quality        *int    `json:"quality"`
	SkipReason     *string `json:"skip_reason"`
	SkipReasonText string  `json:"skip_reason_text"`
	Notes          string  `json:"notes"`
}

// UpdateCheckinRequest represents the request to update a checkin
type UpdateCheckinRequest struct {
	Completed      *bool   `json:"completed,omitempty"`
	Quality        *int    `json:"quality,omitempty"`
	SkipReason     *string `json:"skip_reason,omitempty"`
	SkipReasonText *string `json:"skip_reason_text,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// CheckinResponse represents a checkin in API responses
type CheckinResponse struct {
	ID             uuid.UUID `json:"id"`
	HabitID        uuid.UUID `json:"habit_id"`
	Day            string    `json:"day"`
	Completed      bool      `json:"completed"`
	Quality        *int      `json:"quality,omitempty"`
	SkipReason     *string   `json:"skip_reason,omitempty"`
	SkipReasonText string    `json:"skip_reason_text,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MonthCheckinsResponse groups a user's checkins by day for one month
type MonthCheckinsResponse struct {
	Year     int                          `json:"year"`
	Month    int                          `json:"month"`
	Checkins map[string][]CheckinResponse `json:"checkins"`
}
