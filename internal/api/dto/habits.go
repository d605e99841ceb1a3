package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateHabitRequest represents the request to create a new habit
type CreateHabitRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	ColorCode   string     `json:"color_code"`
	Icon        string     `json:"icon"`
	Frequency   string     `json:"frequency"`
	DaysOfWeek  []string   `json:"days_of_week"`
	TargetValue *float64   `json:"target_value"`
	Unit        string     `json:"unit"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateHabitRequest represents the request to update an existing habit
type UpdateHabitRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	ColorCode   *string    `json:"color_code,omitempty"`
	Icon        *string    `json:"icon,omitempty"`
	Frequency   *string    `json:"frequency,omitempty"`
	DaysOfWeek  *[]string  `json:"days_of_week,omitempty"`
	TargetValue *float64   `json:"target_value,omitempty"`
	Unit        *string    `json:"unit,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// HabitResponse represents a habit in API responses
type HabitResponse struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	ColorCode        string     `json:"color_code"`
	Icon             string     `json:"icon"`
	Frequency        string     `json:"frequency"`
	DaysOfWeek       []string   `json:"days_of_week"`
	TargetValue      *float64   `json:"target_value,omitempty"`
	Unit             string     `json:"unit,omitempty"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	TotalCompleted   int        `json:"total_completed"`
	SuccessRate      int        `json:"success_rate"`
	LastBrokenDate   *time.Time `json:"last_broken_date,omitempty"`
	LastBrokenReason string     `json:"last_broken_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HabitListResponse represents the response for listing habits
type HabitListResponse struct {
	Habits     []HabitResponse `json:"habits"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}
