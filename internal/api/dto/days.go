package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateDayRequest represents the request to create a day
type CreateDayRequest struct {
	Date     string   `json:"date" binding:"required"`
	HabitIDs []string `json:"habit_ids"`
	DayNotes string   `json:"day_notes"`
	Mood     *int     `json:"mood"`
	Energy   *int     `json:"energy"`
	Tags     []string `json:"tags"`
}

// UpdateDayRequest represents the request to update day-level context
type UpdateDayRequest struct {
	DayNotes *string   `json:"day_notes,omitempty"`
	Mood     *int      `json:"mood,omitempty"`
	Energy   *int      `json:"energy,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Status   *string   `json:"status,omitempty"`
}

// AddHabitToDayRequest adds a habit slot to a day
type AddHabitToDayRequest struct {
	HabitID string `json:"habit_id" binding:"required"`
}

// CheckHabitRequest sets a habit's completion within a day
type CheckHabitRequest struct {
	Completed bool    `json:"completed"`
	Quality   *int    `json:"quality"`
	Notes     *string `json:"notes"`
}

// DayHabitResponse is one habit slot within a day response
type DayHabitResponse struct {
	HabitID   uuid.UUID  `json:"habit_id"`
	Completed bool       `json:"completed"`
	Quality   *int       `json:"quality,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}

// DayResponse represents a day in API responses
type DayResponse struct {
	ID              uuid.UUID          `json:"id"`
	UserID          uuid.UUID          `json:"user_id"`
	Date            string             `json:"date"`
	Habits          []DayHabitResponse `json:"habits"`
	DayNotes        string             `json:"day_notes,omitempty"`
	Mood            *int               `json:"mood,omitempty"`
	Energy          *int               `json:"energy,omitempty"`
	TotalHabits     int                `json:"total_habits"`
	CompletedHabits int                `json:"completed_habits"`
	SuccessRate     int                `json:"success_rate"`
	Tags            []string           `json:"tags,omitempty"`
	Status          string             `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// CalendarCellResponse is one calendar day; Day is null when no record
// exists for the date.
type CalendarCellResponse struct {
	Date      string       `json:"date"`
	Day       *DayResponse `json:"day"`
	DayOfWeek string       `json:"day_of_week"`
}

// MonthlyCalendarResponse lists one cell per day of the month
type MonthlyCalendarResponse struct {
	Year  int                    `json:"year"`
	Month int                    `json:"month"`
	Days  []CalendarCellResponse `json:"days"`
}
