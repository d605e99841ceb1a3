package days

import (
	"time"

	"github.com/google/uuid"
	"github.com/habitflow/backend/pkg/daykey"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DayStatus tracks where a planned day is in its lifecycle.
type DayStatus string

const (
	StatusPlanned    DayStatus = "planned"
	StatusInProgress DayStatus = "in-progress"
	StatusCompleted  DayStatus = "completed"
	StatusSkipped    DayStatus = "skipped"
)

func (s DayStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusSkipped:
		return true
	}
	return false
}

// Day is the day-centric view of one calendar date: the habits planned for
// it, day-level context, and counters derived from its own habit list. The
// per-habit completion flags are a projection of the ledger, written only
// through it, never independently.
type Day struct {
	ID       uuid.UUID     `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID   uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_days_user_date,priority:1"`
	Date     daykey.DayKey `gorm:"type:date;not null;uniqueIndex:idx_days_user_date,priority:2"`
	Habits   []DayHabit    `gorm:"foreignKey:DayID;constraint:OnDelete:CASCADE"`
	DayNotes string        `gorm:"size:1000"`
	Mood     *int          `gorm:"default:null"`
	Energy   *int          `gorm:"default:null"`

	// Derived from the habit list, recomputed on every add/remove/toggle.
	TotalHabits     int `gorm:"default:0;not null"`
	CompletedHabits int `gorm:"default:0;not null"`
	SuccessRate     int `gorm:"default:0;not null"`

	Tags      pq.StringArray `gorm:"type:text[]"`
	Status    DayStatus      `gorm:"size:16;not null;default:'planned'"`
	CreatedAt time.Time      `gorm:"not null;default:current_timestamp"`
	UpdatedAt time.Time      `gorm:"not null;default:current_timestamp;autoUpdateTime"`
}

// TableName specifies the table name for the Day model
func (Day) TableName() string {
	return "days"
}

// BeforeCreate is called before creating a new day record
func (d *Day) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = StatusPlanned
	}
	return nil
}

// DayHabit is one habit's slot within a day.
type DayHabit struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	DayID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_day_habits_day_habit,priority:1"`
	HabitID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_day_habits_day_habit,priority:2"`
	Completed bool       `gorm:"not null;default:false"`
	Quality   *int       `gorm:"default:null"`
	Notes     string     `gorm:"size:500"`
	CheckedAt *time.Time `gorm:"default:null"`
	CreatedAt time.Time  `gorm:"not null;default:current_timestamp"`
	UpdatedAt time.Time  `gorm:"not null;default:current_timestamp;autoUpdateTime"`
}

// TableName specifies the table name for the DayHabit model
func (DayHabit) TableName() string {
	return "day_habits"
}

// BeforeCreate is called before creating a new day habit record
func (h *DayHabit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// CreateDayInput represents the input for creating a day
type CreateDayInput struct {
	Date     daykey.DayKey `json:"date"`
	HabitIDs []uuid.UUID   `json:"habit_ids"`
	DayNotes string        `json:"day_notes"`
	Mood     *int          `json:"mood"`
	Energy   *int          `json:"energy"`
	Tags     []string      `json:"tags"`
}

// UpdateDayInput represents the input for updating day-level context
type UpdateDayInput struct {
	DayNotes *string    `json:"day_notes,omitempty"`
	Mood     *int       `json:"mood,omitempty"`
	Energy   *int       `json:"energy,omitempty"`
	Tags     *[]string  `json:"tags,omitempty"`
	Status   *DayStatus `json:"status,omitempty"`
}

// CheckHabitInput toggles one habit's completion within a day.
type CheckHabitInput struct {
	Completed bool    `json:"completed"`
	Quality   *int    `json:"quality"`
	Notes     *string `json:"notes"`
}

// CalendarCell is one day of a monthly calendar. Day is nil when no record
// exists for the date.
type CalendarCell struct {
	Date      daykey.DayKey `json:"date"`
	Day       *Day          `json:"day"`
	DayOfWeek string        `json:"day_of_week"`
}

// MonthlyCalendar lists one cell per calendar day of a month.
type MonthlyCalendar struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Days  []CalendarCell `json:"days"`
}
