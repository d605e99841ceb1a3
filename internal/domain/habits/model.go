package habits

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Category classifies a habit for grouping and filtering.
type Category string

const (
	CategoryHealth       Category = "health"
	CategoryProductivity Category = "productivity"
	CategoryLearning     Category = "learning"
	CategoryMindfulness  Category = "mindfulness"
	CategorySocial       Category = "social"
	CategoryOther        Category = "other"
)

// Frequency controls which calendar days a habit requires a completion on.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

// Weekday tokens stored in DaysOfWeek, indexed Sunday = 0 to match
// time.Weekday.
var weekdayTokens = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// WeekdayToken returns the schedule token for a weekday.
func WeekdayToken(w time.Weekday) string {
	return weekdayTokens[int(w)%7]
}

// ValidWeekdayToken reports whether s is one of mon..sun.
func ValidWeekdayToken(s string) bool {
	for _, t := range weekdayTokens {
		if t == s {
			return true
		}
	}
	return false
}

func (c Category) Valid() bool {
	switch c {
	case CategoryHealth, CategoryProductivity, CategoryLearning,
		CategoryMindfulness, CategorySocial, CategoryOther:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyCustom:
		return true
	}
	return false
}

type Habit struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name        string         `gorm:"size:255;not null"`
	Description string         `gorm:"type:text"`
	Category    Category       `gorm:"size:32;not null;default:'other'"`
	ColorCode   string         `gorm:"size:16;not null;default:'#4CAF50'"`
	Icon        string         `gorm:"size:64;not null;default:'default-icon'"`
	Frequency   Frequency      `gorm:"size:16;not null;default:'daily'"`
	DaysOfWeek  pq.StringArray `gorm:"type:text[]"`
	TargetValue *float64       `gorm:"default:null"`
	Unit        string         `gorm:"size:32"`
	StartDate   time.Time      `gorm:"not null;default:current_timestamp"`
	EndDate     *time.Time     `gorm:"default:null"`

	// Derived summary fields. Recomputed from the completion ledger after
	// every mutation touching this habit, never edited directly.
	CurrentStreak    int        `gorm:"default:0;not null"`
	LongestStreak    int        `gorm:"default:0;not null"`
	TotalCompleted   int        `gorm:"default:0;not null"`
	SuccessRate      int        `gorm:"default:0;not null"`
	LastBrokenDate   *time.Time `gorm:"default:null"`
	LastBrokenReason string     `gorm:"size:64"`

	CreatedAt time.Time `gorm:"not null;default:current_timestamp"`
	UpdatedAt time.Time `gorm:"not null;default:current_timestamp;autoUpdateTime"`
}

// TableName specifies the table name for the Habit model
func (Habit) TableName() string {
	return "habits"
}

// BeforeCreate is called before creating a new habit record
func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Category == "" {
		h.Category = CategoryOther
	}
	if h.Frequency == "" {
		h.Frequency = FrequencyDaily
	}
	if h.StartDate.IsZero() {
		h.StartDate = time.Now().UTC()
	}
	return nil
}

// RequiredOn reports whether the habit demands a completion on the given
// weekday. Daily habits require every day. Weekly and custom habits require
// the days listed in DaysOfWeek; an empty set falls back to every day so the
// schedule is never vacuously unevaluable.
func (h *Habit) RequiredOn(w time.Weekday) bool {
	if h.Frequency == FrequencyDaily {
		return true
	}
	if len(h.DaysOfWeek) == 0 {
		return true
	}
	token := WeekdayToken(w)
	for _, d := range h.DaysOfWeek {
		if d == token {
			return true
		}
	}
	return false
}

// Summary carries the derived fields written back onto a habit after a
// ledger recompute.
type Summary struct {
	CurrentStreak    int
	LongestStreak    int
	TotalCompleted   int
	SuccessRate      int
	LastBrokenDate   *time.Time
	LastBrokenReason string
}

// CreateHabitInput represents the input for creating a new habit
type CreateHabitInput struct {
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	ColorCode   string     `json:"color_code"`
	Icon        string     `json:"icon"`
	Frequency   Frequency  `json:"frequency"`
	DaysOfWeek  []string   `json:"days_of_week"`
	TargetValue *float64   `json:"target_value"`
	Unit        string     `json:"unit"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateHabitInput represents the input for updating a habit
type UpdateHabitInput struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *Category  `json:"category,omitempty"`
	ColorCode   *string    `json:"color_code,omitempty"`
	Icon        *string    `json:"icon,omitempty"`
	Frequency   *Frequency `json:"frequency,omitempty"`
	DaysOfWeek  *[]string  `json:"days_of_week,omitempty"`
	TargetValue *float64   `json:"target_value,omitempty"`
	Unit        *string    `json:"unit,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}
