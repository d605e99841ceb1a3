package checkins

import (
	"time"

	"github.com/google/uuid"
	"github.com/habitflow/backend/pkg/daykey"
	"gorm.io/gorm"
)

// SkipReason explains why a required day was not completed.
type SkipReason string

const (
	SkipNoTime       SkipReason = "no-time"
	SkipTired        SkipReason = "tired"
	SkipForgot       SkipReason = "forgot"
	SkipNoMotivation SkipReason = "no-motivation"
	SkipOther        SkipReason = "other"
)

func (r SkipReason) Valid() bool {
	switch r {
	case SkipNoTime, SkipTired, SkipForgot, SkipNoMotivation, SkipOther:
		return true
	}
	return false
}

// Checkin is one completion fact for a (user, habit, day) triple. The
// uniqueness constraint on that triple is the store-level guard against
// concurrent first toggles; application code never assumes it won the race.
type Checkin struct {
	ID             uuid.UUID     `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID         uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_checkins_user_habit_day,priority:1"`
	HabitID        uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_checkins_user_habit_day,priority:2;index:idx_checkins_habit_day"`
	Day            daykey.DayKey `gorm:"type:date;not null;uniqueIndex:idx_checkins_user_habit_day,priority:3;index:idx_checkins_habit_day"`
	Completed      bool          `gorm:"not null;default:true"`
	Quality        *int          `gorm:"default:null"`
	SkipReason     *SkipReason   `gorm:"size:32;default:null"`
	SkipReasonText string        `gorm:"size:200"`
	Notes          string        `gorm:"size:500"`
	CreatedAt      time.Time     `gorm:"not null;default:current_timestamp"`
	UpdatedAt      time.Time     `gorm:"not null;default:current_timestamp;autoUpdateTime"`
}

// TableName specifies the table name for the Checkin model
func (Checkin) TableName() string {
	return "checkins"
}

// BeforeCreate is called before creating a new checkin record
func (c *Checkin) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// RecordCheckinInput is an explicit create. Quality only applies to a
// completed entry, skip reason only to an incomplete one; the service
// nulls out whichever does not apply.
type RecordCheckinInput struct {
	Day            daykey.DayKey `json:"day"`
	Completed      bool          `json:"completed"`
	Quality        *int          `json:"quality"`
	SkipReason     *SkipReason   `json:"skip_reason"`
	SkipReasonText string        `json:"skip_reason_text"`
	Notes          string        `json:"notes"`
}

// UpdateCheckinInput represents the input for updating a checkin
type UpdateCheckinInput struct {
	Completed      *bool       `json:"completed,omitempty"`
	Quality        *int        `json:"quality,omitempty"`
	SkipReason     *SkipReason `json:"skip_reason,omitempty"`
	SkipReasonText *string     `json:"skip_reason_text,omitempty"`
	Notes          *string     `json:"notes,omitempty"`
}

// HabitStats is the per-habit analytics summary returned to callers.
type HabitStats struct {
	HabitID        uuid.UUID                       `json:"habit_id"`
	HabitName      string                          `json:"habit_name"`
	Category       string                          `json:"category"`
	Frequency      string                          `json:"frequency"`
	TotalCheckins  int                             `json:"total_checkins"`
	Completed      int                             `json:"completed_checkins"`
	SuccessRate    int                             `json:"success_rate"`
	CurrentStreak  int                             `json:"current_streak"`
	LongestStreak  int                             `json:"longest_streak"`
	LastCheckinDay daykey.DayKey                   `json:"last_checkin_day,omitempty"`
	Last30Days     map[daykey.DayKey]DaySnapshot   `json:"last_30_days"`
	RecentCheckins []Checkin                       `json:"recent_checkins"`
}

// DaySnapshot is a single day in the Last30Days map. Completed is nil when
// no entry exists for the day, which is distinct from an explicit skip.
type DaySnapshot struct {
	Completed *bool  `json:"completed"`
	Notes     string `json:"notes,omitempty"`
}

// StreakDetail describes a habit's streak state including when and why it
// last broke.
type StreakDetail struct {
	HabitID          uuid.UUID  `json:"habit_id"`
	HabitName        string     `json:"habit_name"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastBrokenDate   *time.Time `json:"last_broken_date"`
	LastBrokenReason string     `json:"last_broken_reason,omitempty"`
	StartedToday     bool       `json:"started_today"`
	RecentHistory    []Checkin  `json:"recent_history"`
}
