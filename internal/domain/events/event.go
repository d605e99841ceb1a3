package events

import (
	"time"

	"github.com/google/uuid"
)

// Stats event types published on the cache invalidation channel. Every
// ledger or day-aggregate mutation fans one of these out so cached
// analytics responses for the user are dropped.
const (
	EventStatsRecomputed  = "stats_recomputed"
	EventCacheInvalidate  = "cache_invalidate"
	EventCheckinMutated   = "checkin_mutated"
	EventDayMutated       = "day_mutated"
	EventHabitMutated     = "habit_mutated"
)

// StatsEvent represents a change to a habit's ledger or derived stats.
type StatsEvent struct {
	EventType string      `json:"event_type"`
	UserID    uuid.UUID   `json:"user_id"`
	EntityID  uuid.UUID   `json:"entity_id"`
	Timestamp time.Time   `json:"timestamp"`
	Details   interface{} `json:"details,omitempty"`
}

// NewStatsEvent stamps a stats event with the current UTC time.
func NewStatsEvent(eventType string, userID, entityID uuid.UUID, details interface{}) *StatsEvent {
	return &StatsEvent{
		EventType: eventType,
		UserID:    userID,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
		Details:   details,
	}
}
