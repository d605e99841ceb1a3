package habits

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/habitflow/backend/internal/domain/events"
	"github.com/habitflow/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// CompletionPurger removes all ledger history for a habit. Implemented by
// the checkins service and injected after construction so habit deletion
// can cascade without this package importing the ledger.
type CompletionPurger interface {
	PurgeHabit(ctx context.Context, userID, habitID uuid.UUID) error
}

// DaySlotRemover drops a deleted habit's planned slots from every day
// aggregate referencing it. Implemented by the days service and injected the
// same way as CompletionPurger.
type DaySlotRemover interface {
	RemoveHabitSlots(ctx context.Context, userID, habitID uuid.UUID) error
}

type Service interface {
	CreateHabit(ctx context.Context, input CreateHabitInput) (*Habit, error)
	GetHabit(ctx context.Context, id, userID uuid.UUID) (*Habit, error)
	ListHabits(ctx context.Context, filter HabitFilter) ([]Habit, int64, error)
	UpdateHabit(ctx context.Context, id, userID uuid.UUID, input UpdateHabitInput) (*Habit, error)
	DeleteHabit(ctx context.Context, id, userID uuid.UUID) error

	// SetCompletionPurger wires the ledger cascade for habit deletion.
	SetCompletionPurger(p CompletionPurger)
	// SetDaySlotRemover wires the day aggregate cascade for habit deletion.
	SetDaySlotRemover(r DaySlotRemover)
}

type service struct {
	repo   Repository
	purger CompletionPurger
	slots  DaySlotRemover
	redis  *cache.RedisClient
	logger *zap.Logger
}

func NewService(repo Repository, redis *cache.RedisClient, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		redis:  redis,
		logger: logger,
	}
}

func (s *service) SetCompletionPurger(p CompletionPurger) {
	s.purger = p
}

func (s *service) SetDaySlotRemover(r DaySlotRemover) {
	s.slots = r
}

func validateSchedule(frequency Frequency, daysOfWeek []string) error {
	if !frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidInput, frequency)
	}
	for _, d := range daysOfWeek {
		if !ValidWeekdayToken(d) {
			return fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, d)
		}
	}
	return nil
}

func (s *service) CreateHabit(ctx context.Context, input CreateHabitInput) (*Habit, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.Category != "" && !input.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, input.Category)
	}
	frequency := input.Frequency
	if frequency == "" {
		frequency = FrequencyDaily
	}
	if err := validateSchedule(frequency, input.DaysOfWeek); err != nil {
		return nil, err
	}

	habit := &Habit{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		ColorCode:   input.ColorCode,
		Icon:        input.Icon,
		Frequency:   frequency,
		DaysOfWeek:  input.DaysOfWeek,
		TargetValue: input.TargetValue,
		Unit:        input.Unit,
		EndDate:     input.EndDate,
	}
	if input.StartDate != nil {
		habit.StartDate = *input.StartDate
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	s.publishHabitEvent(ctx, habit, "habit_created")
	return habit, nil
}

func (s *service) GetHabit(ctx context.Context, id, userID uuid.UUID) (*Habit, error) {
	return s.repo.FindOwned(ctx, id, userID)
}

func (s *service) ListHabits(ctx context.Context, filter HabitFilter) ([]Habit, int64, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *service) UpdateHabit(ctx context.Context, id, userID uuid.UUID, input UpdateHabitInput) (*Habit, error) {
	habit, err := s.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		habit.Name = *input.Name
	}
	if input.Description != nil {
		habit.Description = *input.Description
	}
	if input.Category != nil {
		if !input.Category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *input.Category)
		}
		habit.Category = *input.Category
	}
	if input.ColorCode != nil {
		habit.ColorCode = *input.ColorCode
	}
	if input.Icon != nil {
		habit.Icon = *input.Icon
	}
	if input.Frequency != nil {
		habit.Frequency = *input.Frequency
	}
	if input.DaysOfWeek != nil {
		habit.DaysOfWeek = *input.DaysOfWeek
	}
	if err := validateSchedule(habit.Frequency, habit.DaysOfWeek); err != nil {
		return nil, err
	}
	if input.TargetValue != nil {
		habit.TargetValue = input.TargetValue
	}
	if input.Unit != nil {
		habit.Unit = *input.Unit
	}
	if input.EndDate != nil {
		habit.EndDate = input.EndDate
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	s.publishHabitEvent(ctx, habit, "habit_updated")
	return habit, nil
}

func (s *service) DeleteHabit(ctx context.Context, id, userID uuid.UUID) error {
	habit, err := s.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	// Ledger history goes first so a crash between the deletes leaves a
	// habit with no entries rather than orphaned entries.
	if s.purger != nil {
		if err := s.purger.PurgeHabit(ctx, userID, id); err != nil {
			return fmt.Errorf("failed to purge ledger for habit %s: %w", id, err)
		}
	}

	// Day aggregates referencing the habit lose their slot and recount, so
	// no day keeps counting a habit that no longer exists.
	if s.slots != nil {
		if err := s.slots.RemoveHabitSlots(ctx, userID, id); err != nil {
			return fmt.Errorf("failed to remove day slots for habit %s: %w", id, err)
		}
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.publishHabitEvent(ctx, habit, "habit_deleted")
	return nil
}

func (s *service) publishHabitEvent(ctx context.Context, habit *Habit, action string) {
	if s.redis == nil {
		return
	}
	event := events.NewStatsEvent(events.EventHabitMutated, habit.UserID, habit.ID, map[string]interface{}{
		"action": action,
		"name":   habit.Name,
	})
	if err := s.redis.PublishStatsEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish habit event", zap.Error(err))
	}
}
