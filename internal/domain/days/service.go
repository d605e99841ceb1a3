package days

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/habitflow/backend/internal/domain/checkins"
	"github.com/habitflow/backend/internal/domain/events"
	"github.com/habitflow/backend/internal/domain/habits"
	"github.com/habitflow/backend/internal/infrastructure/cache"
	"github.com/habitflow/backend/pkg/daykey"
	"go.uber.org/zap"
)

var ErrInvalidDay = errors.New("invalid day input")

const maxDayNotesLen = 1000

// CompletionLedger is the slice of the checkins service this package needs:
// toggling a habit inside a day writes through the ledger first so the two
// views of the same (user, habit, day) fact never diverge.
type CompletionLedger interface {
	SetCompletion(ctx context.Context, userID, habitID uuid.UUID, day daykey.DayKey, completed bool, quality *int, notes *string) (*checkins.Checkin, error)
}

type Service interface {
	CreateDay(ctx context.Context, userID uuid.UUID, input CreateDayInput) (*Day, error)
	GetDay(ctx context.Context, id, userID uuid.UUID) (*Day, error)
	UpdateDay(ctx context.Context, id, userID uuid.UUID, input UpdateDayInput) (*Day, error)
	DeleteDay(ctx context.Context, id, userID uuid.UUID) error
	ListDays(ctx context.Context, userID uuid.UUID, start, end daykey.DayKey, status DayStatus) ([]Day, error)
	AddHabitToDay(ctx context.Context, dayID, habitID, userID uuid.UUID) (*Day, error)
	RemoveHabitFromDay(ctx context.Context, dayID, habitID, userID uuid.UUID) (*Day, error)
	CheckHabitInDay(ctx context.Context, dayID, habitID, userID uuid.UUID, input CheckHabitInput) (*Day, error)
	GetMonthlyCalendar(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*MonthlyCalendar, error)

	// RemoveHabitSlots drops a deleted habit's slot from every day that
	// planned it and recounts each affected day. Satisfies the habit
	// registry's slot remover contract.
	RemoveHabitSlots(ctx context.Context, userID, habitID uuid.UUID) error
}

type service struct {
	repo       Repository
	habitsRepo habits.Repository
	ledger     CompletionLedger
	redis      *cache.RedisClient
	logger     *zap.Logger
}

func NewService(repo Repository, habitsRepo habits.Repository, ledger CompletionLedger, redis *cache.RedisClient, logger *zap.Logger) Service {
	return &service{
		repo:       repo,
		habitsRepo: habitsRepo,
		ledger:     ledger,
		redis:      redis,
		logger:     logger,
	}
}

func validateDayContext(mood, energy *int, dayNotes string) error {
	if mood != nil && (*mood < 1 || *mood > 5) {
		return fmt.Errorf("%w: mood must be between 1 and 5", ErrInvalidDay)
	}
	if energy != nil && (*energy < 1 || *energy > 5) {
		return fmt.Errorf("%w: energy must be between 1 and 5", ErrInvalidDay)
	}
	if len(dayNotes) > maxDayNotesLen {
		return fmt.Errorf("%w: day notes exceed %d characters", ErrInvalidDay, maxDayNotesLen)
	}
	return nil
}

// recountHabits rederives the counters from the day's own habit list.
func recountHabits(day *Day) {
	completed := 0
	for _, h := range day.Habits {
		if h.Completed {
			completed++
		}
	}
	day.TotalHabits = len(day.Habits)
	day.CompletedHabits = completed
	day.SuccessRate = checkins.SuccessRate(completed, day.TotalHabits)
}

func (s *service) CreateDay(ctx context.Context, userID uuid.UUID, input CreateDayInput) (*Day, error) {
	if err := validateDayContext(input.Mood, input.Energy, input.DayNotes); err != nil {
		return nil, err
	}

	day := &Day{
		ID:       uuid.New(),
		UserID:   userID,
		Date:     input.Date,
		DayNotes: input.DayNotes,
		Mood:     input.Mood,
		Energy:   input.Energy,
		Tags:     input.Tags,
		Status:   StatusPlanned,
	}
	for _, habitID := range input.HabitIDs {
		if _, err := s.habitsRepo.FindOwned(ctx, habitID, userID); err != nil {
			return nil, err
		}
		day.Habits = append(day.Habits, DayHabit{
			ID:      uuid.New(),
			DayID:   day.ID,
			HabitID: habitID,
		})
	}
	recountHabits(day)

	if err := s.repo.Create(ctx, day); err != nil {
		return nil, err
	}

	s.publishDayEvent(ctx, day, "day_created")
	return day, nil
}

func (s *service) GetDay(ctx context.Context, id, userID uuid.UUID) (*Day, error) {
	return s.repo.FindOwned(ctx, id, userID)
}

func (s *service) ListDays(ctx context.Context, userID uuid.UUID, start, end daykey.DayKey, status DayStatus) ([]Day, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end precedes start", ErrInvalidDay)
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidDay, status)
	}
	return s.repo.ListByFilter(ctx, userID, start, end, status)
}

func (s *service) UpdateDay(ctx context.Context, id, userID uuid.UUID, input UpdateDayInput) (*Day, error) {
	day, err := s.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if input.DayNotes != nil {
		day.DayNotes = *input.DayNotes
	}
	if input.Mood != nil {
		day.Mood = input.Mood
	}
	if input.Energy != nil {
		day.Energy = input.Energy
	}
	if input.Tags != nil {
		day.Tags = *input.Tags
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidDay, *input.Status)
		}
		day.Status = *input.Status
	}
	if err := validateDayContext(day.Mood, day.Energy, day.DayNotes); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, day); err != nil {
		return nil, err
	}

	s.publishDayEvent(ctx, day, "day_updated")
	return day, nil
}

func (s *service) DeleteDay(ctx context.Context, id, userID uuid.UUID) error {
	day, err := s.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.publishDayEvent(ctx, day, "day_deleted")
	return nil
}

// AddHabitToDay plans a habit for the day with completed = false. It does
// not touch the ledger; an entry appears there only once the habit is
// actually checked.
func (s *service) AddHabitToDay(ctx context.Context, dayID, habitID, userID uuid.UUID) (*Day, error) {
	day, err := s.repo.FindOwned(ctx, dayID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.habitsRepo.FindOwned(ctx, habitID, userID); err != nil {
		return nil, err
	}

	entry := &DayHabit{
		ID:      uuid.New(),
		DayID:   day.ID,
		HabitID: habitID,
	}
	if err := s.repo.AddHabit(ctx, entry); err != nil {
		return nil, err
	}

	day.Habits = append(day.Habits, *entry)
	return s.saveRecounted(ctx, day, "habit_added")
}

// RemoveHabitFromDay drops the habit from the day's list and recounts. The
// ledger keeps its history; the day view is a convenience projection, not
// the record of what happened.
func (s *service) RemoveHabitFromDay(ctx context.Context, dayID, habitID, userID uuid.UUID) (*Day, error) {
	day, err := s.repo.FindOwned(ctx, dayID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveHabit(ctx, day.ID, habitID); err != nil {
		return nil, err
	}

	kept := day.Habits[:0]
	for _, h := range day.Habits {
		if h.HabitID != habitID {
			kept = append(kept, h)
		}
	}
	day.Habits = kept
	return s.saveRecounted(ctx, day, "habit_removed")
}

// CheckHabitInDay sets a habit's completion within a day. The ledger is
// written first; only after that succeeds is the day's sub-entry mirrored
// and its counters recomputed, so a failure leaves the system of record
// authoritative.
func (s *service) CheckHabitInDay(ctx context.Context, dayID, habitID, userID uuid.UUID, input CheckHabitInput) (*Day, error) {
	day, err := s.repo.FindOwned(ctx, dayID, userID)
	if err != nil {
		return nil, err
	}

	var entry *DayHabit
	for i := range day.Habits {
		if day.Habits[i].HabitID == habitID {
			entry = &day.Habits[i]
			break
		}
	}
	if entry == nil {
		return nil, ErrHabitNotInDay
	}

	if _, err := s.ledger.SetCompletion(ctx, userID, habitID, day.Date, input.Completed, input.Quality, input.Notes); err != nil {
		return nil, err
	}

	entry.Completed = input.Completed
	if input.Quality != nil {
		entry.Quality = input.Quality
	}
	if input.Notes != nil {
		entry.Notes = *input.Notes
	}
	if input.Completed {
		now := time.Now().UTC()
		entry.CheckedAt = &now
	} else {
		entry.CheckedAt = nil
	}
	if err := s.repo.UpdateHabit(ctx, entry); err != nil {
		return nil, err
	}

	return s.saveRecounted(ctx, day, "habit_checked")
}

func (s *service) RemoveHabitSlots(ctx context.Context, userID, habitID uuid.UUID) error {
	affected, err := s.repo.ListByHabit(ctx, userID, habitID)
	if err != nil {
		return err
	}
	for i := range affected {
		day := &affected[i]
		if err := s.repo.RemoveHabit(ctx, day.ID, habitID); err != nil {
			return err
		}
		kept := day.Habits[:0]
		for _, h := range day.Habits {
			if h.HabitID != habitID {
				kept = append(kept, h)
			}
		}
		day.Habits = kept
		if _, err := s.saveRecounted(ctx, day, "habit_removed"); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) saveRecounted(ctx context.Context, day *Day, action string) (*Day, error) {
	recountHabits(day)
	if err := s.repo.Update(ctx, day); err != nil {
		return nil, err
	}
	s.publishDayEvent(ctx, day, action)
	return day, nil
}

// Calendar weekday labels, Monday first.
var calendarWeekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (s *service) GetMonthlyCalendar(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*MonthlyCalendar, error) {
	first := daykey.FromTime(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
	daysInMonth := daykey.DaysInMonth(year, month)
	last := first.AddDays(daysInMonth - 1)

	records, err := s.repo.ListByRange(ctx, userID, first, last)
	if err != nil {
		return nil, err
	}
	byDate := make(map[daykey.DayKey]*Day, len(records))
	for i := range records {
		byDate[records[i].Date] = &records[i]
	}

	calendar := &MonthlyCalendar{
		Year:  year,
		Month: int(month),
		Days:  make([]CalendarCell, 0, daysInMonth),
	}
	for d := first; !d.After(last); d = d.AddDays(1) {
		calendar.Days = append(calendar.Days, CalendarCell{
			Date:      d,
			Day:       byDate[d],
			DayOfWeek: calendarWeekdays[(int(d.Weekday())+6)%7],
		})
	}
	return calendar, nil
}

func (s *service) publishDayEvent(ctx context.Context, day *Day, action string) {
	if s.redis == nil {
		return
	}
	event := events.NewStatsEvent(events.EventDayMutated, day.UserID, day.ID, map[string]interface{}{
		"action": action,
		"date":   day.Date.String(),
	})
	if err := s.redis.PublishStatsEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish day event", zap.Error(err))
	}
}
