package checkins

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/habitflow/backend/internal/domain/events"
	"github.com/habitflow/backend/internal/domain/habits"
	"github.com/habitflow/backend/internal/infrastructure/cache"
	"github.com/habitflow/backend/pkg/daykey"
	"go.uber.org/zap"
)

var ErrInvalidEntry = errors.New("invalid checkin input")

const (
	maxNotesLen          = 500
	maxSkipReasonTextLen = 200
)

type Service interface {
	// Toggle creates a completed entry for the day if none exists, or
	// flips an existing one. Safe under concurrent first toggles for the
	// same key.
	Toggle(ctx context.Context, userID, habitID uuid.UUID, day daykey.DayKey) (*Checkin, error)
	// Record is an explicit create and conflicts if the day already has
	// an entry.
	Record(ctx context.Context, userID, habitID uuid.UUID, input RecordCheckinInput) (*Checkin, error)
	UpdateEntry(ctx context.Context, userID, habitID, checkinID uuid.UUID, input UpdateCheckinInput) (*Checkin, error)
	DeleteEntry(ctx context.Context, userID, habitID, checkinID uuid.UUID) error
	ListByRange(ctx context.Context, userID, habitID uuid.UUID, start, end daykey.DayKey) ([]Checkin, error)
	ListByMonth(ctx context.Context, userID uuid.UUID, year int, month time.Month) (map[daykey.DayKey][]Checkin, error)

	// SetCompletion upserts the entry for a day to an explicit state. Used
	// by the day-aggregate view so its per-habit flags always pass through
	// the ledger.
	SetCompletion(ctx context.Context, userID, habitID uuid.UUID, day daykey.DayKey, completed bool, quality *int, notes *string) (*Checkin, error)

	GetHabitStats(ctx context.Context, userID, habitID uuid.UUID) (*HabitStats, error)
	GetStreakDetail(ctx context.Context, userID, habitID uuid.UUID) (*StreakDetail, error)
	GetHeatmap(ctx context.Context, userID, habitID uuid.UUID, monthOffset int) (*Heatmap, error)
	GetTrend(ctx context.Context, userID, habitID uuid.UUID, windowDays int, interval TrendInterval) (*Trend, error)
	GetInsights(ctx context.Context, userID uuid.UUID) ([]Insight, error)

	// PurgeHabit drops all ledger history for a habit. Satisfies
	// habits.CompletionPurger for cascade on habit deletion.
	PurgeHabit(ctx context.Context, userID, habitID uuid.UUID) error
}

type service struct {
	repo       Repository
	habitsRepo habits.Repository
	redis      *cache.RedisClient
	logger     *zap.Logger
}

func NewService(repo Repository, habitsRepo habits.Repository, redis *cache.RedisClient, logger *zap.Logger) Service {
	return &service{
		repo:       repo,
		habitsRepo: habitsRepo,
		redis:      redis,
		logger:     logger,
	}
}

func validateEntry(quality *int, skipReason *SkipReason, skipReasonText, notes string) error {
	if quality != nil && (*quality < 1 || *quality > 5) {
		return fmt.Errorf("%w: quality must be between 1 and 5", ErrInvalidEntry)
	}
	if skipReason != nil && !skipReason.Valid() {
		return fmt.Errorf("%w: unknown skip reason %q", ErrInvalidEntry, *skipReason)
	}
	if len(skipReasonText) > maxSkipReasonTextLen {
		return fmt.Errorf("%w: skip reason text exceeds %d characters", ErrInvalidEntry, maxSkipReasonTextLen)
	}
	if len(notes) > maxNotesLen {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidEntry, maxNotesLen)
	}
	return nil
}

// normalizeEntry clears the fields that do not apply to the entry's
// completion state: quality belongs to completed entries, skip reasons to
// incomplete ones, and free-form reason text only to the "other" reason.
func normalizeEntry(c *Checkin) {
	if c.Completed {
		c.SkipReason = nil
		c.SkipReasonText = ""
	} else {
		c.Quality = nil
	}
	if c.SkipReason == nil || *c.SkipReason != SkipOther {
		c.SkipReasonText = ""
	}
}

func (s *service) Toggle(ctx context.Context, userID, habitID uuid.UUID, day daykey.DayKey) (*Checkin, error) {
	habit, err := s.habitsRepo.FindOwned(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByDay(ctx, userID, habitID, day)
	switch {
	case err == nil:
		entry.Completed = !entry.Completed
		normalizeEntry(entry)
		if err := s.repo.Update(ctx, entry); err != nil {
			return nil, err
		}
	case errors.Is(err, ErrCheckinNotFound):
		entry = &Checkin{
			ID:        uuid.New(),
			UserID:    userID,
			HabitID:   habitID,
			Day:       day,
			Completed: true,
		}
		if createErr := s.repo.Create(ctx, entry); createErr != nil {
			if !errors.Is(createErr, ErrCheckinExists) {
				return nil, createErr
			}
			// Lost a race against a concurrent first toggle. The winner's
			// row is the single source of truth for this day; re-read it
			// instead of failing the caller.
			entry, err = s.repo.FindByDay(ctx, userID, habitID, day)
			if err != nil {
				return nil, err
			}
		}
	default:
		return nil, err
	}

	if err := s.afterMutation(ctx, habit, entry, nil); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Record(ctx context.Context, userID, habitID uuid.UUID, input RecordCheckinInput) (*Checkin, error) {
	habit, err := s.habitsRepo.FindOwned(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}
	if err := validateEntry(input.Quality, input.SkipReason, input.SkipReasonText, input.Notes); err != nil {
		return nil, err
	}

	entry := &Checkin{
		ID:             uuid.New(),
		UserID:         userID,
		HabitID:        habitID,
		Day:            input.Day,
		Completed:      input.Completed,
		Quality:        input.Quality,
		SkipReason:     input.SkipReason,
		SkipReasonText: input.SkipReasonText,
		Notes:          input.Notes,
	}
	normalizeEntry(entry)

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.afterMutation(ctx, habit, entry, entry.SkipReason); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) UpdateEntry(ctx context.Context, userID, habitID, checkinID uuid.UUID, input UpdateCheckinInput) (*Checkin, error) {
	habit, err := s.habitsRepo.FindOwned(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByID(ctx, checkinID, userID)
	if err != nil {
		return nil, err
	}
	if entry.HabitID != habitID {
		return nil, ErrCheckinNotFound
	}

	if input.Completed != nil {
		entry.Completed = *input.Completed
	}
	if input.Quality != nil {
		entry.Quality = input.Quality
	}
	if input.SkipReason != nil {
		entry.SkipReason = input.SkipReason
	}
	if input.SkipReasonText != nil {
		entry.SkipReasonText = *input.SkipReasonText
	}
	if input.Notes != nil {
		entry.Notes = *input.Notes
	}
	if err := validateEntry(entry.Quality, entry.SkipReason, entry.SkipReasonText, entry.Notes); err != nil {
		return nil, err
	}
	normalizeEntry(entry)

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.afterMutation(ctx, habit, entry, entry.SkipReason); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) DeleteEntry(ctx context.Context, userID, habitID, checkinID uuid.UUID) error {
	habit, err := s.habitsRepo.FindOwned(ctx, habitID, userID)
	if err != nil {
		return err
	}

	entry, err := s.repo.FindByID(ctx, checkinID, userID)
	if err != nil {
		return err
	}
	if entry.HabitID != habitID {
		return ErrCheckinNotFound
	}

	if err := s.repo.Delete(ctx, checkinID, userID); err != nil {
		return err
	}
	return s.afterMutation(ctx, habit, entry, nil)
}

func (s *service) ListByRange(ctx context.Context, userID, habitID uuid.UUID, start, end daykey.DayKey) ([]Checkin, error) {
	if _, err := s.habitsRepo.FindOwned(ctx, habitID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByRange(ctx, userID, habitID, start, end)
}

func (s *service) ListByMonth(ctx context.Context, userID uuid.UUID, year int, month time.Month) (map[daykey.DayKey][]Checkin, error) {
	first := daykey.FromTime(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
	last := first.AddDays(daykey.DaysInMonth(year, month) - 1)

	entries, err := s.repo.ListByUserRange(ctx, userID, first, last)
	if err != nil {
		return nil, err
	}

	byDay := make(map[daykey.DayKey][]Checkin)
	for _, e := range entries {
		byDay[e.Day] = append(byDay[e.Day], e)
	}
	return byDay, nil
}

func (s *service) SetCompletion(ctx context.Context, userID, habitID uuid.UUID, day daykey.DayKey, completed bool, quality *int, notes *string) (*Checkin, error) {
	habit, err := s.habitsRepo.FindOwned(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}
	var notesVal string
	if notes != nil {
		notesVal = *notes
	}
	if err := validateEntry(quality, nil, "", notesVal); err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByDay(ctx, userID, habitID, day)
	if errors.Is(err, ErrCheckinNotFound) {
		entry = &Checkin{
			ID:      uuid.New(),
			UserID:  userID,
			HabitID: habitID,
			Day:     day,
		}
		if createErr := s.repo.Create(ctx, entry); createErr != nil && !errors.Is(createErr, ErrCheckinExists) {
			return nil, createErr
		} else if createErr != nil {
			// Concurrent create won; fall through to update the winner's
			// row to the requested state. Unlike Toggle this operation is
			// an absolute set, so applying it twice is harmless.
			entry, err = s.repo.FindByDay(ctx, userID, habitID, day)
			if err != nil {
				return nil, err
			}
		}
	} else if err != nil {
		return nil, err
	}

	entry.Completed = completed
	if quality != nil {
		entry.Quality = quality
	}
	if notes != nil {
		entry.Notes = *notes
	}
	normalizeEntry(entry)

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.afterMutation(ctx, habit, entry, nil); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) GetHabitStats(ctx context.Context, userID, habitID uuid.UUID) (*HabitStats, error) {
	habit, err := s.habitsRepo.FindOwned(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListByHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	today := daykey.Today()
	completed := 0
	for _, e := range entries {
		if e.Completed {
			completed++
		}
	}

	stats := &HabitStats{
		HabitID:       habit.ID,
		HabitName:     habit.Name,
		Category:      string(habit.Category),
		Frequency:     string(habit.Frequency),
		TotalCheckins: len(entries),
		Completed:     completed,
		SuccessRate:   SuccessRate(completed, len(entries)),
		CurrentStreak: CurrentStreak(habit, entries, today),
		LongestStreak: LongestStreak(habit, entries, today),
		Last30Days:    last30Days(entries, today),
	}
	if len(entries) > 0 {
		stats.LastCheckinDay = entries[0].Day
	}
	if len(entries) > 10 {
		stats.RecentCheckins = entries[:10]
	} else {
		stats.RecentCheckins = entries
	}
	return stats, nil
}

func last30Days(entries []Checkin, today daykey.DayKey) map[daykey.DayKey]DaySnapshot {
	byDay := indexByDay(entries)
	window := make(map[daykey.DayKey]DaySnapshot, 30)
	for i := 0; i < 30; i++ {
		d := today.AddDays(-i)
		var snap DaySnapshot
		if entry, ok := byDay[d]; ok {
			completed := entry.Completed
			snap = DaySnapshot{Completed: &completed, Notes: entry.Notes}
		}
		window[d] = snap
	}
	return window
}

func (s *service) GetStreakDetail(ctx context.Context, userID, habitID uuid.UUID) (*StreakDetail, error) {
	habit, err := s.habitsRepo.FindOwned(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListByHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	detail := &StreakDetail{
		HabitID:          habit.ID,
		HabitName:        habit.Name,
		CurrentStreak:    habit.CurrentStreak,
		LongestStreak:    habit.LongestStreak,
		LastBrokenDate:   habit.LastBrokenDate,
		LastBrokenReason: habit.LastBrokenReason,
	}
	if len(entries) > 0 {
		detail.StartedToday = habit.CurrentStreak > 0 && entries[0].Day == daykey.Today()
	}
	if len(entries) > 7 {
		detail.RecentHistory = entries[:7]
	} else {
		detail.RecentHistory = entries
	}
	return detail, nil
}

func (s *service) GetHeatmap(ctx context.Context, userID, habitID uuid.UUID, monthOffset int) (*Heatmap, error) {
	if _, err := s.habitsRepo.FindOwned(ctx, habitID, userID); err != nil {
		return nil, err
	}

	first, last := daykey.MonthRange(time.Now(), monthOffset)
	entries, err := s.repo.ListByRange(ctx, userID, habitID, first, last)
	if err != nil {
		return nil, err
	}
	return BuildHeatmap(first, last, entries), nil
}

func (s *service) GetTrend(ctx context.Context, userID, habitID uuid.UUID, windowDays int, interval TrendInterval) (*Trend, error) {
	if _, err := s.habitsRepo.FindOwned(ctx, habitID, userID); err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	if interval == "" {
		interval = TrendWeekly
	}
	if !interval.Valid() {
		return nil, fmt.Errorf("%w: unknown trend interval %q", ErrInvalidEntry, interval)
	}

	// The window ends today; future-dated entries stay out of the buckets.
	today := daykey.Today()
	start := today.AddDays(-windowDays)
	entries, err := s.repo.ListByRange(ctx, userID, habitID, start, today)
	if err != nil {
		return nil, err
	}
	return BuildTrend(entries, interval), nil
}

func (s *service) GetInsights(ctx context.Context, userID uuid.UUID) ([]Insight, error) {
	userHabits, _, err := s.habitsRepo.FindAll(ctx, habits.HabitFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return GenerateInsights(userHabits, entries), nil
}

func (s *service) PurgeHabit(ctx context.Context, userID, habitID uuid.UUID) error {
	return s.repo.DeleteForHabit(ctx, userID, habitID)
}

// afterMutation recomputes the habit's derived summary from the full ledger
// and writes it back, then fans out the change event. skipReason, when set,
// records why a positive streak broke.
func (s *service) afterMutation(ctx context.Context, habit *habits.Habit, entry *Checkin, skipReason *SkipReason) error {
	if !entry.Completed && habit.CurrentStreak > 0 {
		brokenAt := entry.Day.Time()
		habit.LastBrokenDate = &brokenAt
		if skipReason != nil {
			habit.LastBrokenReason = string(*skipReason)
		} else {
			habit.LastBrokenReason = ""
		}
	}

	entries, err := s.repo.ListByHabit(ctx, habit.UserID, habit.ID)
	if err != nil {
		return fmt.Errorf("failed to load ledger for recompute: %w", err)
	}

	summary := ComputeSummary(habit, entries, daykey.Today())
	if err := s.habitsRepo.UpdateSummary(ctx, habit.ID, summary); err != nil {
		return fmt.Errorf("failed to write habit summary: %w", err)
	}

	s.publishCheckinEvent(ctx, habit, entry)
	s.publishStatsRecomputed(ctx, habit, summary)
	return nil
}

func (s *service) publishCheckinEvent(ctx context.Context, habit *habits.Habit, entry *Checkin) {
	if s.redis == nil {
		return
	}
	event := events.NewStatsEvent(events.EventCheckinMutated, habit.UserID, habit.ID, map[string]interface{}{
		"day":       entry.Day.String(),
		"completed": entry.Completed,
	})
	if err := s.redis.PublishStatsEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish checkin event", zap.Error(err))
	}
}

// publishStatsRecomputed fans out the fresh summary so subscribers can
// refresh without re-reading the ledger.
func (s *service) publishStatsRecomputed(ctx context.Context, habit *habits.Habit, summary habits.Summary) {
	if s.redis == nil {
		return
	}
	event := events.NewStatsEvent(events.EventStatsRecomputed, habit.UserID, habit.ID, map[string]interface{}{
		"current_streak": summary.CurrentStreak,
		"longest_streak": summary.LongestStreak,
		"success_rate":   summary.SuccessRate,
	})
	if err := s.redis.PublishStatsEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish stats event", zap.Error(err))
	}
}
