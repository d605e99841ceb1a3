package days

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/habitflow/backend/internal/infrastructure/persistence/postgres/connection"
	"github.com/habitflow/backend/pkg/daykey"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrDayNotFound       = errors.New("day not found")
	ErrDayExists         = errors.New("day already exists for this date")
	ErrHabitNotInDay     = errors.New("habit not found in this day")
	ErrHabitAlreadyInDay = errors.New("habit already added to this day")
)

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Repository defines the interface for day aggregate persistence
type Repository interface {
	Create(ctx context.Context, day *Day) error
	FindOwned(ctx context.Context, id, userID uuid.UUID) (*Day, error)
	FindByDate(ctx context.Context, userID uuid.UUID, date daykey.DayKey) (*Day, error)
	ListByRange(ctx context.Context, userID uuid.UUID, start, end daykey.DayKey) ([]Day, error)
	ListByFilter(ctx context.Context, userID uuid.UUID, start, end daykey.DayKey, status DayStatus) ([]Day, error)
	ListByHabit(ctx context.Context, userID, habitID uuid.UUID) ([]Day, error)
	Update(ctx context.Context, day *Day) error
	Delete(ctx context.Context, id, userID uuid.UUID) error

	AddHabit(ctx context.Context, entry *DayHabit) error
	UpdateHabit(ctx context.Context, entry *DayHabit) error
	RemoveHabit(ctx context.Context, dayID, habitID uuid.UUID) error
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, day *Day) error {
	if err := r.db.WithContext(ctx).Create(day).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDayExists
		}
		return err
	}
	return nil
}

func (r *repository) FindOwned(ctx context.Context, id, userID uuid.UUID) (*Day, error) {
	var day Day
	result := r.db.WithContext(ctx).
		Preload("Habits").
		Where("id = ? AND user_id = ?", id, userID).
		First(&day)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, result.Error
	}
	return &day, nil
}

func (r *repository) FindByDate(ctx context.Context, userID uuid.UUID, date daykey.DayKey) (*Day, error) {
	var day Day
	result := r.db.WithContext(ctx).
		Preload("Habits").
		Where("user_id = ? AND date = ?", userID, date).
		First(&day)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, result.Error
	}
	return &day, nil
}

func (r *repository) ListByRange(ctx context.Context, userID uuid.UUID, start, end daykey.DayKey) ([]Day, error) {
	var days []Day
	err := r.db.WithContext(ctx).
		Preload("Habits").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date ASC").
		Find(&days).Error
	return days, err
}

// ListByFilter is the caller-facing range listing, newest first, with an
// optional status filter. ListByRange stays ascending for calendar assembly.
func (r *repository) ListByFilter(ctx context.Context, userID uuid.UUID, start, end daykey.DayKey, status DayStatus) ([]Day, error) {
	query := r.db.WithContext(ctx).
		Preload("Habits").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var days []Day
	err := query.Order("date DESC").Find(&days).Error
	return days, err
}

// ListByHabit returns every day of the user that carries a slot for the
// given habit.
func (r *repository) ListByHabit(ctx context.Context, userID, habitID uuid.UUID) ([]Day, error) {
	var days []Day
	err := r.db.WithContext(ctx).
		Preload("Habits").
		Joins("JOIN day_habits ON day_habits.day_id = days.id").
		Where("days.user_id = ? AND day_habits.habit_id = ?", userID, habitID).
		Find(&days).Error
	return days, err
}

// Update persists day-level fields and counters. Habit sub-entries are
// managed through AddHabit/UpdateHabit/RemoveHabit, so associations are
// deliberately not saved here.
func (r *repository) Update(ctx context.Context, day *Day) error {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: false}).
		Omit("Habits").
		Save(day)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDayNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Day{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDayNotFound
	}
	return nil
}

func (r *repository) AddHabit(ctx context.Context, entry *DayHabit) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrHabitAlreadyInDay
		}
		return err
	}
	return nil
}

func (r *repository) UpdateHabit(ctx context.Context, entry *DayHabit) error {
	result := r.db.WithContext(ctx).Save(entry)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHabitNotInDay
	}
	return nil
}

func (r *repository) RemoveHabit(ctx context.Context, dayID, habitID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("day_id = ? AND habit_id = ?", dayID, habitID).
		Delete(&DayHabit{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHabitNotInDay
	}
	return nil
}
