package habits

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/habitflow/backend/internal/infrastructure/persistence/postgres/connection"
	"gorm.io/gorm"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrInvalidInput  = errors.New("invalid input")
)

// HabitFilter defines the filtering options for habits
type HabitFilter struct {
	UserID   uuid.UUID
	Category *Category
	Name     *string
	Page     int
	PageSize int
}

// Repository defines the interface for habit persistence operations.
// Lookups are always scoped to the owning user; a habit that exists but
// belongs to someone else reads as not found.
type Repository interface {
	Create(ctx context.Context, habit *Habit) error
	FindOwned(ctx context.Context, id, userID uuid.UUID) (*Habit, error)
	FindAll(ctx context.Context, filter HabitFilter) ([]Habit, int64, error)
	Update(ctx context.Context, habit *Habit) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	UpdateSummary(ctx context.Context, id uuid.UUID, summary Summary) error
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, habit *Habit) error {
	return r.db.WithContext(ctx).Create(habit).Error
}

func (r *repository) FindOwned(ctx context.Context, id, userID uuid.UUID) (*Habit, error) {
	var habit Habit
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&habit)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, result.Error
	}
	return &habit, nil
}

func (r *repository) FindAll(ctx context.Context, filter HabitFilter) ([]Habit, int64, error) {
	var habits []Habit
	var total int64
	query := r.db.WithContext(ctx).Model(&Habit{}).
		Where("user_id = ?", filter.UserID)

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Name != nil {
		query = query.Where("name ILIKE ?", "%"+*filter.Name+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize == 0 {
		filter.PageSize = 10000
	}

	err := query.Order("created_at ASC").
		Offset(filter.Page * filter.PageSize).
		Limit(filter.PageSize).
		Find(&habits).Error
	if err != nil {
		return nil, 0, err
	}

	return habits, total, nil
}

func (r *repository) Update(ctx context.Context, habit *Habit) error {
	result := r.db.WithContext(ctx).Save(habit)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHabitNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Habit{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHabitNotFound
	}
	return nil
}

// UpdateSummary writes the derived summary fields without touching the rest
// of the row.
func (r *repository) UpdateSummary(ctx context.Context, id uuid.UUID, summary Summary) error {
	result := r.db.WithContext(ctx).Model(&Habit{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_streak":     summary.CurrentStreak,
			"longest_streak":     summary.LongestStreak,
			"total_completed":    summary.TotalCompleted,
			"success_rate":       summary.SuccessRate,
			"last_broken_date":   summary.LastBrokenDate,
			"last_broken_reason": summary.LastBrokenReason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHabitNotFound
	}
	return nil
}
