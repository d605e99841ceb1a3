package checkins

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
	ErrCheckinNotFound = errors.New("checkin not found")
	ErrCheckinExists   = errors.New("checkin already exists for this day")
)

// isUniqueViolation detects a losing insert on the (user, habit, day)
// uniqueness constraint.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Repository defines the interface for ledger persistence operations
type Repository interface {
	Create(ctx context.Context, checkin *Checkin) error
	FindByID(ctx context.Context, id, userID uuid.UUID) (*Checkin, error)
	FindByDay(ctx context.Context, userID, habitID uuid.UUID, day daykey.DayKey) (*Checkin, error)
	ListByHabit(ctx context.Context, userID, habitID uuid.UUID) ([]Checkin, error)
	ListByRange(ctx context.Context, userID, habitID uuid.UUID, start, end daykey.DayKey) ([]Checkin, error)
	ListByUserRange(ctx context.Context, userID uuid.UUID, start, end daykey.DayKey) ([]Checkin, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Checkin, error)
	Update(ctx context.Context, checkin *Checkin) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	DeleteForHabit(ctx context.Context, userID, habitID uuid.UUID) error
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, checkin *Checkin) error {
	if err := r.db.WithContext(ctx).Create(checkin).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrCheckinExists
		}
		return err
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id, userID uuid.UUID) (*Checkin, error) {
	var checkin Checkin
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&checkin)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCheckinNotFound
		}
		return nil, result.Error
	}
	return &checkin, nil
}

func (r *repository) FindByDay(ctx context.Context, userID, habitID uuid.UUID, day daykey.DayKey) (*Checkin, error) {
	var checkin Checkin
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND habit_id = ? AND day = ?", userID, habitID, day).
		First(&checkin)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCheckinNotFound
		}
		return nil, result.Error
	}
	return &checkin, nil
}

func (r *repository) ListByHabit(ctx context.Context, userID, habitID uuid.UUID) ([]Checkin, error) {
	var checkins []Checkin
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND habit_id = ?", userID, habitID).
		Order("day DESC").
		Find(&checkins).Error
	return checkins, err
}

func (r *repository) ListByRange(ctx context.Context, userID, habitID uuid.UUID, start, end daykey.DayKey) ([]Checkin, error) {
	var checkins []Checkin
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND habit_id = ?", userID, habitID)
	if start != "" {
		query = query.Where("day >= ?", start)
	}
	if end != "" {
		query = query.Where("day <= ?", end)
	}
	err := query.Order("day DESC").Find(&checkins).Error
	return checkins, err
}

func (r *repository) ListByUserRange(ctx context.Context, userID uuid.UUID, start, end daykey.DayKey) ([]Checkin, error) {
	var checkins []Checkin
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND day >= ? AND day <= ?", userID, start, end).
		Order("day DESC").
		Find(&checkins).Error
	return checkins, err
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Checkin, error) {
	var checkins []Checkin
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("day DESC").
		Find(&checkins).Error
	return checkins, err
}

func (r *repository) Update(ctx context.Context, checkin *Checkin) error {
	result := r.db.WithContext(ctx).Save(checkin)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCheckinNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Checkin{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCheckinNotFound
	}
	return nil
}

func (r *repository) DeleteForHabit(ctx context.Context, userID, habitID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND habit_id = ?", userID, habitID).
		Delete(&Checkin{}).Error
}
