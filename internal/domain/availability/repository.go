package availability

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"snapbook/internal/database"
)

type Repository interface {
	List(ctx context.Context, photographerID int64, from, to *time.Time) ([]Availability, error)
	GetByID(ctx context.Context, id int64) (*Availability, error)
	Create(ctx context.Context, a *Availability) error
	DeleteAvailable(ctx context.Context, id int64) (bool, error)
	PurgeAvailableBefore(ctx context.Context, day time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, photographerID int64, from, to *time.Time) ([]Availability, error) {
	q := r.db.WithContext(ctx).Where("photographer_id = ?", photographerID)
	if from != nil {
		q = q.Where("available_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("available_date < ?", *to)
	}
	var out []Availability
	err := q.Order("available_date ASC").Find(&out).Error
	return out, err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Availability, error) {
	var a Availability
	err := r.db.WithContext(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) Create(ctx context.Context, a *Availability) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if database.IsUniqueViolation(err) {
		return ErrDuplicateDate
	}
	return err
}

// DeleteAvailable removes the row only while it is still available.
func (r *repository) DeleteAvailable(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, StatusAvailable).
		Delete(&Availability{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) PurgeAvailableBefore(ctx context.Context, day time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND available_date < ?", StatusAvailable, day).
		Delete(&Availability{})
	return res.RowsAffected, res.Error
}

// Consume flips an availability from available to booked inside the
// caller's transaction. Zero affected rows means someone else took the day
// or it belongs to a different photographer.
func Consume(tx *gorm.DB, availabilityID, photographerID int64) (*Availability, error) {
	res := tx.Model(&Availability{}).
		Where("id = ? AND photographer_id = ? AND status = ?", availabilityID, photographerID, StatusAvailable).
		Update("status", StatusBooked)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotAvailable
	}
	var a Availability
	if err := tx.First(&a, availabilityID).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Release returns a booked day to the calendar, used when a booking is cancelled.
func Release(tx *gorm.DB, availabilityID int64) error {
	return tx.Model(&Availability{}).
		Where("id = ? AND status = ?", availabilityID, StatusBooked).
		Update("status", StatusAvailable).Error
}
