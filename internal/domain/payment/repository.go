package payment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"snapbook/internal/domain/booking"
)

type Repository interface {
	CreateAttempt(ctx context.Context, a *Attempt) error
	UpdateAttempt(ctx context.Context, a *Attempt) error
	GetAttempt(ctx context.Context, orderID string) (*Attempt, error)
	BookingOf(ctx context.Context, a *Attempt) (*booking.Booking, error)
	ListRecords(ctx context.Context, bookingID int64) ([]Record, error)
	ExpireAttempts(ctx context.Context, before time.Time) (int64, error)
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateAttempt(ctx context.Context, a *Attempt) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) UpdateAttempt(ctx context.Context, a *Attempt) error {
	return r.db.WithContext(ctx).Model(&Attempt{}).
		Where("order_id = ?", a.OrderID).
		Updates(map[string]any{
			"status":   a.Status,
			"pay_url":  a.PayURL,
			"deeplink": a.Deeplink,
			"message":  a.Message,
		}).Error
}

func (r *repository) GetAttempt(ctx context.Context, orderID string) (*Attempt, error) {
	a, err := findAttempt(r.db.WithContext(ctx), orderID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAttemptNotFound
	}
	return a, nil
}

func (r *repository) BookingOf(ctx context.Context, a *Attempt) (*booking.Booking, error) {
	var b booking.Booking
	err := r.db.WithContext(ctx).First(&b, a.BookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListRecords(ctx context.Context, bookingID int64) ([]Record, error) {
	var out []Record
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ExpireAttempts marks pending attempts created before the cutoff as expired.
func (r *repository) ExpireAttempts(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Attempt{}).
		Where("status = ? AND created_at < ?", AttemptPending, before).
		Updates(map[string]any{"status": AttemptExpired, "message": "expired without callback"})
	return res.RowsAffected, res.Error
}

func (r *repository) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// findRecord returns nil when no record has the transaction id.
func findRecord(tx *gorm.DB, transID string) (*Record, error) {
	var rec Record
	err := tx.Where("transaction_id = ?", transID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// findAttempt returns nil for an empty or unknown order id.
func findAttempt(tx *gorm.DB, orderID string) (*Attempt, error) {
	if orderID == "" {
		return nil, nil
	}
	var a Attempt
	err := tx.Where("order_id = ?", orderID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// settleAttempt moves a pending attempt to its final status.
func settleAttempt(tx *gorm.DB, orderID string, status AttemptStatus, message string) error {
	return tx.Model(&Attempt{}).
		Where("order_id = ? AND status = ?", orderID, AttemptPending).
		Updates(map[string]any{"status": status, "message": message}).Error
}
