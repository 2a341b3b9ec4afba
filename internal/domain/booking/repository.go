package booking

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"snapbook/internal/domain"
	"snapbook/internal/domain/availability"
	"snapbook/internal/domain/catalog"
)

type Repository interface {
	// Create books the availability, redeems the discount code (when
	// discountID > 0) and inserts the booking in one transaction.
	Create(ctx context.Context, b *Booking, discountID int64) error
	GetByCode(ctx context.Context, code string) (*Booking, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Booking, error)
	ListByPhotographer(ctx context.Context, photographerID int64) ([]Booking, error)
	UpdateStatus(ctx context.Context, b *Booking, to domain.BookingStatus) error
	UpdatePaymentStatus(ctx context.Context, b *Booking, to domain.PaymentStatus, amountPaid int64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking, discountID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := availability.Consume(tx, b.AvailabilityID, b.PhotographerID)
		if err != nil {
			return err
		}
		if !availability.SameDay(slot.AvailableDate, b.BookingDate) {
			return availability.ErrDateMismatch
		}
		b.BookingDate = slot.AvailableDate

		if discountID > 0 {
			if err := catalog.RedeemDiscount(tx, discountID); err != nil {
				return err
			}
		}
		return tx.Create(b).Error
	})
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Booking, error) {
	return FindByCode(r.db.WithContext(ctx), code)
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int64) ([]Booking, error) {
	var out []Booking
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("booking_date DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) ListByPhotographer(ctx context.Context, photographerID int64) ([]Booking, error) {
	var out []Booking
	err := r.db.WithContext(ctx).
		Where("photographer_id = ?", photographerID).
		Order("booking_date DESC").
		Find(&out).Error
	return out, err
}

// UpdateStatus moves b from its loaded status to `to`. Cancelling returns
// the availability to the calendar.
func (r *repository) UpdateStatus(ctx context.Context, b *Booking, to domain.BookingStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Booking{}).
			Where("id = ? AND status = ?", b.ID, b.Status).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidStatusTransition
		}
		if to == domain.BookingCancelled && b.AvailabilityID > 0 {
			if err := availability.Release(tx, b.AvailabilityID); err != nil {
				return err
			}
		}
		b.Status = to
		return nil
	})
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, b *Booking, to domain.PaymentStatus, amountPaid int64) error {
	res := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND payment_status = ?", b.ID, b.PaymentStatus).
		Updates(map[string]any{"payment_status": to, "amount_paid": amountPaid})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaymentStateChanged
	}
	b.PaymentStatus = to
	b.AmountPaid = amountPaid
	return nil
}

// FindByCode loads a booking with db, which may be a transaction.
func FindByCode(db *gorm.DB, code string) (*Booking, error) {
	var b Booking
	err := db.Where("code = ?", code).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ApplyPayment records a reconciled payment inside the caller's transaction.
// The update only succeeds while the payment status is still `from`.
func ApplyPayment(tx *gorm.DB, b *Booking, from, to domain.PaymentStatus, amountPaid int64) error {
	res := tx.Model(&Booking{}).
		Where("id = ? AND payment_status = ?", b.ID, from).
		Updates(map[string]any{
			"status":         domain.BookingConfirmed,
			"payment_status": to,
			"amount_paid":    amountPaid,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaymentStateChanged
	}
	b.Status = domain.BookingConfirmed
	b.PaymentStatus = to
	b.AmountPaid = amountPaid
	return nil
}
