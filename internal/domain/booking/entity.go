package booking

import (
	"time"

	"snapbook/internal/domain"
)

// Booking is a confirmed-or-pending shoot between a customer and a
// photographer. Code is the public reference used in payment order info.
type Booking struct {
	ID               int64                `json:"booking_id" gorm:"primaryKey"`
	Code             string               `json:"booking_code" gorm:"uniqueIndex;not null"`
	CustomerID       int64                `json:"customer_id" gorm:"index;not null"`
	PhotographerID   int64                `json:"photographer_id" gorm:"index;not null"`
	ServiceID        int64                `json:"service_id" gorm:"not null"`
	LocationID       *int64               `json:"location_id,omitempty"`
	CustomLocation   string               `json:"custom_location,omitempty"`
	BookingDate      time.Time            `json:"booking_date" gorm:"not null"`
	Quantity         int                  `json:"quantity" gorm:"not null"`
	ShootingType     domain.ShootingType  `json:"shooting_type" gorm:"not null"`
	Concept          string               `json:"concept" gorm:"type:text"`
	IllustrationURL  string               `json:"illustration_url,omitempty"`
	AvailabilityID   int64                `json:"availability_id" gorm:"index"`
	DiscountCode     string               `json:"discount_code,omitempty"`
	TotalPrice       int64                `json:"total_price" gorm:"not null"`
	AmountPaid       int64                `json:"amount_paid" gorm:"not null"`
	Province         string               `json:"province,omitempty"`
	PhotoStorageLink string               `json:"photo_storage_link,omitempty"`
	Status           domain.BookingStatus `json:"status" gorm:"index;not null"`
	PaymentStatus    domain.PaymentStatus `json:"payment_status" gorm:"not null"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

// Remaining is what the customer still owes.
func (b *Booking) Remaining() int64 {
	if r := b.TotalPrice - b.AmountPaid; r > 0 {
		return r
	}
	return 0
}

var statusTransitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:   {domain.BookingConfirmed, domain.BookingCancelled},
	domain.BookingConfirmed: {domain.BookingCompleted, domain.BookingCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
// Cancelled and completed are terminal.
func CanTransition(from, to domain.BookingStatus) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

var paymentRank = map[domain.PaymentStatus]int{
	domain.PaymentUnpaid:      0,
	domain.PaymentDepositPaid: 1,
	domain.PaymentFullyPaid:   2,
}

// CanAdvancePayment reports whether payment status moves strictly forward.
func CanAdvancePayment(from, to domain.PaymentStatus) bool {
	return to.Valid() && paymentRank[to] > paymentRank[from]
}
