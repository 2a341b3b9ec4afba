package domain

type ShootingType string

const (
	ShootingOutdoor ShootingType = "outdoor"
	ShootingStudio  ShootingType = "studio"
)

func (t ShootingType) Valid() bool {
	return t == ShootingOutdoor || t == ShootingStudio
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentUnpaid      PaymentStatus = "unpaid"
	PaymentDepositPaid PaymentStatus = "deposit_paid"
	PaymentFullyPaid   PaymentStatus = "fully_paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentDepositPaid, PaymentFullyPaid:
		return true
	}
	return false
}
