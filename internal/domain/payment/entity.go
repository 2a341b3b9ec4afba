package payment

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptPending AttemptStatus = "pending"
	AttemptPaid    AttemptStatus = "paid"
	AttemptFailed  AttemptStatus = "failed"
	AttemptExpired AttemptStatus = "expired"
)

// Attempt is one redirect to the gateway. It exists before the customer
// leaves, so an abandoned payment is visible as pending until it expires.
type Attempt struct {
	ID        int64         `json:"-" gorm:"primaryKey"`
	OrderID   string        `json:"order_id" gorm:"uniqueIndex;not null"`
	BookingID int64         `json:"booking_id" gorm:"index;not null"`
	Option    Option        `json:"option" gorm:"not null"`
	Amount    int64         `json:"amount" gorm:"not null"`
	Status    AttemptStatus `json:"status" gorm:"index;not null"`
	PayURL    string        `json:"pay_url,omitempty"`
	Deeplink  string        `json:"deeplink,omitempty"`
	Message   string        `json:"message,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (Attempt) TableName() string { return "payment_attempts" }

// Record is a settled payment. TransactionID is the gateway's transId and
// the replay key for callbacks.
type Record struct {
	ID            int64          `json:"payment_id" gorm:"primaryKey"`
	BookingID     int64          `json:"booking_id" gorm:"index;not null"`
	Amount        int64          `json:"amount" gorm:"not null"`
	PaymentType   Option         `json:"payment_type" gorm:"not null"`
	TransactionID string         `json:"transaction_id" gorm:"uniqueIndex;not null"`
	PaymentMethod string         `json:"payment_method"`
	Info          string         `json:"info"`
	RawCallback   datatypes.JSON `json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (Record) TableName() string { return "payment_records" }
