package request

import (
	"time"

	"snapbook/internal/domain"
	"snapbook/internal/domain/catalog"
)

type Status string

const (
	StatusOpen    Status = "open"
	StatusMatched Status = "matched"
	StatusClosed  Status = "closed"
)

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

// Request is a customer's open ask that photographers answer with offers.
type Request struct {
	ID              int64               `json:"request_id" gorm:"primaryKey"`
	Code            string              `json:"request_code" gorm:"uniqueIndex;not null"`
	CustomerID      int64               `json:"customer_id" gorm:"index;not null"`
	Status          Status              `json:"status" gorm:"index;not null"`
	EstimatedBudget int64               `json:"estimated_budget"`
	Concept         string              `json:"concept" gorm:"type:text"`
	ShootingType    domain.ShootingType `json:"shooting_type"`
	LocationText    string              `json:"location_text"`
	Province        string              `json:"province" gorm:"index"`
	RequestDate     time.Time           `json:"request_date"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`

	Offers []Offer `json:"offers,omitempty" gorm:"foreignKey:RequestID"`
}

func (Request) TableName() string { return "requests" }

// Offer is a photographer's priced answer to a request. Status moves from
// pending to accepted or rejected exactly once.
type Offer struct {
	ID             int64       `json:"request_offer_id" gorm:"primaryKey"`
	RequestID      int64       `json:"request_id" gorm:"not null;uniqueIndex:idx_offer_request_photographer"`
	PhotographerID int64       `json:"photographer_id" gorm:"not null;uniqueIndex:idx_offer_request_photographer"`
	ServiceID      int64       `json:"service_id" gorm:"not null"`
	Status         OfferStatus `json:"status" gorm:"index;not null"`
	CustomPrice    int64       `json:"custom_price"`
	Message        string      `json:"message,omitempty" gorm:"type:text"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	// Derived for display, never stored.
	DiscountPercentage int `json:"discount_percentage" gorm:"-"`

	Photographer *domain.User          `json:"photographer,omitempty" gorm:"foreignKey:PhotographerID"`
	Service      *catalog.PhotoService `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	Request      *Request              `json:"request,omitempty" gorm:"foreignKey:RequestID"`
}

func (Offer) TableName() string { return "request_offers" }

func (o *Offer) fillDiscount() {
	if o.Service != nil {
		o.DiscountPercentage = DiscountPercentage(o.CustomPrice, o.Service.Price)
	}
}
