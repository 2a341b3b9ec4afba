package wizard

import (
	"strings"
	"time"

	"snapbook/internal/domain"
)

// BookingFormData is everything the booking wizard collects. TotalPrice is
// computed on submit and never trusted from the client.
type BookingFormData struct {
	PhotographerID   int64                `json:"photographer_id"`
	BookingDate      time.Time            `json:"booking_date"`
	LocationID       int64                `json:"location_id"`
	CustomLocation   string               `json:"custom_location"`
	Quantity         int                  `json:"quantity"`
	ServiceID        int64                `json:"service_id"`
	ShootingType     domain.ShootingType  `json:"shooting_type"`
	Concept          string               `json:"concept"`
	IllustrationURL  string               `json:"illustration_url"`
	AvailabilityID   int64                `json:"availability_id"`
	DiscountCode     string               `json:"discount_code,omitempty"`
	TotalPrice       int64                `json:"total_price"`
	Province         string               `json:"province"`
	PhotoStorageLink string               `json:"photo_storage_link"`
	PaymentStatus    domain.PaymentStatus `json:"payment_status"`
}

// NewFormData returns the defaults a fresh draft starts with.
func NewFormData() BookingFormData {
	return BookingFormData{
		Quantity:      1,
		PaymentStatus: domain.PaymentUnpaid,
	}
}

// FormPatch is a partial update. Nil fields are left untouched.
type FormPatch struct {
	PhotographerID   *int64               `json:"photographer_id"`
	BookingDate      *time.Time           `json:"booking_date"`
	LocationID       *int64               `json:"location_id"`
	CustomLocation   *string              `json:"custom_location"`
	Quantity         *int                 `json:"quantity" validate:"omitempty,gte=1,lte=100"`
	ServiceID        *int64               `json:"service_id"`
	ShootingType     *domain.ShootingType `json:"shooting_type" validate:"omitempty,oneof=outdoor studio"`
	Concept          *string              `json:"concept" validate:"omitempty,max=4000"`
	IllustrationURL  *string              `json:"illustration_url"`
	AvailabilityID   *int64               `json:"availability_id"`
	DiscountCode     *string              `json:"discount_code" validate:"omitempty,max=64"`
	Province         *string              `json:"province" validate:"omitempty,max=100"`
	PhotoStorageLink *string              `json:"photo_storage_link" validate:"omitempty,max=500"`
}

// Merge copies every non-nil field of p into d. Patches that touch disjoint
// fields commute.
func (d *BookingFormData) Merge(p FormPatch) {
	if p.PhotographerID != nil {
		d.PhotographerID = *p.PhotographerID
	}
	if p.BookingDate != nil {
		d.BookingDate = *p.BookingDate
	}
	if p.LocationID != nil {
		d.LocationID = *p.LocationID
	}
	if p.CustomLocation != nil {
		d.CustomLocation = *p.CustomLocation
	}
	if p.Quantity != nil {
		d.Quantity = *p.Quantity
	}
	if p.ServiceID != nil {
		d.ServiceID = *p.ServiceID
	}
	if p.ShootingType != nil {
		d.ShootingType = *p.ShootingType
	}
	if p.Concept != nil {
		d.Concept = *p.Concept
	}
	if p.IllustrationURL != nil {
		d.IllustrationURL = *p.IllustrationURL
	}
	if p.AvailabilityID != nil {
		d.AvailabilityID = *p.AvailabilityID
	}
	if p.DiscountCode != nil {
		d.DiscountCode = strings.ToUpper(strings.TrimSpace(*p.DiscountCode))
	}
	if p.Province != nil {
		d.Province = *p.Province
	}
	if p.PhotoStorageLink != nil {
		d.PhotoStorageLink = *p.PhotoStorageLink
	}
}
