package catalog

import (
	"time"
)

// PhotoService is a priced package a photographer sells. Price is in VND.
type PhotoService struct {
	ID              int64     `json:"service_id" gorm:"primaryKey"`
	PhotographerID  int64     `json:"photographer_id" gorm:"index;not null"`
	Name            string    `json:"name" gorm:"not null"`
	Description     string    `json:"description,omitempty" gorm:"type:text"`
	Price           int64     `json:"price" gorm:"not null"`
	DurationMinutes int       `json:"duration_minutes"`
	Active          bool      `json:"active" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (PhotoService) TableName() string { return "services" }

type Location struct {
	ID        int64     `json:"location_id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Province  string    `json:"province" gorm:"index"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Location) TableName() string { return "locations" }

// DiscountCode takes Percent off the booking price. MaxUsage 0 means unlimited.
type DiscountCode struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	Code      string     `json:"code" gorm:"uniqueIndex;not null"`
	Percent   int        `json:"percent" gorm:"not null"`
	Active    bool       `json:"active" gorm:"not null"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	MaxUsage  int        `json:"max_usage"`
	Used      int        `json:"used"`
	CreatedAt time.Time  `json:"created_at"`
}

func (DiscountCode) TableName() string { return "discount_codes" }

// Usable checks the code at the given time.
func (d *DiscountCode) Usable(now time.Time) error {
	if !d.Active {
		return ErrDiscountInactive
	}
	if d.ExpiresAt != nil && now.After(*d.ExpiresAt) {
		return ErrDiscountExpired
	}
	if d.MaxUsage > 0 && d.Used >= d.MaxUsage {
		return ErrDiscountExhausted
	}
	return nil
}

// Apply returns price minus the discount, never below zero.
func (d *DiscountCode) Apply(price int64) int64 {
	if d == nil || d.Percent <= 0 {
		return price
	}
	pct := int64(d.Percent)
	if pct > 100 {
		pct = 100
	}
	// split so price*pct cannot overflow
	return price - (price/100*pct + price%100*pct/100)
}

type PhotographerFilters struct {
	Province string
	Search   string
	Limit    int
	Offset   int
}
