package availability

import "time"

type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
)

// Availability is one open calendar day of a photographer. AvailableDate is
// stored as UTC midnight of that day.
type Availability struct {
	ID             int64     `json:"availability_id" gorm:"primaryKey"`
	PhotographerID int64     `json:"photographer_id" gorm:"not null;uniqueIndex:idx_availability_photographer_date"`
	AvailableDate  time.Time `json:"available_date" gorm:"not null;uniqueIndex:idx_availability_photographer_date"`
	Status         Status    `json:"status" gorm:"not null;index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Availability) TableName() string { return "availabilities" }
