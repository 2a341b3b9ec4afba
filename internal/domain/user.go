package domain

import "time"

type UserRole string

const (
	RoleCustomer     UserRole = "customer"
	RolePhotographer UserRole = "photographer"
	RoleAdmin        UserRole = "admin"
)

// User is an account. Photographers are users with RolePhotographer and a
// public profile.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"index;not null"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Bio          string    `json:"bio,omitempty" gorm:"type:text"`
	Province     string    `json:"province,omitempty" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
