package availability

import "errors"

var (
	ErrNotFound      = errors.New("availability not found")
	ErrDuplicateDate = errors.New("availability already exists for this date")
	ErrBooked        = errors.New("booked availability cannot be deleted")
	ErrNotAvailable  = errors.New("date is no longer available")
	ErrForbidden     = errors.New("availability belongs to another photographer")
	ErrPastDate      = errors.New("date is in the past")
	ErrInvalidMonth  = errors.New("invalid year or month")
	ErrDateMismatch  = errors.New("availability is for a different date")
)
