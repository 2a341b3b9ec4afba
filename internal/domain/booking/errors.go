package booking

import "errors"

var (
	ErrNotFound                = errors.New("booking not found")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrPaymentStateChanged     = errors.New("booking payment status changed concurrently")
	ErrPriceOutOfRange         = errors.New("booking total is out of range")
)
