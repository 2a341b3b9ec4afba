package catalog

import "errors"

var (
	ErrPhotographerNotFound = errors.New("photographer not found")
	ErrServiceNotFound      = errors.New("service not found")
	ErrLocationNotFound     = errors.New("location not found")
	ErrDiscountNotFound     = errors.New("discount code not found")
	ErrDiscountInactive     = errors.New("discount code is not active")
	ErrDiscountExpired      = errors.New("discount code has expired")
	ErrDiscountExhausted    = errors.New("discount code usage limit reached")
	ErrServiceMismatch      = errors.New("service does not belong to photographer")
	ErrServiceInactive      = errors.New("service is no longer offered")
	ErrForbidden            = errors.New("only photographers can manage services")
)
