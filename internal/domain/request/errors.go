package request

import "errors"

var (
	ErrRequestNotFound         = errors.New("request not found")
	ErrOfferNotFound           = errors.New("offer not found")
	ErrForbidden               = errors.New("not allowed to act on this request")
	ErrRequestNotOpen          = errors.New("request is no longer open")
	ErrDuplicateOffer          = errors.New("photographer already sent an offer for this request")
	ErrInvalidStatus           = errors.New("status must be accepted or rejected")
	ErrInvalidStatusTransition = errors.New("offer is no longer pending")
)
