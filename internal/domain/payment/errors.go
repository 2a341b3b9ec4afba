package payment

import "errors"

var (
	ErrInvalidOption       = errors.New("payment option must be full, deposit or reminder")
	ErrOptionNotAllowed    = errors.New("payment option does not fit the booking's payment status")
	ErrForbidden           = errors.New("only the booking's customer can pay")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrAttemptNotFound     = errors.New("payment attempt not found")
	ErrMalformedCallback   = errors.New("malformed payment callback")
	ErrMalformedOrderInfo  = errors.New("malformed order info")
	ErrInvalidSignature    = errors.New("invalid callback signature")
	ErrBookingNotFound     = errors.New("booking not found for payment")
	ErrPaymentDeclined     = errors.New("payment declined by gateway")
	ErrAmountMismatch      = errors.New("paid amount does not match the expected amount")
	ErrReconcileInProgress = errors.New("callback for this transaction is being processed")
)
