package payment

import (
	"fmt"
	"strings"

	"snapbook/internal/domain"
	"snapbook/internal/domain/booking"
)

// Option is what part of the booking price a payment covers.
type Option string

const (
	OptionFull     Option = "full"
	OptionDeposit  Option = "deposit"
	OptionReminder Option = "reminder"
)

const orderInfoSep = "_"

func (o Option) Valid() bool {
	switch o {
	case OptionFull, OptionDeposit, OptionReminder:
		return true
	}
	return false
}

// Percentage is the nominal share of the total the option pays.
func (o Option) Percentage() int {
	switch o {
	case OptionFull:
		return 100
	case OptionDeposit:
		return booking.DepositPercent
	case OptionReminder:
		return 100 - booking.DepositPercent
	}
	return 0
}

// Transition returns the payment status the booking must be in for o and
// the status it moves to once paid.
func (o Option) Transition() (from, to domain.PaymentStatus) {
	switch o {
	case OptionFull:
		return domain.PaymentUnpaid, domain.PaymentFullyPaid
	case OptionDeposit:
		return domain.PaymentUnpaid, domain.PaymentDepositPaid
	default:
		return domain.PaymentDepositPaid, domain.PaymentFullyPaid
	}
}

// Allows reports whether o can be paid in the booking's current state.
func (o Option) Allows(b *booking.Booking) bool {
	from, _ := o.Transition()
	return o.Valid() && b.Status != domain.BookingCancelled && b.PaymentStatus == from
}

// AmountFor is what the customer pays for o. The reminder is whatever is
// left after the deposit actually paid.
func AmountFor(o Option, b *booking.Booking) int64 {
	switch o {
	case OptionFull:
		return b.TotalPrice
	case OptionDeposit:
		return booking.DepositAmount(b.TotalPrice)
	case OptionReminder:
		return b.Remaining()
	}
	return 0
}

// EncodeOrderInfo builds the gateway orderInfo "{bookingCode}_{option}".
func EncodeOrderInfo(bookingCode string, o Option) string {
	return bookingCode + orderInfoSep + string(o)
}

// ParseOrderInfo is the inverse of EncodeOrderInfo. Exactly one separator
// is accepted; booking codes never contain one.
func ParseOrderInfo(info string) (string, Option, error) {
	info = strings.TrimSpace(info)
	if strings.Count(info, orderInfoSep) != 1 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedOrderInfo, info)
	}
	code, opt, _ := strings.Cut(info, orderInfoSep)
	o := Option(opt)
	if code == "" || !o.Valid() {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedOrderInfo, info)
	}
	return code, o, nil
}
