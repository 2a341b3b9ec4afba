package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"snapbook/internal/database"
	"snapbook/internal/domain/booking"
	"snapbook/internal/events"
	"snapbook/internal/pkg/lock"
	"snapbook/internal/pkg/session"
)

const lockPrefix = "snapbook:payment:lock:"

// BookingLookup loads a booking without an access check.
type BookingLookup interface {
	LookupByCode(ctx context.Context, code string) (*booking.Booking, error)
}

// Notifier pushes a realtime event to a connected user.
type Notifier interface {
	Notify(userID int64, eventType string, payload any)
}

type Options struct {
	ReturnURL  string
	NotifyURL  string
	AttemptTTL time.Duration
	LockTTL    time.Duration
	Topic      string
}

type Service struct {
	repo      Repository
	bookings  BookingLookup
	gateway   Gateway
	locker    lock.Locker
	notifier  Notifier
	publisher events.Publisher
	opts      Options
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewService(repo Repository, bookings BookingLookup, gateway Gateway, locker lock.Locker, notifier Notifier, publisher events.Publisher, opts Options, log logrus.FieldLogger) *Service {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Second
	}
	return &Service{
		repo:      repo,
		bookings:  bookings,
		gateway:   gateway,
		locker:    locker,
		notifier:  notifier,
		publisher: publisher,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

// Result is the outcome of a reconciled callback.
type Result struct {
	Booking        *booking.Booking `json:"booking"`
	Option         Option           `json:"option"`
	Amount         int64            `json:"amount"`
	PercentagePaid int              `json:"percentage_paid"`
	Remaining      int64            `json:"remaining"`
	TransactionID  string           `json:"transaction_id"`
	Replayed       bool             `json:"replayed"`
}

func newResult(b *booking.Booking, opt Option, amount int64, transID string) *Result {
	return &Result{
		Booking:        b,
		Option:         opt,
		Amount:         amount,
		PercentagePaid: percentOf(b.AmountPaid, b.TotalPrice),
		Remaining:      b.Remaining(),
		TransactionID:  transID,
	}
}

// Initiate records a pending attempt and asks the gateway for a pay URL.
func (s *Service) Initiate(ctx context.Context, sess session.Session, bookingCode string, opt Option) (*Attempt, error) {
	if !opt.Valid() {
		return nil, ErrInvalidOption
	}
	b, err := s.bookings.LookupByCode(ctx, bookingCode)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != sess.UserID {
		return nil, ErrForbidden
	}
	if !opt.Allows(b) {
		return nil, ErrOptionNotAllowed
	}
	amount := AmountFor(opt, b)
	if amount <= 0 {
		return nil, ErrOptionNotAllowed
	}

	a := &Attempt{
		OrderID:   uuid.NewString(),
		BookingID: b.ID,
		Option:    opt,
		Amount:    amount,
		Status:    AttemptPending,
	}
	if err := s.repo.CreateAttempt(ctx, a); err != nil {
		return nil, fmt.Errorf("save payment attempt: %w", err)
	}

	resp, err := s.gateway.CreatePayment(ctx, CreatePaymentRequest{
		Amount:    amount,
		OrderID:   a.OrderID,
		RequestID: newRequestID(a.OrderID),
		OrderInfo: EncodeOrderInfo(b.Code, opt),
		ReturnURL: s.opts.ReturnURL,
		NotifyURL: s.opts.NotifyURL,
	})
	if err != nil {
		a.Status = AttemptFailed
		a.Message = err.Error()
		if uerr := s.repo.UpdateAttempt(ctx, a); uerr != nil {
			s.log.WithError(uerr).WithField("order_id", a.OrderID).Error("mark attempt failed")
		}
		s.log.WithError(err).WithFields(logrus.Fields{
			"order_id":     a.OrderID,
			"booking_code": b.Code,
		}).Warn("gateway create payment failed")
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	a.PayURL = resp.PayURL
	a.Deeplink = resp.Deeplink
	if err := s.repo.UpdateAttempt(ctx, a); err != nil {
		return nil, fmt.Errorf("save pay url: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":     a.OrderID,
		"booking_code": b.Code,
		"option":       opt,
		"amount":       amount,
	}).Info("payment initiated")
	return a, nil
}

// GetAttempt is visible to the booking's customer and staff.
func (s *Service) GetAttempt(ctx context.Context, sess session.Session, orderID string) (*Attempt, error) {
	a, err := s.repo.GetAttempt(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if sess.IsAdmin() {
		return a, nil
	}
	b, err := s.repo.BookingOf(ctx, a)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != sess.UserID && b.PhotographerID != sess.UserID {
		return nil, ErrForbidden
	}
	return a, nil
}

// ListPayments returns the settled payments of a booking the caller can see.
func (s *Service) ListPayments(ctx context.Context, sess session.Session, bookingCode string) ([]Record, error) {
	b, err := s.bookings.LookupByCode(ctx, bookingCode)
	if err != nil {
		return nil, err
	}
	if !sess.IsAdmin() && b.CustomerID != sess.UserID && b.PhotographerID != sess.UserID {
		return nil, ErrForbidden
	}
	return s.repo.ListRecords(ctx, b.ID)
}

// Reconcile settles a gateway callback. It is keyed by transId: replays
// return the stored outcome and write nothing.
func (s *Service) Reconcile(ctx context.Context, p CallbackParams) (*Result, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := s.gateway.VerifyCallback(p); err != nil {
		return nil, err
	}
	code, opt, err := ParseOrderInfo(p.OrderInfo)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lockPrefix+p.TransID, s.opts.LockTTL)
	if errors.Is(err, lock.ErrHeld) {
		return nil, ErrReconcileInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("acquire reconcile lock: %w", err)
	}
	defer release()

	res, err := s.reconcile(ctx, p, code, opt)
	if errors.Is(err, errRaced) {
		// another delivery committed first; the second pass sees its record
		res, err = s.reconcile(ctx, p, code, opt)
	}

	log := s.log.WithFields(logrus.Fields{
		"trans_id":     p.TransID,
		"order_id":     p.OrderID,
		"booking_code": code,
		"option":       opt,
		"result_code":  p.ResultCode,
	})
	switch {
	case errors.Is(err, ErrPaymentDeclined):
		log.Info("payment declined")
		if res != nil {
			s.emit(ctx, res.Booking, events.TypePaymentFailed, p, opt)
		}
		return nil, fmt.Errorf("%w: result code %s", ErrPaymentDeclined, p.ResultCode)
	case err != nil:
		log.WithError(err).Warn("payment reconcile failed")
		return nil, err
	case res.Replayed:
		log.Info("payment callback replayed")
	default:
		log.WithField("amount", res.Amount).Info("payment confirmed")
		s.emit(ctx, res.Booking, events.TypePaymentConfirmed, p, opt)
	}
	return res, nil
}

var errRaced = fmt.Errorf("%w: settled concurrently", ErrReconcileInProgress)

// reconcile runs one transaction. On a decline it returns a result for the
// booking together with ErrPaymentDeclined so the caller can notify.
func (s *Service) reconcile(ctx context.Context, p CallbackParams, code string, opt Option) (*Result, error) {
	amount, _ := p.AmountValue()
	var res *Result

	err := s.repo.InTx(ctx, func(tx *gorm.DB) error {
		rec, err := findRecord(tx, p.TransID)
		if err != nil {
			return err
		}

		b, err := booking.FindByCode(tx, code)
		if errors.Is(err, booking.ErrNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}

		if rec != nil {
			res = newResult(b, rec.PaymentType, rec.Amount, rec.TransactionID)
			res.Replayed = true
			return nil
		}

		attempt, err := findAttempt(tx, p.OrderID)
		if err != nil {
			return err
		}

		if !p.Succeeded() {
			if attempt != nil {
				if err := settleAttempt(tx, attempt.OrderID, AttemptFailed, p.Message); err != nil {
					return err
				}
			}
			res = newResult(b, opt, amount, p.TransID)
			return nil
		}

		expected := AmountFor(opt, b)
		if attempt != nil {
			if attempt.BookingID != b.ID || attempt.Option != opt {
				return ErrMalformedCallback
			}
			expected = attempt.Amount
		}
		if !opt.Allows(b) {
			return ErrOptionNotAllowed
		}
		if amount != expected {
			return fmt.Errorf("%w: paid %d, expected %d", ErrAmountMismatch, amount, expected)
		}

		from, to := opt.Transition()
		if err := booking.ApplyPayment(tx, b, from, to, b.AmountPaid+amount); err != nil {
			if errors.Is(err, booking.ErrPaymentStateChanged) {
				return errRaced
			}
			return err
		}

		raw, _ := json.Marshal(p)
		record := &Record{
			BookingID:     b.ID,
			Amount:        amount,
			PaymentType:   opt,
			TransactionID: p.TransID,
			PaymentMethod: PaymentMethod(p.PayType),
			Info:          p.OrderInfo,
			RawCallback:   raw,
		}
		if err := tx.Create(record).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return errRaced
			}
			return err
		}
		if attempt != nil {
			if err := settleAttempt(tx, attempt.OrderID, AttemptPaid, p.Message); err != nil {
				return err
			}
		}
		res = newResult(b, opt, amount, p.TransID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !p.Succeeded() && !res.Replayed {
		return res, ErrPaymentDeclined
	}
	return res, nil
}

// ExpireStaleAttempts marks pending attempts older than the attempt TTL as
// expired and returns how many changed.
func (s *Service) ExpireStaleAttempts(ctx context.Context) (int64, error) {
	if s.opts.AttemptTTL <= 0 {
		return 0, nil
	}
	n, err := s.repo.ExpireAttempts(ctx, s.now().Add(-s.opts.AttemptTTL))
	if err != nil {
		return 0, fmt.Errorf("expire attempts: %w", err)
	}
	if n > 0 {
		s.log.WithField("count", n).Info("expired stale payment attempts")
	}
	return n, nil
}

// emit pushes the outcome to the customer and publishes it. Delivery
// failures are logged and never fail the callback.
func (s *Service) emit(ctx context.Context, b *booking.Booking, eventType string, p CallbackParams, opt Option) {
	payload := map[string]any{
		"booking_code":   b.Code,
		"option":         opt,
		"amount":         p.Amount,
		"transaction_id": p.TransID,
		"payment_status": b.PaymentStatus,
		"remaining":      b.Remaining(),
	}
	if s.notifier != nil {
		s.notifier.Notify(b.CustomerID, eventType, payload)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, s.opts.Topic, events.New(eventType, b.Code, payload)); err != nil {
			s.log.WithError(err).WithField("type", eventType).Warn("publish payment event failed")
		}
	}
}

func percentOf(part, total int64) int {
	if total <= 0 {
		return 0
	}
	return int((part*100 + total/2) / total)
}
