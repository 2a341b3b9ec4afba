package booking

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"snapbook/internal/domain"
	"snapbook/internal/domain/catalog"
	"snapbook/internal/domain/upload"
	"snapbook/internal/domain/wizard"
	"snapbook/internal/pkg/codegen"
	"snapbook/internal/pkg/session"
)

// DepositPercent is the share of the total a deposit covers.
const DepositPercent = 20

// Catalog prices a booking.
type Catalog interface {
	ServiceOf(ctx context.Context, photographerID, serviceID int64) (*catalog.PhotoService, error)
	GetLocation(ctx context.Context, id int64) (*catalog.Location, error)
	CheckDiscount(ctx context.Context, code string) (*catalog.DiscountCode, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
	log     logrus.FieldLogger
}

func NewService(repo Repository, cat Catalog, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, catalog: cat, log: log}
}

// CreateBooking turns a submit-ready form into a pending booking and returns
// its code. The price is computed here from the catalog.
func (s *Service) CreateBooking(ctx context.Context, sess session.Session, form wizard.BookingFormData) (string, error) {
	if sess.Role != session.RoleCustomer {
		return "", ErrForbidden
	}
	if missing := wizard.MissingFields(wizard.MaxStep, form); len(missing) > 0 {
		return "", fmt.Errorf("%w: missing %s", wizard.ErrNotReady, strings.Join(missing, ", "))
	}
	if upload.IsDataURI(form.IllustrationURL) {
		return "", wizard.ErrUnresolvedImage
	}

	svc, err := s.catalog.ServiceOf(ctx, form.PhotographerID, form.ServiceID)
	if err != nil {
		return "", err
	}
	var locationID *int64
	if form.LocationID > 0 {
		loc, err := s.catalog.GetLocation(ctx, form.LocationID)
		if err != nil {
			return "", err
		}
		locationID = &loc.ID
	}

	subtotal, err := lineTotal(svc.Price, form.Quantity)
	if err != nil {
		return "", err
	}

	var discount *catalog.DiscountCode
	if code := strings.TrimSpace(form.DiscountCode); code != "" {
		if discount, err = s.catalog.CheckDiscount(ctx, code); err != nil {
			return "", err
		}
	}

	b := &Booking{
		Code:             codegen.New("SNAP", 8),
		CustomerID:       sess.UserID,
		PhotographerID:   form.PhotographerID,
		ServiceID:        svc.ID,
		LocationID:       locationID,
		CustomLocation:   strings.TrimSpace(form.CustomLocation),
		BookingDate:      form.BookingDate,
		Quantity:         form.Quantity,
		ShootingType:     form.ShootingType,
		Concept:          strings.TrimSpace(form.Concept),
		IllustrationURL:  form.IllustrationURL,
		AvailabilityID:   form.AvailabilityID,
		TotalPrice:       discount.Apply(subtotal),
		Province:         strings.TrimSpace(form.Province),
		PhotoStorageLink: strings.TrimSpace(form.PhotoStorageLink),
		Status:           domain.BookingPending,
		PaymentStatus:    domain.PaymentUnpaid,
	}
	var discountID int64
	if discount != nil {
		b.DiscountCode = discount.Code
		discountID = discount.ID
	}

	if err := s.repo.Create(ctx, b, discountID); err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"booking_code":    b.Code,
		"customer_id":     b.CustomerID,
		"photographer_id": b.PhotographerID,
		"total_price":     b.TotalPrice,
	}).Info("booking created")
	return b.Code, nil
}

// GetByCode returns the booking to its customer, its photographer or an admin.
func (s *Service) GetByCode(ctx context.Context, sess session.Session, code string) (*Booking, error) {
	b, err := s.repo.GetByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, err
	}
	if !sess.IsAdmin() && b.CustomerID != sess.UserID && b.PhotographerID != sess.UserID {
		return nil, ErrForbidden
	}
	return b, nil
}

// LookupByCode loads a booking without an access check, for internal callers.
func (s *Service) LookupByCode(ctx context.Context, code string) (*Booking, error) {
	return s.repo.GetByCode(ctx, normalizeCode(code))
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *Service) GetMyBookings(ctx context.Context, sess session.Session) ([]Booking, error) {
	if sess.IsPhotographer() {
		return s.repo.ListByPhotographer(ctx, sess.UserID)
	}
	return s.repo.ListByCustomer(ctx, sess.UserID)
}

// UpdateStatus is the manual lifecycle operation. The photographer and admins
// may move a booking along; the customer may only cancel a pending booking.
func (s *Service) UpdateStatus(ctx context.Context, sess session.Session, code string, to domain.BookingStatus) (*Booking, error) {
	b, err := s.GetByCode(ctx, sess, code)
	if err != nil {
		return nil, err
	}
	isStaff := sess.IsAdmin() || b.PhotographerID == sess.UserID
	customerCancel := b.CustomerID == sess.UserID && to == domain.BookingCancelled && b.Status == domain.BookingPending
	if !isStaff && !customerCancel {
		return nil, ErrForbidden
	}
	if !CanTransition(b.Status, to) {
		return nil, ErrInvalidStatusTransition
	}
	if err := s.repo.UpdateStatus(ctx, b, to); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"booking_code": b.Code, "status": to, "by": sess.UserID}).Info("booking status changed")
	return b, nil
}

// UpdatePaymentStatus records an offline payment. Only forward moves are
// allowed and amount_paid follows the new status.
func (s *Service) UpdatePaymentStatus(ctx context.Context, sess session.Session, code string, to domain.PaymentStatus) (*Booking, error) {
	b, err := s.GetByCode(ctx, sess, code)
	if err != nil {
		return nil, err
	}
	if !sess.IsAdmin() && b.PhotographerID != sess.UserID {
		return nil, ErrForbidden
	}
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}
	if !CanAdvancePayment(b.PaymentStatus, to) || b.Status == domain.BookingCancelled {
		return nil, ErrInvalidStatusTransition
	}

	amount := b.TotalPrice
	if to == domain.PaymentDepositPaid {
		amount = DepositAmount(b.TotalPrice)
	}
	if err := s.repo.UpdatePaymentStatus(ctx, b, to, amount); err != nil {
		return nil, err
	}
	return b, nil
}

// lineTotal is price * quantity, refusing negative inputs and int64 overflow.
func lineTotal(price int64, quantity int) (int64, error) {
	if price < 0 || quantity <= 0 || quantity > wizard.MaxQuantity {
		return 0, ErrPriceOutOfRange
	}
	if price > math.MaxInt64/int64(quantity) {
		return 0, ErrPriceOutOfRange
	}
	return price * int64(quantity), nil
}

// DepositAmount is round(total * DepositPercent / 100).
func DepositAmount(total int64) int64 {
	return (total*DepositPercent + 50) / 100
}
