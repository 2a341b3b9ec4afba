package booking

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"snapbook/internal/database"
	"snapbook/internal/domain"
	"snapbook/internal/domain/availability"
	"snapbook/internal/domain/catalog"
	"snapbook/internal/domain/wizard"
	"snapbook/internal/logger"
	"snapbook/internal/pkg/session"
)

type fixture struct {
	db           *gorm.DB
	svc          *Service
	customer     session.Session
	photographer session.Session
	service      catalog.PhotoService
	slot         availability.Availability
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Booking{}, &availability.Availability{}, &catalog.PhotoService{}, &catalog.Location{}, &catalog.DiscountCode{}))

	svc := catalog.PhotoService{PhotographerID: 5, Name: "Studio portrait", Price: 500000, Active: true}
	require.NoError(t, db.Create(&svc).Error)
	slot := availability.Availability{PhotographerID: 5, AvailableDate: time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC), Status: availability.StatusAvailable}
	require.NoError(t, db.Create(&slot).Error)

	return &fixture{
		db:           db,
		svc:          NewService(NewRepository(db), catalog.NewService(catalog.NewRepository(db)), logger.Discard()),
		customer:     session.Session{UserID: 42, Role: session.RoleCustomer},
		photographer: session.Session{UserID: 5, Role: session.RolePhotographer},
		service:      svc,
		slot:         slot,
	}
}

func (f *fixture) form() wizard.BookingFormData {
	d := wizard.NewFormData()
	d.PhotographerID = 5
	d.ServiceID = f.service.ID
	d.ShootingType = domain.ShootingStudio
	d.BookingDate = time.Date(2026, 11, 3, 10, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	d.AvailabilityID = f.slot.ID
	d.Quantity = 2
	d.Concept = "family portrait"
	d.IllustrationURL = "https://cdn.snap.test/ref.jpg"
	return d
}

func TestCreateBooking_PricesAndConsumesAvailability(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	code, err := f.svc.CreateBooking(ctx, f.customer, f.form())
	require.NoError(t, err)
	assert.Regexp(t, `^SNAP[0-9A-F]{8}$`, code)

	b, err := f.svc.GetByCode(ctx, f.customer, code)
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), b.TotalPrice)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, domain.PaymentUnpaid, b.PaymentStatus)
	assert.Zero(t, b.AmountPaid)

	var slot availability.Availability
	require.NoError(t, f.db.First(&slot, f.slot.ID).Error)
	assert.Equal(t, availability.StatusBooked, slot.Status)

	_, err = f.svc.CreateBooking(ctx, f.customer, f.form())
	assert.ErrorIs(t, err, availability.ErrNotAvailable)
}

func TestCreateBooking_AppliesAndRedeemsDiscount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	code := catalog.DiscountCode{Code: "SUMMER10", Percent: 10, Active: true, MaxUsage: 1}
	require.NoError(t, f.db.Create(&code).Error)

	form := f.form()
	form.DiscountCode = "summer10"
	bookingCode, err := f.svc.CreateBooking(ctx, f.customer, form)
	require.NoError(t, err)

	b, err := f.svc.GetByCode(ctx, f.customer, bookingCode)
	require.NoError(t, err)
	assert.Equal(t, int64(900000), b.TotalPrice)
	assert.Equal(t, "SUMMER10", b.DiscountCode)

	var stored catalog.DiscountCode
	require.NoError(t, f.db.First(&stored, code.ID).Error)
	assert.Equal(t, 1, stored.Used)
}

func TestCreateBooking_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	form := f.form()
	form.IllustrationURL = "data:image/png;base64,AAAA"
	_, err := f.svc.CreateBooking(ctx, f.customer, form)
	assert.ErrorIs(t, err, wizard.ErrUnresolvedImage)

	form = f.form()
	form.Concept = ""
	_, err = f.svc.CreateBooking(ctx, f.customer, form)
	assert.ErrorIs(t, err, wizard.ErrNotReady)

	_, err = f.svc.CreateBooking(ctx, f.photographer, f.form())
	assert.ErrorIs(t, err, ErrForbidden)

	form = f.form()
	form.BookingDate = time.Date(2026, 11, 4, 0, 0, 0, 0, time.UTC)
	_, err = f.svc.CreateBooking(ctx, f.customer, form)
	assert.ErrorIs(t, err, availability.ErrDateMismatch)

	// the failed attempt rolled back the consumption
	var slot availability.Availability
	require.NoError(t, f.db.First(&slot, f.slot.ID).Error)
	assert.Equal(t, availability.StatusAvailable, slot.Status)
}

func TestCreateBooking_RejectsOutOfRangeQuantity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, qty := range []int{wizard.MaxQuantity + 1, 1 << 62} {
		form := f.form()
		form.Quantity = qty
		_, err := f.svc.CreateBooking(ctx, f.customer, form)
		assert.ErrorIs(t, err, wizard.ErrNotReady, "quantity %d", qty)
	}

	var slot availability.Availability
	require.NoError(t, f.db.First(&slot, f.slot.ID).Error)
	assert.Equal(t, availability.StatusAvailable, slot.Status)

	var n int64
	require.NoError(t, f.db.Model(&Booking{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateBooking_RejectsOverflowingTotal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.db.Model(&catalog.PhotoService{}).Where("id = ?", f.service.ID).Update("price", int64(math.MaxInt64/2+1)).Error)

	_, err := f.svc.CreateBooking(ctx, f.customer, f.form())
	assert.ErrorIs(t, err, ErrPriceOutOfRange)

	var slot availability.Availability
	require.NoError(t, f.db.First(&slot, f.slot.ID).Error)
	assert.Equal(t, availability.StatusAvailable, slot.Status)
}

func TestLookupByCode_NormalizesCode(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	code, err := f.svc.CreateBooking(ctx, f.customer, f.form())
	require.NoError(t, err)

	b, err := f.svc.LookupByCode(ctx, "  "+strings.ToLower(code)+" ")
	require.NoError(t, err)
	assert.Equal(t, code, b.Code)
}

func TestUpdateStatus_CancelReleasesAvailability(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	code, err := f.svc.CreateBooking(ctx, f.customer, f.form())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.customer, code, domain.BookingConfirmed)
	assert.ErrorIs(t, err, ErrForbidden)

	b, err := f.svc.UpdateStatus(ctx, f.customer, code, domain.BookingCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, b.Status)

	var slot availability.Availability
	require.NoError(t, f.db.First(&slot, f.slot.ID).Error)
	assert.Equal(t, availability.StatusAvailable, slot.Status)

	_, err = f.svc.UpdateStatus(ctx, f.photographer, code, domain.BookingConfirmed)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestUpdatePaymentStatus_ForwardOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	code, err := f.svc.CreateBooking(ctx, f.customer, f.form())
	require.NoError(t, err)

	_, err = f.svc.UpdatePaymentStatus(ctx, f.customer, code, domain.PaymentFullyPaid)
	assert.ErrorIs(t, err, ErrForbidden)

	b, err := f.svc.UpdatePaymentStatus(ctx, f.photographer, code, domain.PaymentDepositPaid)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), b.AmountPaid)
	assert.Equal(t, int64(800000), b.Remaining())

	_, err = f.svc.UpdatePaymentStatus(ctx, f.photographer, code, domain.PaymentDepositPaid)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	b, err = f.svc.UpdatePaymentStatus(ctx, f.photographer, code, domain.PaymentFullyPaid)
	require.NoError(t, err)
	assert.Zero(t, b.Remaining())
}

func TestGetMyBookings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.CreateBooking(ctx, f.customer, f.form())
	require.NoError(t, err)

	mine, err := f.svc.GetMyBookings(ctx, f.customer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.svc.GetMyBookings(ctx, f.photographer)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)

	_, err = f.svc.GetByCode(ctx, session.Session{UserID: 99, Role: session.RoleCustomer}, mine[0].Code)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDepositAmount(t *testing.T) {
	assert.Equal(t, int64(200000), DepositAmount(1000000))
	assert.Equal(t, int64(3), DepositAmount(13))
	assert.Equal(t, int64(2), DepositAmount(12))
}
