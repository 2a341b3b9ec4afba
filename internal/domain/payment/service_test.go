package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"snapbook/internal/database"
	"snapbook/internal/domain"
	"snapbook/internal/domain/booking"
	"snapbook/internal/events"
	"snapbook/internal/logger"
	"snapbook/internal/pkg/lock"
	"snapbook/internal/pkg/session"
)

const topic = "booking-payments"

type fakeGateway struct {
	fail     error
	requests []CreatePaymentRequest
}

func (g *fakeGateway) CreatePayment(_ context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	g.requests = append(g.requests, req)
	if g.fail != nil {
		return nil, g.fail
	}
	return &CreatePaymentResponse{PayURL: "https://pay.test/" + req.OrderID, Deeplink: "momo://pay/" + req.OrderID}, nil
}

func (g *fakeGateway) VerifyCallback(p CallbackParams) error {
	if p.Signature == "bad" {
		return ErrInvalidSignature
	}
	return nil
}

type sent struct {
	userID    int64
	eventType string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (n *recordingNotifier) Notify(userID int64, eventType string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sent{userID: userID, eventType: eventType})
}

type fixture struct {
	db        *gorm.DB
	svc       *Service
	gateway   *fakeGateway
	notifier  *recordingNotifier
	publisher *events.Recorder
	mr        *miniredis.Miniredis
	rdb       *redis.Client
	customer  session.Session
	booking   booking.Booking
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&booking.Booking{}, &Attempt{}, &Record{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	b := booking.Booking{
		Code:           "ABC",
		CustomerID:     42,
		PhotographerID: 5,
		ServiceID:      1,
		BookingDate:    time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC),
		Quantity:       1,
		ShootingType:   domain.ShootingStudio,
		TotalPrice:     1000000,
		Status:         domain.BookingPending,
		PaymentStatus:  domain.PaymentUnpaid,
	}
	require.NoError(t, db.Create(&b).Error)

	f := &fixture{
		db:        db,
		gateway:   &fakeGateway{},
		notifier:  &recordingNotifier{},
		publisher: events.NewRecorder(),
		mr:        mr,
		rdb:       rdb,
		customer:  session.Session{UserID: 42, Role: session.RoleCustomer},
		booking:   b,
	}
	bookings := booking.NewService(booking.NewRepository(db), nil, logger.Discard())
	f.svc = NewService(NewRepository(db), bookings, f.gateway, lock.NewRedisLocker(rdb), f.notifier, f.publisher, Options{
		ReturnURL:  "http://localhost/return",
		NotifyURL:  "http://localhost/ipn",
		AttemptTTL: 30 * time.Minute,
		LockTTL:    10 * time.Second,
		Topic:      topic,
	}, logger.Discard())
	return f
}

func callback(info, amount, transID string) CallbackParams {
	return CallbackParams{
		PartnerCode: "MOMO",
		OrderInfo:   info,
		Amount:      amount,
		TransID:     transID,
		ResultCode:  "0",
		Message:     "Successful.",
		PayType:     "qr",
	}
}

func (f *fixture) reload(t *testing.T) booking.Booking {
	t.Helper()
	var b booking.Booking
	require.NoError(t, f.db.First(&b, f.booking.ID).Error)
	return b
}

func TestReconcile_DepositConfirmsBooking(t *testing.T) {
	f := setup(t)

	res, err := f.svc.Reconcile(context.Background(), callback("ABC_deposit", "200000", "9001"))
	require.NoError(t, err)

	assert.False(t, res.Replayed)
	assert.Equal(t, OptionDeposit, res.Option)
	assert.Equal(t, int64(200000), res.Amount)
	assert.Equal(t, 20, res.PercentagePaid)
	assert.Equal(t, int64(800000), res.Remaining)

	b := f.reload(t)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, domain.PaymentDepositPaid, b.PaymentStatus)
	assert.Equal(t, int64(200000), b.AmountPaid)

	var rec Record
	require.NoError(t, f.db.Where("transaction_id = ?", "9001").First(&rec).Error)
	assert.Equal(t, "momo_wallet", rec.PaymentMethod)
	assert.Equal(t, "ABC_deposit", rec.Info)
	assert.Contains(t, string(rec.RawCallback), `"transId":"9001"`)

	assert.Equal(t, []string{events.TypePaymentConfirmed}, f.publisher.Types(topic))
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, sent{userID: 42, eventType: events.TypePaymentConfirmed}, f.notifier.sent[0])
}

func TestReconcile_ReplayIsNoOp(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := callback("ABC_deposit", "200000", "9001")

	_, err := f.svc.Reconcile(ctx, p)
	require.NoError(t, err)

	res, err := f.svc.Reconcile(ctx, p)
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, int64(800000), res.Remaining)

	var count int64
	require.NoError(t, f.db.Model(&Record{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(200000), f.reload(t).AmountPaid)
	assert.Len(t, f.publisher.Types(topic), 1)
}

func TestReconcile_DepositThenReminder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Reconcile(ctx, callback("ABC_deposit", "200000", "9001"))
	require.NoError(t, err)

	res, err := f.svc.Reconcile(ctx, callback("ABC_reminder", "800000", "9002"))
	require.NoError(t, err)
	assert.Equal(t, 100, res.PercentagePaid)
	assert.Equal(t, int64(0), res.Remaining)
	assert.Equal(t, domain.PaymentFullyPaid, f.reload(t).PaymentStatus)
}

func TestReconcile_ErrorClasses(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	declined := callback("ABC_full", "1000000", "9100")
	declined.ResultCode = "1006"
	_, err := f.svc.Reconcile(ctx, declined)
	assert.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Equal(t, domain.PaymentUnpaid, f.reload(t).PaymentStatus)
	assert.Equal(t, []string{events.TypePaymentFailed}, f.publisher.Types(topic))

	_, err = f.svc.Reconcile(ctx, callback("NOPE_full", "1000000", "9101"))
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.svc.Reconcile(ctx, callback("ABC_full", "5", "9102"))
	assert.ErrorIs(t, err, ErrAmountMismatch)

	_, err = f.svc.Reconcile(ctx, callback("ABC_reminder", "1000000", "9103"))
	assert.ErrorIs(t, err, ErrOptionNotAllowed)

	_, err = f.svc.Reconcile(ctx, callback("ABC_x_full", "1000000", "9104"))
	assert.ErrorIs(t, err, ErrMalformedOrderInfo)

	_, err = f.svc.Reconcile(ctx, callback("ABC_full", "", "9105"))
	assert.ErrorIs(t, err, ErrMalformedCallback)

	bad := callback("ABC_full", "1000000", "9106")
	bad.Signature = "bad"
	_, err = f.svc.Reconcile(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	var count int64
	require.NoError(t, f.db.Model(&Record{}).Count(&count).Error)
	assert.Zero(t, count)

	status, view := CallbackView(err)
	assert.Equal(t, 400, status)
	assert.Equal(t, ViewInvalidCallback, view)
}

func TestReconcile_LockHeld(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.mr.Set(lockPrefix+"9001", "someone-else"))

	_, err := f.svc.Reconcile(context.Background(), callback("ABC_deposit", "200000", "9001"))
	assert.ErrorIs(t, err, ErrReconcileInProgress)
	assert.Equal(t, domain.PaymentUnpaid, f.reload(t).PaymentStatus)
}

func TestInitiate_CreatesPendingAttempt(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.Initiate(ctx, f.customer, "ABC", OptionDeposit)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), a.Amount)
	assert.Equal(t, AttemptPending, a.Status)
	assert.Equal(t, "https://pay.test/"+a.OrderID, a.PayURL)

	require.Len(t, f.gateway.requests, 1)
	req := f.gateway.requests[0]
	assert.Equal(t, "ABC_deposit", req.OrderInfo)
	assert.Equal(t, "http://localhost/return", req.ReturnURL)
	assert.Equal(t, "http://localhost/ipn", req.NotifyURL)

	// the callback carries the order id; the attempt amount is authoritative
	p := callback("ABC_deposit", "200000", "9001")
	p.OrderID = a.OrderID
	_, err = f.svc.Reconcile(ctx, p)
	require.NoError(t, err)

	got, err := f.svc.GetAttempt(ctx, f.customer, a.OrderID)
	require.NoError(t, err)
	assert.Equal(t, AttemptPaid, got.Status)
}

func TestInitiate_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Initiate(ctx, session.Session{UserID: 7, Role: session.RoleCustomer}, "ABC", OptionFull)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Initiate(ctx, f.customer, "ABC", OptionReminder)
	assert.ErrorIs(t, err, ErrOptionNotAllowed)

	_, err = f.svc.Initiate(ctx, f.customer, "ABC", Option("half"))
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = f.svc.Initiate(ctx, f.customer, "MISSING", OptionFull)
	assert.ErrorIs(t, err, booking.ErrNotFound)
	assert.Empty(t, f.gateway.requests)
}

func TestInitiate_GatewayFailureMarksAttemptFailed(t *testing.T) {
	f := setup(t)
	f.gateway.fail = errors.New("connection refused")

	_, err := f.svc.Initiate(context.Background(), f.customer, "ABC", OptionFull)
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	var a Attempt
	require.NoError(t, f.db.First(&a).Error)
	assert.Equal(t, AttemptFailed, a.Status)
	assert.Contains(t, a.Message, "connection refused")
}

func TestExpireStaleAttempts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	old := Attempt{OrderID: "old", BookingID: f.booking.ID, Option: OptionFull, Amount: 1, Status: AttemptPending}
	fresh := Attempt{OrderID: "fresh", BookingID: f.booking.ID, Option: OptionFull, Amount: 1, Status: AttemptPending}
	require.NoError(t, f.db.Create(&old).Error)
	require.NoError(t, f.db.Create(&fresh).Error)
	require.NoError(t, f.db.Model(&Attempt{}).Where("order_id = ?", "old").
		Update("created_at", time.Now().Add(-2*time.Hour)).Error)

	n, err := f.svc.ExpireStaleAttempts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := f.svc.GetAttempt(ctx, f.customer, "old")
	require.NoError(t, err)
	assert.Equal(t, AttemptExpired, got.Status)
}

func TestListPayments(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Reconcile(ctx, callback("ABC_deposit", "200000", "9001"))
	require.NoError(t, err)

	list, err := f.svc.ListPayments(ctx, session.Session{UserID: 5, Role: session.RolePhotographer}, "ABC")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, OptionDeposit, list[0].PaymentType)

	_, err = f.svc.ListPayments(ctx, session.Session{UserID: 99, Role: session.RoleCustomer}, "ABC")
	assert.ErrorIs(t, err, ErrForbidden)
}
