package catalog

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"snapbook/internal/database"
	"snapbook/internal/domain"
	"snapbook/internal/pkg/session"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &PhotoService{}, &Location{}, &DiscountCode{}))
	return db
}

func seedPhotographer(t *testing.T, db *gorm.DB, name, province string) domain.User {
	t.Helper()
	u := domain.User{Email: name + "@snap.test", PasswordHash: "x", Role: domain.RolePhotographer, Name: name, Province: province}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestListPhotographers_FiltersAndPaginates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db))
	ctx := context.Background()

	seedPhotographer(t, db, "linh", "Hanoi")
	seedPhotographer(t, db, "minh", "Hanoi")
	seedPhotographer(t, db, "an", "Da Nang")
	require.NoError(t, db.Create(&domain.User{Email: "c@snap.test", PasswordHash: "x", Role: domain.RoleCustomer, Name: "customer"}).Error)

	users, total, err := svc.ListPhotographers(ctx, PhotographerFilters{Province: "Hanoi", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, users, 1)
	assert.Equal(t, "linh", users[0].Name)

	users, total, err = svc.ListPhotographers(ctx, PhotographerFilters{Search: "AN"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "an", users[0].Name)
}

func TestServiceOf_RejectsForeignService(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db))
	ctx := context.Background()

	p1 := seedPhotographer(t, db, "p1", "Hanoi")
	p2 := seedPhotographer(t, db, "p2", "Hanoi")

	created, err := svc.CreateService(ctx, session.Session{UserID: p1.ID, Role: session.RolePhotographer}, CreateServiceRequest{Name: "Portrait", Price: 500000})
	require.NoError(t, err)

	got, err := svc.ServiceOf(ctx, p1.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), got.Price)

	_, err = svc.ServiceOf(ctx, p2.ID, created.ID)
	assert.ErrorIs(t, err, ErrServiceMismatch)

	_, err = svc.ServiceOf(ctx, p1.ID, 9999)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestServiceOf_RejectsInactiveService(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db))
	ctx := context.Background()

	p := seedPhotographer(t, db, "p1", "Hanoi")
	created, err := svc.CreateService(ctx, session.Session{UserID: p.ID, Role: session.RolePhotographer}, CreateServiceRequest{Name: "Portrait", Price: 500000})
	require.NoError(t, err)
	require.NoError(t, db.Model(&PhotoService{}).Where("id = ?", created.ID).Update("active", false).Error)

	_, err = svc.ServiceOf(ctx, p.ID, created.ID)
	assert.ErrorIs(t, err, ErrServiceInactive)
}

func TestCreateService_CustomerForbidden(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))

	_, err := svc.CreateService(context.Background(), session.Session{UserID: 1, Role: session.RoleCustomer}, CreateServiceRequest{Name: "x", Price: 1})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCheckDiscount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(NewRepository(db))
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Create(&DiscountCode{Code: "SUMMER10", Percent: 10, Active: true}).Error)
	require.NoError(t, db.Create(&DiscountCode{Code: "OLD", Percent: 10, Active: true, ExpiresAt: &past}).Error)
	require.NoError(t, db.Create(&DiscountCode{Code: "USED", Percent: 10, Active: true, MaxUsage: 1, Used: 1}).Error)
	require.NoError(t, db.Create(&DiscountCode{Code: "OFF", Percent: 10, Active: false}).Error)

	d, err := svc.CheckDiscount(ctx, " summer10 ")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Percent)

	_, err = svc.CheckDiscount(ctx, "OLD")
	assert.ErrorIs(t, err, ErrDiscountExpired)
	_, err = svc.CheckDiscount(ctx, "USED")
	assert.ErrorIs(t, err, ErrDiscountExhausted)
	_, err = svc.CheckDiscount(ctx, "OFF")
	assert.ErrorIs(t, err, ErrDiscountInactive)
	_, err = svc.CheckDiscount(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrDiscountNotFound)
}

func TestRedeemDiscount_StopsAtLimit(t *testing.T) {
	db := setupTestDB(t)
	code := DiscountCode{Code: "ONCE", Percent: 5, Active: true, MaxUsage: 1}
	require.NoError(t, db.Create(&code).Error)

	require.NoError(t, RedeemDiscount(db, code.ID))
	assert.ErrorIs(t, RedeemDiscount(db, code.ID), ErrDiscountExhausted)
}

func TestDiscountApply(t *testing.T) {
	assert.Equal(t, int64(900000), (&DiscountCode{Percent: 10}).Apply(1000000))
	assert.Equal(t, int64(0), (&DiscountCode{Percent: 150}).Apply(1000000))
	assert.Equal(t, int64(900), (&DiscountCode{Percent: 10}).Apply(999))
	assert.Equal(t, int64(4611686018427387904), (&DiscountCode{Percent: 50}).Apply(math.MaxInt64))
	var none *DiscountCode
	assert.Equal(t, int64(1000000), none.Apply(1000000))
}
