package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"snapbook/internal/domain"
)

type Repository interface {
	ListPhotographers(ctx context.Context, f PhotographerFilters) ([]domain.User, int64, error)
	GetPhotographer(ctx context.Context, id int64) (*domain.User, error)
	ListServices(ctx context.Context, photographerID int64) ([]PhotoService, error)
	GetService(ctx context.Context, id int64) (*PhotoService, error)
	CreateService(ctx context.Context, s *PhotoService) error
	ListLocations(ctx context.Context, province string) ([]Location, error)
	GetLocation(ctx context.Context, id int64) (*Location, error)
	GetDiscountCode(ctx context.Context, code string) (*DiscountCode, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListPhotographers(ctx context.Context, f PhotographerFilters) ([]domain.User, int64, error) {
	var users []domain.User
	var total int64

	q := r.db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", domain.RolePhotographer)
	if f.Province != "" {
		q = q.Where("province = ?", f.Province)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Order("id ASC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *repository) GetPhotographer(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, domain.RolePhotographer).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPhotographerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) ListServices(ctx context.Context, photographerID int64) ([]PhotoService, error) {
	var services []PhotoService
	err := r.db.WithContext(ctx).
		Where("photographer_id = ? AND active = ?", photographerID, true).
		Order("price ASC").
		Find(&services).Error
	return services, err
}

func (r *repository) GetService(ctx context.Context, id int64) (*PhotoService, error) {
	var s PhotoService
	err := r.db.WithContext(ctx).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) CreateService(ctx context.Context, s *PhotoService) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) ListLocations(ctx context.Context, province string) ([]Location, error) {
	var locations []Location
	q := r.db.WithContext(ctx).Model(&Location{})
	if province != "" {
		q = q.Where("province = ?", province)
	}
	err := q.Order("name ASC").Find(&locations).Error
	return locations, err
}

func (r *repository) GetLocation(ctx context.Context, id int64) (*Location, error) {
	var l Location
	err := r.db.WithContext(ctx).First(&l, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) GetDiscountCode(ctx context.Context, code string) (*DiscountCode, error) {
	var d DiscountCode
	err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDiscountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// RedeemDiscount increments usage inside the caller's transaction. The
// conditional update refuses to exceed MaxUsage under concurrency.
func RedeemDiscount(tx *gorm.DB, codeID int64) error {
	res := tx.Model(&DiscountCode{}).
		Where("id = ? AND active = ? AND (max_usage = 0 OR used < max_usage)", codeID, true).
		UpdateColumn("used", gorm.Expr("used + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDiscountExhausted
	}
	return nil
}
