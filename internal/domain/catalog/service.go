package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"snapbook/internal/domain"
	"snapbook/internal/pkg/session"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) ListPhotographers(ctx context.Context, f PhotographerFilters) ([]domain.User, int64, error) {
	return s.repo.ListPhotographers(ctx, f)
}

func (s *Service) GetPhotographer(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetPhotographer(ctx, id)
}

func (s *Service) ListServices(ctx context.Context, photographerID int64) ([]PhotoService, error) {
	if _, err := s.repo.GetPhotographer(ctx, photographerID); err != nil {
		return nil, err
	}
	return s.repo.ListServices(ctx, photographerID)
}

func (s *Service) GetService(ctx context.Context, id int64) (*PhotoService, error) {
	return s.repo.GetService(ctx, id)
}

// ServiceOf returns the service only if it belongs to the photographer and
// is still offered.
func (s *Service) ServiceOf(ctx context.Context, photographerID, serviceID int64) (*PhotoService, error) {
	svc, err := s.repo.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.PhotographerID != photographerID {
		return nil, ErrServiceMismatch
	}
	if !svc.Active {
		return nil, ErrServiceInactive
	}
	return svc, nil
}

type CreateServiceRequest struct {
	Name            string `json:"name" validate:"required,max=120"`
	Description     string `json:"description" validate:"max=2000"`
	Price           int64  `json:"price" validate:"required,gt=0"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0"`
}

func (s *Service) CreateService(ctx context.Context, sess session.Session, req CreateServiceRequest) (*PhotoService, error) {
	if !sess.IsPhotographer() {
		return nil, ErrForbidden
	}
	svc := &PhotoService{
		PhotographerID:  sess.UserID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		Active:          true,
	}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

func (s *Service) ListLocations(ctx context.Context, province string) ([]Location, error) {
	return s.repo.ListLocations(ctx, strings.TrimSpace(province))
}

func (s *Service) GetLocation(ctx context.Context, id int64) (*Location, error) {
	return s.repo.GetLocation(ctx, id)
}

// CheckDiscount returns the code if it can be applied right now.
func (s *Service) CheckDiscount(ctx context.Context, code string) (*DiscountCode, error) {
	d, err := s.repo.GetDiscountCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := d.Usable(s.now()); err != nil {
		return nil, err
	}
	return d, nil
}
