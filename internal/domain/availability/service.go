package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snapbook/internal/pkg/session"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns every availability of a photographer.
func (s *Service) List(ctx context.Context, photographerID int64) ([]Availability, error) {
	return s.repo.List(ctx, photographerID, nil, nil)
}

// ListMonth returns availabilities of a photographer within one calendar month.
func (s *Service) ListMonth(ctx context.Context, photographerID int64, year int, month time.Month) ([]Availability, error) {
	if year < 1970 || month < time.January || month > time.December {
		return nil, ErrInvalidMonth
	}
	from, to := MonthRange(year, month)
	return s.repo.List(ctx, photographerID, &from, &to)
}

// ListMine resolves the photographer from the session.
func (s *Service) ListMine(ctx context.Context, sess session.Session, year int, month time.Month) ([]Availability, error) {
	if !sess.IsPhotographer() {
		return nil, ErrForbidden
	}
	if year == 0 {
		return s.List(ctx, sess.UserID)
	}
	return s.ListMonth(ctx, sess.UserID, year, month)
}

// Create opens a single day. The date is taken as a calendar day in its own
// location.
func (s *Service) Create(ctx context.Context, sess session.Session, date time.Time) (*Availability, error) {
	if !sess.IsPhotographer() {
		return nil, ErrForbidden
	}
	day := DateOnly(date)
	if day.Before(DateOnly(s.now())) {
		return nil, ErrPastDate
	}

	a := &Availability{
		PhotographerID: sess.UserID,
		AvailableDate:  day,
		Status:         StatusAvailable,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicateDate) {
			return nil, err
		}
		return nil, fmt.Errorf("create availability: %w", err)
	}
	return a, nil
}

// Delete removes an open day owned by the caller. Booked days stay.
func (s *Service) Delete(ctx context.Context, sess session.Session, id int64) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.PhotographerID != sess.UserID && !sess.IsAdmin() {
		return ErrForbidden
	}
	if a.Status == StatusBooked {
		return ErrBooked
	}
	deleted, err := s.repo.DeleteAvailable(ctx, id)
	if err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	if !deleted {
		// booked between the read and the delete
		return ErrBooked
	}
	return nil
}

// FindForDay looks up the photographer's entry for the selected day.
func (s *Service) FindForDay(ctx context.Context, photographerID int64, selected time.Time) (*Availability, error) {
	from, to := MonthRange(selected.Year(), selected.Month())
	list, err := s.repo.List(ctx, photographerID, &from, &to)
	if err != nil {
		return nil, err
	}
	a, ok := FindByDate(list, selected)
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// PurgePast deletes open days that are already behind us.
func (s *Service) PurgePast(ctx context.Context) (int64, error) {
	return s.repo.PurgeAvailableBefore(ctx, DateOnly(s.now().UTC()))
}
