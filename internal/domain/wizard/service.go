package wizard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"snapbook/internal/pkg/session"
)

// ImageResolver turns an illustration reference into a hosted URL.
type ImageResolver interface {
	ResolveImageRef(ctx context.Context, sess session.Session, ref, folder string) (string, error)
}

// BookingCreator creates the booking and returns its code.
type BookingCreator interface {
	CreateBooking(ctx context.Context, sess session.Session, form BookingFormData) (string, error)
}

type Service struct {
	store    DraftStore
	images   ImageResolver
	bookings BookingCreator
	folder   string
	log      logrus.FieldLogger
}

func NewService(store DraftStore, images ImageResolver, bookings BookingCreator, folder string, log logrus.FieldLogger) *Service {
	return &Service{store: store, images: images, bookings: bookings, folder: folder, log: log}
}

func (s *Service) Create(ctx context.Context, sess session.Session) (*Draft, error) {
	d := NewDraft(uuid.NewString(), sess.UserID)
	if err := s.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return d, nil
}

// Get returns the caller's draft. Drafts of other users look missing.
func (s *Service) Get(ctx context.Context, sess session.Session, id string) (*Draft, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != sess.UserID {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

func (s *Service) Patch(ctx context.Context, sess session.Session, id string, p FormPatch) (*Draft, error) {
	return s.update(ctx, sess, id, func(d *Draft) error {
		d.Data.Merge(p)
		return nil
	})
}

func (s *Service) Advance(ctx context.Context, sess session.Session, id string) (*Draft, error) {
	return s.update(ctx, sess, id, (*Draft).Advance)
}

func (s *Service) Retreat(ctx context.Context, sess session.Session, id string) (*Draft, error) {
	return s.update(ctx, sess, id, (*Draft).Retreat)
}

func (s *Service) Discard(ctx context.Context, sess session.Session, id string) error {
	if _, err := s.Get(ctx, sess, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Submit hosts the illustration, creates the booking and drops the draft.
// Only a draft on the last step with every field complete is accepted.
// The resolved URL is saved before booking so a retry does not upload twice.
func (s *Service) Submit(ctx context.Context, sess session.Session, id string) (string, error) {
	d, err := s.Get(ctx, sess, id)
	if err != nil {
		return "", err
	}
	if d.Step != MaxStep || !CanAdvance(MaxStep, d.Data) {
		return "", ErrNotReady
	}

	hosted, err := s.images.ResolveImageRef(ctx, sess, d.Data.IllustrationURL, s.folder)
	if err != nil {
		return "", fmt.Errorf("resolve illustration: %w", err)
	}
	if hosted != d.Data.IllustrationURL {
		ref := d.Data.IllustrationURL
		d, err = s.update(ctx, sess, id, func(cur *Draft) error {
			// a concurrent patch may have replaced the image meanwhile
			if cur.Data.IllustrationURL != ref {
				return ErrDraftBusy
			}
			cur.Data.IllustrationURL = hosted
			return nil
		})
		if err != nil {
			return "", err
		}
		if d.Step != MaxStep || !CanAdvance(MaxStep, d.Data) {
			return "", ErrNotReady
		}
	}

	code, err := s.bookings.CreateBooking(ctx, sess, d.Data)
	if err != nil {
		return "", err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.log.WithError(err).WithField("draft_id", id).Warn("delete submitted draft failed")
	}
	return code, nil
}

// update runs fn on the caller's draft as one read-modify-write.
func (s *Service) update(ctx context.Context, sess session.Session, id string, fn func(*Draft) error) (*Draft, error) {
	return s.store.Update(ctx, id, func(d *Draft) error {
		if d.UserID != sess.UserID {
			return ErrDraftNotFound
		}
		return fn(d)
	})
}
