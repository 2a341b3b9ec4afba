package request

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"snapbook/internal/database"
)

type Repository interface {
	CreateRequest(ctx context.Context, r *Request) error
	GetRequest(ctx context.Context, id int64, withOffers bool) (*Request, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Request, error)
	ListOpen(ctx context.Context, province string) ([]Request, error)
	CreateOffer(ctx context.Context, o *Offer) error
	GetOffer(ctx context.Context, id int64) (*Offer, error)
	DecideOffer(ctx context.Context, offerID int64, status OfferStatus) (*Decision, error)
	CloseRequest(ctx context.Context, requestID int64) ([]Offer, error)
}

// Decision is the outcome of accepting or rejecting an offer.
type Decision struct {
	Offer Offer
	// AutoRejected lists sibling offers rejected because another was accepted.
	AutoRejected []Offer
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateRequest(ctx context.Context, req *Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) GetRequest(ctx context.Context, id int64, withOffers bool) (*Request, error) {
	q := r.db.WithContext(ctx)
	if withOffers {
		q = q.Preload("Offers", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
			Preload("Offers.Photographer").
			Preload("Offers.Service")
	}
	var req Request
	err := q.First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int64) ([]Request, error) {
	var out []Request
	err := r.db.WithContext(ctx).
		Preload("Offers").
		Preload("Offers.Photographer").
		Preload("Offers.Service").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) ListOpen(ctx context.Context, province string) ([]Request, error) {
	q := r.db.WithContext(ctx).Where("status = ?", StatusOpen)
	if province != "" {
		q = q.Where("province = ?", province)
	}
	var out []Request
	err := q.Order("request_date ASC").Find(&out).Error
	return out, err
}

func (r *repository) CreateOffer(ctx context.Context, o *Offer) error {
	err := r.db.WithContext(ctx).Create(o).Error
	if database.IsUniqueViolation(err) {
		return ErrDuplicateOffer
	}
	return err
}

func (r *repository) GetOffer(ctx context.Context, id int64) (*Offer, error) {
	var o Offer
	err := r.db.WithContext(ctx).
		Preload("Photographer").
		Preload("Service").
		Preload("Request").
		First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// DecideOffer moves a pending offer to its terminal status. The update is
// conditional on status = pending, so a replayed or concurrent decision
// affects zero rows and is rejected. Accepting also marks the request
// matched and rejects the other pending offers.
func (r *repository) DecideOffer(ctx context.Context, offerID int64, status OfferStatus) (*Decision, error) {
	var d Decision
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer Offer
		if err := tx.First(&offer, offerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}

		res := tx.Model(&Offer{}).
			Where("id = ? AND status = ?", offerID, OfferPending).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidStatusTransition
		}

		if status == OfferAccepted {
			res := tx.Model(&Request{}).
				Where("id = ? AND status = ?", offer.RequestID, StatusOpen).
				Update("status", StatusMatched)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrRequestNotOpen
			}

			siblings := tx.Where("request_id = ? AND id <> ? AND status = ?", offer.RequestID, offerID, OfferPending)
			if err := siblings.Find(&d.AutoRejected).Error; err != nil {
				return err
			}
			if len(d.AutoRejected) > 0 {
				if err := tx.Model(&Offer{}).
					Where("request_id = ? AND id <> ? AND status = ?", offer.RequestID, offerID, OfferPending).
					Update("status", OfferRejected).Error; err != nil {
					return err
				}
				for i := range d.AutoRejected {
					d.AutoRejected[i].Status = OfferRejected
				}
			}
		}

		return tx.Preload("Photographer").Preload("Service").First(&d.Offer, offerID).Error
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CloseRequest closes an open request and rejects its pending offers.
func (r *repository) CloseRequest(ctx context.Context, requestID int64) ([]Offer, error) {
	var rejected []Offer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Request{}).
			Where("id = ? AND status = ?", requestID, StatusOpen).
			Update("status", StatusClosed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRequestNotOpen
		}
		if err := tx.Where("request_id = ? AND status = ?", requestID, OfferPending).Find(&rejected).Error; err != nil {
			return err
		}
		return tx.Model(&Offer{}).
			Where("request_id = ? AND status = ?", requestID, OfferPending).
			Update("status", OfferRejected).Error
	})
	if err != nil {
		return nil, err
	}
	for i := range rejected {
		rejected[i].Status = OfferRejected
	}
	return rejected, nil
}
