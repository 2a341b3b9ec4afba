package request

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"snapbook/internal/domain"
	"snapbook/internal/domain/catalog"
	"snapbook/internal/events"
	"snapbook/internal/pkg/codegen"
	"snapbook/internal/pkg/session"
)

// ServiceLookup resolves a photographer's service for pricing an offer.
type ServiceLookup interface {
	ServiceOf(ctx context.Context, photographerID, serviceID int64) (*catalog.PhotoService, error)
}

// Notifier pushes a realtime event to a connected user.
type Notifier interface {
	Notify(userID int64, eventType string, payload any)
}

type Service struct {
	repo      Repository
	services  ServiceLookup
	notifier  Notifier
	publisher events.Publisher
	topic     string
	log       logrus.FieldLogger
}

func NewService(repo Repository, services ServiceLookup, notifier Notifier, publisher events.Publisher, topic string, log logrus.FieldLogger) *Service {
	return &Service{
		repo:      repo,
		services:  services,
		notifier:  notifier,
		publisher: publisher,
		topic:     topic,
		log:       log,
	}
}

type CreateRequestInput struct {
	EstimatedBudget int64               `json:"estimated_budget" validate:"gte=0"`
	Concept         string              `json:"concept" validate:"required,max=4000"`
	ShootingType    domain.ShootingType `json:"shooting_type" validate:"required,oneof=outdoor studio"`
	LocationText    string              `json:"location_text" validate:"max=255"`
	Province        string              `json:"province" validate:"required,max=100"`
	RequestDate     time.Time           `json:"request_date" validate:"required"`
}

type CreateOfferInput struct {
	ServiceID   int64  `json:"service_id" validate:"required,gt=0"`
	CustomPrice int64  `json:"custom_price" validate:"required,gt=0"`
	Message     string `json:"message" validate:"max=2000"`
}

func (s *Service) CreateRequest(ctx context.Context, sess session.Session, in CreateRequestInput) (*Request, error) {
	if sess.Role != session.RoleCustomer {
		return nil, ErrForbidden
	}
	req := &Request{
		Code:            codegen.New("REQ", 8),
		CustomerID:      sess.UserID,
		Status:          StatusOpen,
		EstimatedBudget: in.EstimatedBudget,
		Concept:         strings.TrimSpace(in.Concept),
		ShootingType:    in.ShootingType,
		LocationText:    strings.TrimSpace(in.LocationText),
		Province:        strings.TrimSpace(in.Province),
		RequestDate:     in.RequestDate,
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

// ListMyRequests returns the caller's requests with their offers.
func (s *Service) ListMyRequests(ctx context.Context, sess session.Session) ([]Request, error) {
	list, err := s.repo.ListByCustomer(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		for j := range list[i].Offers {
			list[i].Offers[j].fillDiscount()
		}
	}
	return list, nil
}

// ListOpen is the photographer's view of requests awaiting offers.
func (s *Service) ListOpen(ctx context.Context, sess session.Session, province string) ([]Request, error) {
	if !sess.IsPhotographer() && !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.repo.ListOpen(ctx, strings.TrimSpace(province))
}

func (s *Service) GetRequest(ctx context.Context, sess session.Session, id int64) (*Request, error) {
	req, err := s.repo.GetRequest(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != sess.UserID && !sess.IsPhotographer() && !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	if sess.IsPhotographer() {
		// photographers only see their own offer
		own := req.Offers[:0]
		for _, o := range req.Offers {
			if o.PhotographerID == sess.UserID {
				own = append(own, o)
			}
		}
		req.Offers = own
	}
	for i := range req.Offers {
		req.Offers[i].fillDiscount()
	}
	return req, nil
}

func (s *Service) CreateOffer(ctx context.Context, sess session.Session, requestID int64, in CreateOfferInput) (*Offer, error) {
	if !sess.IsPhotographer() {
		return nil, ErrForbidden
	}
	req, err := s.repo.GetRequest(ctx, requestID, false)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusOpen {
		return nil, ErrRequestNotOpen
	}
	svc, err := s.services.ServiceOf(ctx, sess.UserID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	offer := &Offer{
		RequestID:      req.ID,
		PhotographerID: sess.UserID,
		ServiceID:      svc.ID,
		Status:         OfferPending,
		CustomPrice:    in.CustomPrice,
		Message:        strings.TrimSpace(in.Message),
		Service:        svc,
	}
	if err := s.repo.CreateOffer(ctx, offer); err != nil {
		return nil, err
	}
	offer.fillDiscount()

	s.emit(ctx, req.CustomerID, events.TypeOfferCreated, offer)
	return offer, nil
}

// GetOfferDetail is visible to the request's customer and the offering photographer.
func (s *Service) GetOfferDetail(ctx context.Context, sess session.Session, id int64) (*Offer, error) {
	offer, err := s.repo.GetOffer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canSee(sess, offer) {
		return nil, ErrForbidden
	}
	offer.fillDiscount()
	return offer, nil
}

// ChangeOfferStatus accepts or rejects a pending offer on behalf of the
// request's customer. The returned offer carries the persisted status.
func (s *Service) ChangeOfferStatus(ctx context.Context, sess session.Session, id int64, status OfferStatus) (*Offer, error) {
	if status != OfferAccepted && status != OfferRejected {
		return nil, ErrInvalidStatus
	}
	offer, err := s.repo.GetOffer(ctx, id)
	if err != nil {
		return nil, err
	}
	if offer.Request == nil || offer.Request.CustomerID != sess.UserID {
		return nil, ErrForbidden
	}

	decision, err := s.repo.DecideOffer(ctx, id, status)
	if err != nil {
		return nil, err
	}
	result := decision.Offer
	result.fillDiscount()

	eventType := events.TypeOfferRejected
	if status == OfferAccepted {
		eventType = events.TypeOfferAccepted
	}
	s.emit(ctx, result.PhotographerID, eventType, &result)
	for i := range decision.AutoRejected {
		s.emit(ctx, decision.AutoRejected[i].PhotographerID, events.TypeOfferRejected, &decision.AutoRejected[i])
	}

	s.log.WithFields(logrus.Fields{
		"offer_id":      id,
		"request_id":    result.RequestID,
		"status":        status,
		"auto_rejected": len(decision.AutoRejected),
	}).Info("offer decided")

	return &result, nil
}

// CloseRequest lets the customer withdraw an open request.
func (s *Service) CloseRequest(ctx context.Context, sess session.Session, id int64) error {
	req, err := s.repo.GetRequest(ctx, id, false)
	if err != nil {
		return err
	}
	if req.CustomerID != sess.UserID {
		return ErrForbidden
	}
	rejected, err := s.repo.CloseRequest(ctx, id)
	if err != nil {
		return err
	}
	for i := range rejected {
		s.emit(ctx, rejected[i].PhotographerID, events.TypeOfferRejected, &rejected[i])
	}
	return nil
}

func (s *Service) canSee(sess session.Session, o *Offer) bool {
	if sess.IsAdmin() || o.PhotographerID == sess.UserID {
		return true
	}
	return o.Request != nil && o.Request.CustomerID == sess.UserID
}

// emit pushes to the user's socket and publishes to Kafka. Delivery
// failures are logged and never fail the operation.
func (s *Service) emit(ctx context.Context, userID int64, eventType string, offer *Offer) {
	payload := map[string]any{
		"request_offer_id": offer.ID,
		"request_id":       offer.RequestID,
		"status":           offer.Status,
		"custom_price":     offer.CustomPrice,
	}
	if s.notifier != nil {
		s.notifier.Notify(userID, eventType, payload)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, s.topic, events.New(eventType, strconv.FormatInt(offer.ID, 10), payload)); err != nil {
			s.log.WithError(err).WithField("type", eventType).Warn("publish offer event failed")
		}
	}
}
