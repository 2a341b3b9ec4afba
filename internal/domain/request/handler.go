package request

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"snapbook/internal/domain/catalog"
	"snapbook/internal/pkg/response"
	"snapbook/internal/pkg/session"
	"snapbook/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type ChangeStatusRequest struct {
	Status OfferStatus `json:"status" validate:"required,oneof=accepted rejected"`
}

// CreateRequest godoc
// @Summary Post a photography request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRequestInput true "Request"
// @Success 201 {object} map[string]interface{}
// @Failure 400,403 {object} map[string]interface{}
// @Router /requests [post]
func (h *Handler) CreateRequest(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var in CreateRequestInput
	if !validator.BindJSON(c, &in) {
		return
	}
	req, err := h.service.CreateRequest(c.Request.Context(), sess, in)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, req)
}

func (h *Handler) ListMyRequests(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	list, err := h.service.ListMyRequests(c.Request.Context(), sess)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) ListOpen(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	list, err := h.service.ListOpen(c.Request.Context(), sess, c.Query("province"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) GetRequest(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	req, err := h.service.GetRequest(c.Request.Context(), sess, id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, req)
}

func (h *Handler) CloseRequest(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.CloseRequest(c.Request.Context(), sess, id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request_id": id, "status": StatusClosed})
}

// CreateOffer godoc
// @Summary Send an offer for a request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Request ID"
// @Param body body CreateOfferInput true "Offer"
// @Success 201 {object} map[string]interface{}
// @Failure 400,403,404,409 {object} map[string]interface{}
// @Router /requests/{id}/offers [post]
func (h *Handler) CreateOffer(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in CreateOfferInput
	if !validator.BindJSON(c, &in) {
		return
	}
	offer, err := h.service.CreateOffer(c.Request.Context(), sess, id, in)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, offer)
}

func (h *Handler) GetOffer(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	offer, err := h.service.GetOfferDetail(c.Request.Context(), sess, id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, offer)
}

// ChangeOfferStatus godoc
// @Summary Accept or reject an offer
// @Description Only pending offers can change. A second decision on the same offer answers 409.
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Offer ID"
// @Param body body ChangeStatusRequest true "Target status"
// @Success 200 {object} map[string]interface{}
// @Failure 400,403,404,409 {object} map[string]interface{}
// @Router /offers/{id}/status [patch]
func (h *Handler) ChangeOfferStatus(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ChangeStatusRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	offer, err := h.service.ChangeOfferStatus(c.Request.Context(), sess, id, req.Status)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, offer)
}

func mustSession(c *gin.Context) (session.Session, bool) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
	}
	return sess, ok
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid id")
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrRequestNotFound), errors.Is(err, ErrOfferNotFound), errors.Is(err, catalog.ErrServiceNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, ErrForbidden), errors.Is(err, catalog.ErrServiceMismatch):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusConflict, "INVALID_STATUS_TRANSITION", err.Error())
	case errors.Is(err, ErrRequestNotOpen):
		response.Error(c, http.StatusConflict, "REQUEST_NOT_OPEN", err.Error())
	case errors.Is(err, ErrDuplicateOffer):
		response.Error(c, http.StatusConflict, "DUPLICATE_OFFER", err.Error())
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, err.Error())
	default:
		response.Internal(c, err)
	}
}
