package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"snapbook/internal/domain"
	"snapbook/internal/domain/availability"
	"snapbook/internal/domain/catalog"
	"snapbook/internal/domain/upload"
	"snapbook/internal/domain/wizard"
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

type UpdateStatusRequest struct {
	Status domain.BookingStatus `json:"status" validate:"required,oneof=confirmed cancelled completed"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus domain.PaymentStatus `json:"payment_status" validate:"required,oneof=deposit_paid fully_paid"`
}

// CreateBooking godoc
// @Summary Create a booking from a complete form
// @Description The illustration must already be a hosted URL. Price is computed server-side.
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body wizard.BookingFormData true "Booking form"
// @Success 201 {object} map[string]interface{}
// @Failure 400,403,404,409 {object} map[string]interface{}
// @Router /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var form wizard.BookingFormData
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, err.Error())
		return
	}
	code, err := h.service.CreateBooking(c.Request.Context(), sess, form)
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking_code": code})
}

func (h *Handler) GetMyBookings(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	list, err := h.service.GetMyBookings(c.Request.Context(), sess)
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) GetByCode(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	b, err := h.service.GetByCode(c.Request.Context(), sess, c.Param("code"))
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// UpdateStatus godoc
// @Summary Change booking status
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Booking code"
// @Param body body UpdateStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 400,403,404,409 {object} map[string]interface{}
// @Router /bookings/{code}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	b, err := h.service.UpdateStatus(c.Request.Context(), sess, c.Param("code"), req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req UpdatePaymentStatusRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	b, err := h.service.UpdatePaymentStatus(c.Request.Context(), sess, c.Param("code"), req.PaymentStatus)
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func mustSession(c *gin.Context) (session.Session, bool) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
	}
	return sess, ok
}

// HandleError maps errors from booking creation and its collaborators.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrPriceOutOfRange):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, err.Error())
	case errors.Is(err, ErrInvalidStatusTransition), errors.Is(err, ErrPaymentStateChanged):
		response.Error(c, http.StatusConflict, "INVALID_STATUS_TRANSITION", err.Error())
	default:
		if wizard.WriteError(c, err) || availability.WriteError(c, err) ||
			catalog.WriteError(c, err) || upload.WriteError(c, err) {
			return
		}
		response.Internal(c, err)
	}
}
