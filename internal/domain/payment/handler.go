package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"snapbook/internal/domain/booking"
	"snapbook/internal/pkg/response"
	"snapbook/internal/pkg/session"
	"snapbook/internal/pkg/validator"
)

// Views the client renders after returning from the gateway.
const (
	ViewSuccess         = "success"
	ViewPaymentFailed   = "payment_failed"
	ViewBookingNotFound = "booking_not_found"
	ViewInvalidCallback = "invalid_callback"
	ViewConflict        = "conflict"
	ViewError           = "error"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type InitiateRequest struct {
	BookingCode string `json:"booking_code" validate:"required,max=32"`
	Option      Option `json:"option" validate:"required,oneof=full deposit reminder"`
}

type InitiateResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	PayURL   string `json:"pay_url"`
	Deeplink string `json:"deeplink,omitempty"`
}

// Initiate godoc
// @Summary Start a gateway payment for a booking
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body InitiateRequest true "Booking and option"
// @Success 201 {object} map[string]interface{}
// @Failure 400,403,404,409,502 {object} map[string]interface{}
// @Router /payments/initiate [post]
func (h *Handler) Initiate(c *gin.Context) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	var req InitiateRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	a, err := h.service.Initiate(c.Request.Context(), sess, req.BookingCode, req.Option)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, InitiateResponse{
		OrderID:  a.OrderID,
		Amount:   a.Amount,
		PayURL:   a.PayURL,
		Deeplink: a.Deeplink,
	})
}

func (h *Handler) GetAttempt(c *gin.Context) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	a, err := h.service.GetAttempt(c.Request.Context(), sess, c.Param("order_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

func (h *Handler) ListPayments(c *gin.Context) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	list, err := h.service.ListPayments(c.Request.Context(), sess, c.Param("code"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Return godoc
// @Summary Gateway return URL
// @Description Reconciles the payment and tells the client which view to show.
// @Tags Payments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400,402,404,409 {object} map[string]interface{}
// @Router /payments/momo/return [get]
func (h *Handler) Return(c *gin.Context) {
	var p CallbackParams
	if err := c.ShouldBindQuery(&p); err != nil {
		writeView(c, http.StatusBadRequest, ViewInvalidCallback, ErrMalformedCallback)
		return
	}
	res, err := h.service.Reconcile(c.Request.Context(), p)
	if err != nil {
		status, view := CallbackView(err)
		writeView(c, status, view, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"view":   ViewSuccess,
		"result": res,
	})
}

// IPN godoc
// @Summary Gateway server-to-server notification
// @Tags Payments
// @Accept json
// @Success 204
// @Failure 400,404,409 {object} map[string]interface{}
// @Router /payments/momo/ipn [post]
func (h *Handler) IPN(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		writeView(c, http.StatusBadRequest, ViewInvalidCallback, ErrMalformedCallback)
		return
	}
	p, err := ParseIPN(body)
	if err != nil {
		writeView(c, http.StatusBadRequest, ViewInvalidCallback, err)
		return
	}
	_, err = h.service.Reconcile(c.Request.Context(), p)
	// a decline is a processed notification, acknowledged like a success
	if err == nil || errors.Is(err, ErrPaymentDeclined) {
		c.Status(http.StatusNoContent)
		return
	}
	status, view := CallbackView(err)
	writeView(c, status, view, err)
}

// CallbackView maps a reconcile error to its HTTP status and client view.
func CallbackView(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ViewSuccess
	case errors.Is(err, ErrPaymentDeclined):
		return http.StatusPaymentRequired, ViewPaymentFailed
	case errors.Is(err, ErrBookingNotFound):
		return http.StatusNotFound, ViewBookingNotFound
	case errors.Is(err, ErrMalformedCallback), errors.Is(err, ErrMalformedOrderInfo),
		errors.Is(err, ErrInvalidSignature):
		return http.StatusBadRequest, ViewInvalidCallback
	case errors.Is(err, ErrReconcileInProgress), errors.Is(err, ErrAmountMismatch),
		errors.Is(err, ErrOptionNotAllowed):
		return http.StatusConflict, ViewConflict
	}
	return http.StatusInternalServerError, ViewError
}

func writeView(c *gin.Context, status int, view string, err error) {
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		response.ErrorWithDetails(c, status, response.CodeInternalError, "internal server error", gin.H{"view": view})
		return
	}
	response.ErrorWithDetails(c, status, callbackCode(view), err.Error(), gin.H{"view": view})
}

func callbackCode(view string) string {
	switch view {
	case ViewPaymentFailed:
		return "PAYMENT_FAILED"
	case ViewBookingNotFound:
		return response.CodeNotFound
	case ViewInvalidCallback:
		return "INVALID_CALLBACK"
	}
	return response.CodeConflict
}

// WriteError answers payment errors and reports whether it handled err.
func WriteError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, ErrAttemptNotFound), errors.Is(err, ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, ErrForbidden), errors.Is(err, booking.ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, ErrInvalidOption):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, err.Error())
	case errors.Is(err, ErrOptionNotAllowed):
		response.Error(c, http.StatusConflict, "OPTION_NOT_ALLOWED", err.Error())
	case errors.Is(err, ErrGatewayUnavailable):
		_ = c.Error(err)
		response.Error(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", ErrGatewayUnavailable.Error())
	default:
		return false
	}
	return true
}

func handleError(c *gin.Context, err error) {
	if !WriteError(c, err) {
		response.Internal(c, err)
	}
}
