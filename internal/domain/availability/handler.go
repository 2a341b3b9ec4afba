package availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

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

type CreateRequest struct {
	// RFC3339 timestamp or plain YYYY-MM-DD.
	Date string `json:"available_date" validate:"required"`
}

// ListForPhotographer godoc
// @Summary List a photographer's availability
// @Description Without year/month returns every entry; with both returns one month.
// @Tags Availability
// @Produce json
// @Param id path integer true "Photographer ID"
// @Param year query integer false "Year"
// @Param month query integer false "Month 1-12"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /photographers/{id}/availability [get]
func (h *Handler) ListForPhotographer(c *gin.Context) {
	photographerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || photographerID <= 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid photographer id")
		return
	}
	year, month, ok := parseMonth(c)
	if !ok {
		return
	}

	var list []Availability
	if year == 0 {
		list, err = h.service.List(c.Request.Context(), photographerID)
	} else {
		list, err = h.service.ListMonth(c.Request.Context(), photographerID, year, month)
	}
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) ListMine(c *gin.Context) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	year, month, ok := parseMonth(c)
	if !ok {
		return
	}
	list, err := h.service.ListMine(c.Request.Context(), sess, year, month)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Create godoc
// @Summary Open a day for bookings
// @Tags Availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRequest true "Day"
// @Success 201 {object} map[string]interface{}
// @Failure 400,403,409 {object} map[string]interface{}
// @Router /availability [post]
func (h *Handler) Create(c *gin.Context) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	var req CreateRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, "available_date must be YYYY-MM-DD or RFC3339")
		return
	}

	a, err := h.service.Create(c.Request.Context(), sess, date)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, a)
}

// Delete godoc
// @Summary Remove an open day
// @Tags Availability
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Availability ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403,404,409 {object} map[string]interface{}
// @Router /availability/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid availability id")
		return
	}
	if err := h.service.Delete(c.Request.Context(), sess, id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

// ParseDate accepts YYYY-MM-DD or a full RFC3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseMonth(c *gin.Context) (int, time.Month, bool) {
	ys, ms := c.Query("year"), c.Query("month")
	if ys == "" && ms == "" {
		return 0, 0, true
	}
	year, yerr := strconv.Atoi(ys)
	month, merr := strconv.Atoi(ms)
	if yerr != nil || merr != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, "year and month must both be numbers")
		return 0, 0, false
	}
	return year, time.Month(month), true
}

// WriteError maps availability errors to responses. Returns false for
// errors it does not own.
func WriteError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, ErrDuplicateDate):
		response.Error(c, http.StatusConflict, "DUPLICATE_DATE", err.Error())
	case errors.Is(err, ErrBooked), errors.Is(err, ErrNotAvailable):
		response.Error(c, http.StatusConflict, "DATE_BOOKED", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, ErrPastDate), errors.Is(err, ErrInvalidMonth), errors.Is(err, ErrDateMismatch):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, err.Error())
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
