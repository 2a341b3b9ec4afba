package catalog

import (
	"errors"
	"net/http"
	"strconv"

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

// ListPhotographers godoc
// @Summary List photographers
// @Description Lists photographers with optional province filter, name search and pagination.
// @Tags Catalog
// @Produce json
// @Param province query string false "Province"
// @Param search query string false "Name search"
// @Param page query integer false "Page number"
// @Param limit query integer false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /photographers [get]
func (h *Handler) ListPhotographers(c *gin.Context) {
	f := PhotographerFilters{
		Province: c.Query("province"),
		Search:   c.Query("search"),
		Limit:    20,
	}
	if limit := c.Query("limit"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val > 0 && val <= 100 {
			f.Limit = val
		}
	}
	if page := c.Query("page"); page != "" {
		if val, err := strconv.Atoi(page); err == nil && val > 0 {
			f.Offset = (val - 1) * f.Limit
		}
	}

	users, total, err := h.service.ListPhotographers(c.Request.Context(), f)
	if err != nil {
		response.Internal(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"photographers": users,
		"pagination": gin.H{
			"page":        f.Offset/f.Limit + 1,
			"limit":       f.Limit,
			"total":       total,
			"total_pages": (int(total) + f.Limit - 1) / f.Limit,
		},
	})
}

// GetPhotographer godoc
// @Summary Get photographer profile
// @Tags Catalog
// @Produce json
// @Param id path integer true "Photographer ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,404 {object} map[string]interface{}
// @Router /photographers/{id} [get]
func (h *Handler) GetPhotographer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.service.GetPhotographer(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// ListServices godoc
// @Summary List a photographer's services
// @Tags Catalog
// @Produce json
// @Param id path integer true "Photographer ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,404 {object} map[string]interface{}
// @Router /photographers/{id}/services [get]
func (h *Handler) ListServices(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	services, err := h.service.ListServices(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, services)
}

func (h *Handler) CreateService(c *gin.Context) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	var req CreateServiceRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	svc, err := h.service.CreateService(c.Request.Context(), sess, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, svc)
}

func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.service.ListLocations(c.Request.Context(), c.Query("province"))
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, locations)
}

// CheckDiscount godoc
// @Summary Check a discount code
// @Tags Catalog
// @Produce json
// @Param code path string true "Discount code"
// @Success 200 {object} map[string]interface{}
// @Failure 404,409 {object} map[string]interface{}
// @Router /discount-codes/{code} [get]
func (h *Handler) CheckDiscount(c *gin.Context) {
	d, err := h.service.CheckDiscount(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"code": d.Code, "percent": d.Percent})
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "invalid "+name)
		return 0, false
	}
	return id, true
}

// WriteError maps catalog errors to responses. Returns false for errors it
// does not own.
func WriteError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, ErrPhotographerNotFound),
		errors.Is(err, ErrServiceNotFound),
		errors.Is(err, ErrLocationNotFound),
		errors.Is(err, ErrDiscountNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, ErrDiscountInactive),
		errors.Is(err, ErrDiscountExpired),
		errors.Is(err, ErrDiscountExhausted):
		response.Error(c, http.StatusConflict, "DISCOUNT_UNAVAILABLE", err.Error())
	case errors.Is(err, ErrServiceMismatch), errors.Is(err, ErrServiceInactive):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
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
