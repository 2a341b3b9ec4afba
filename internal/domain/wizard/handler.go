package wizard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"snapbook/internal/pkg/response"
	"snapbook/internal/pkg/session"
	"snapbook/internal/pkg/validator"
)

// ErrorWriter answers errors the wizard does not own, such as those from
// booking creation on submit.
type ErrorWriter func(c *gin.Context, err error)

type Handler struct {
	service  *Service
	fallback ErrorWriter
}

func NewHandler(service *Service, fallback ErrorWriter) *Handler {
	if fallback == nil {
		fallback = response.Internal
	}
	return &Handler{service: service, fallback: fallback}
}

// DraftView is a draft plus whether its current step is complete.
type DraftView struct {
	*Draft
	CanAdvance    bool     `json:"can_advance"`
	MissingFields []string `json:"missing_fields"`
}

func viewOf(d *Draft) DraftView {
	missing := MissingFields(d.Step, d.Data)
	if missing == nil {
		missing = []string{}
	}
	return DraftView{Draft: d, CanAdvance: len(missing) == 0, MissingFields: missing}
}

// Create godoc
// @Summary Start a booking draft
// @Tags Booking drafts
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Router /booking-drafts [post]
func (h *Handler) Create(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	d, err := h.service.Create(c.Request.Context(), sess)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, viewOf(d))
}

func (h *Handler) Get(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	d, err := h.service.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, viewOf(d))
}

// Patch godoc
// @Summary Merge fields into a draft
// @Description Only the fields present in the body change.
// @Tags Booking drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID"
// @Param body body FormPatch true "Fields to set"
// @Success 200 {object} map[string]interface{}
// @Router /booking-drafts/{id} [patch]
func (h *Handler) Patch(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var p FormPatch
	if !validator.BindJSON(c, &p) {
		return
	}
	d, err := h.service.Patch(c.Request.Context(), sess, c.Param("id"), p)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, viewOf(d))
}

// Advance godoc
// @Summary Go to the next step
// @Description Answers 409 with the missing fields when the current step is incomplete.
// @Tags Booking drafts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404,409 {object} map[string]interface{}
// @Router /booking-drafts/{id}/advance [post]
func (h *Handler) Advance(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	d, err := h.service.Advance(ctx, sess, c.Param("id"))
	if errors.Is(err, ErrStepIncomplete) {
		if cur, getErr := h.service.Get(ctx, sess, c.Param("id")); getErr == nil {
			response.ErrorWithDetails(c, http.StatusConflict, "STEP_INCOMPLETE", err.Error(), gin.H{
				"step":           cur.Step,
				"missing_fields": MissingFields(cur.Step, cur.Data),
			})
			return
		}
	}
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, viewOf(d))
}

func (h *Handler) Retreat(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	d, err := h.service.Retreat(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, viewOf(d))
}

// Submit godoc
// @Summary Submit a complete draft as a booking
// @Description Uploads an inline illustration first, then creates the booking.
// @Tags Booking drafts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID"
// @Success 201 {object} map[string]interface{}
// @Failure 400,404,409,502 {object} map[string]interface{}
// @Router /booking-drafts/{id}/submit [post]
func (h *Handler) Submit(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	code, err := h.service.Submit(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking_code": code})
}

func (h *Handler) Discard(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	if err := h.service.Discard(c.Request.Context(), sess, c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func mustSession(c *gin.Context) (session.Session, bool) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
	}
	return sess, ok
}

// WriteError maps wizard errors to responses. Returns false for errors it
// does not own.
func WriteError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, ErrDraftNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, ErrStepIncomplete), errors.Is(err, ErrNotReady):
		response.Error(c, http.StatusConflict, "STEP_INCOMPLETE", err.Error())
	case errors.Is(err, ErrLastStep), errors.Is(err, ErrFirstStep):
		response.Error(c, http.StatusConflict, "STEP_OUT_OF_RANGE", err.Error())
	case errors.Is(err, ErrDraftBusy):
		response.Error(c, http.StatusConflict, "DRAFT_BUSY", err.Error())
	case errors.Is(err, ErrUnresolvedImage):
		response.Error(c, http.StatusBadRequest, "UNRESOLVED_IMAGE", err.Error())
	default:
		return false
	}
	return true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	if !WriteError(c, err) {
		h.fallback(c, err)
	}
}
