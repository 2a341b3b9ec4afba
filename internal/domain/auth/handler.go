package auth

import (
	"errors"
	"net/http"

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

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// SignIn godoc
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body SignInRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401 {object} map[string]interface{}
// @Router /auth/sign-in [post]
func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if !validator.BindJSON(c, &req) {
		return
	}
	res, err := h.service.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// SignOut godoc
// @Summary Sign out
// @Tags Auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Router /auth/sign-out [post]
func (h *Handler) SignOut(c *gin.Context) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	if err := h.service.SignOut(c.Request.Context(), sess); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	u, err := h.service.Me(c.Request.Context(), sess)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrSessionExpired):
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		response.Internal(c, err)
	}
}
