package auth

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup, mw ...gin.HandlerFunc) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/sign-in", append(mw, h.SignIn)...)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.POST("/auth/sign-out", h.SignOut)
	protected.GET("/users/me", h.Me)
}
