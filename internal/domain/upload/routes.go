package upload

import "github.com/gin-gonic/gin"

// RegisterRoutes registers upload routes under the protected group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	uploads := r.Group("/uploads")
	{
		uploads.POST("", h.Upload)
		uploads.GET("", h.ListMy)
		uploads.GET("/:id", h.GetByID)
		uploads.DELETE("/:id", h.Delete)
	}
}
