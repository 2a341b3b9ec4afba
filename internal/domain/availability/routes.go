package availability

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the public calendar read.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/photographers/:id/availability", h.ListForPhotographer)
}

// RegisterProtectedRoutes registers the photographer's own calendar management.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	a := r.Group("/availability")
	{
		a.GET("/mine", h.ListMine)
		a.POST("", h.Create)
		a.DELETE("/:id", h.Delete)
	}
}
