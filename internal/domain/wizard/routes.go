package wizard

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	drafts := r.Group("/booking-drafts")
	{
		drafts.POST("", h.Create)
		drafts.GET("/:id", h.Get)
		drafts.PATCH("/:id", h.Patch)
		drafts.DELETE("/:id", h.Discard)
		drafts.POST("/:id/advance", h.Advance)
		drafts.POST("/:id/retreat", h.Retreat)
		drafts.POST("/:id/submit", h.Submit)
	}
}
