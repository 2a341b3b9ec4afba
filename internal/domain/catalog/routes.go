package catalog

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	photographers := r.Group("/photographers")
	{
		photographers.GET("", h.ListPhotographers)
		photographers.GET("/:id", h.GetPhotographer)
		photographers.GET("/:id/services", h.ListServices)
	}

	r.GET("/locations", h.ListLocations)
	r.GET("/discount-codes/:code", h.CheckDiscount)
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/services", h.CreateService)
}
