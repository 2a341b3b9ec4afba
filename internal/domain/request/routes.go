package request

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	requests := r.Group("/requests")
	{
		requests.POST("", h.CreateRequest)
		requests.GET("/mine", h.ListMyRequests)
		requests.GET("/open", h.ListOpen)
		requests.GET("/:id", h.GetRequest)
		requests.POST("/:id/close", h.CloseRequest)
		requests.POST("/:id/offers", h.CreateOffer)
	}

	offers := r.Group("/offers")
	{
		offers.GET("/:id", h.GetOffer)
		offers.PATCH("/:id/status", h.ChangeOfferStatus)
	}
}
