package payment

import "github.com/gin-gonic/gin"

// RegisterCallbackRoutes mounts the unauthenticated gateway callbacks.
func (h *Handler) RegisterCallbackRoutes(r *gin.RouterGroup, mw ...gin.HandlerFunc) {
	momo := r.Group("/payments/momo", mw...)
	{
		momo.GET("/return", h.Return)
		momo.POST("/ipn", h.IPN)
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("/initiate", h.Initiate)
		payments.GET("/attempts/:order_id", h.GetAttempt)
		payments.GET("/bookings/:code", h.ListPayments)
	}
}
