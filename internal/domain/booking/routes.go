package booking

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/mine", h.GetMyBookings)
		bookings.GET("/:code", h.GetByCode)
		bookings.PATCH("/:code/status", h.UpdateStatus)
		bookings.PATCH("/:code/payment-status", h.UpdatePaymentStatus)
	}
}
