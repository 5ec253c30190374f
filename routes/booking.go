package routes

import (
	"hobbyist/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the endpoints for the booking wizard.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.Use(hb.Auth)
		bookingGroup.POST("/session", hb.InitiateSession)
		bookingGroup.GET("/session/:id", hb.GetSession)
		bookingGroup.DELETE("/session/:id", hb.CancelSession)
		bookingGroup.GET("/session/:id/events", hb.SessionEvents)

		bookingGroup.GET("/session/:id/timeslots", hb.ListTimeSlots)
		bookingGroup.PUT("/session/:id/timeslot", hb.SelectTimeSlot)
		bookingGroup.PUT("/session/:id/participants", hb.UpdateParticipants)
		bookingGroup.PUT("/session/:id/participants/:index", hb.SetParticipantName)
		bookingGroup.PUT("/session/:id/details", hb.UpdateDetails)
		bookingGroup.POST("/session/:id/equipment/:equipmentId", hb.ToggleEquipment)
		bookingGroup.POST("/session/:id/coupon", hb.ApplyCoupon)
		bookingGroup.DELETE("/session/:id/coupon", hb.RemoveCoupon)
		bookingGroup.PUT("/session/:id/payment-method", hb.SelectPaymentMethod)
		bookingGroup.POST("/session/:id/credits", hb.ToggleCredits)
		bookingGroup.PUT("/session/:id/terms", hb.AcceptTerms)

		bookingGroup.POST("/session/:id/advance", hb.Advance)
		bookingGroup.POST("/session/:id/retreat", hb.Retreat)

		bookingGroup.GET("/confirmation/:code", hb.GetBookingByCode)
	}
}
