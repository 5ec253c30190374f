package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the endpoint handlers registered by the router.
type HandlerBundle struct {
	// Auth middleware guarding the booking API.
	Auth gin.HandlerFunc

	// Session lifecycle
	InitiateSession gin.HandlerFunc
	GetSession      gin.HandlerFunc
	CancelSession   gin.HandlerFunc
	SessionEvents   gin.HandlerFunc

	// Wizard inputs
	ListTimeSlots       gin.HandlerFunc
	SelectTimeSlot      gin.HandlerFunc
	UpdateParticipants  gin.HandlerFunc
	SetParticipantName  gin.HandlerFunc
	UpdateDetails       gin.HandlerFunc
	ToggleEquipment     gin.HandlerFunc
	ApplyCoupon         gin.HandlerFunc
	RemoveCoupon        gin.HandlerFunc
	SelectPaymentMethod gin.HandlerFunc
	ToggleCredits       gin.HandlerFunc
	AcceptTerms         gin.HandlerFunc

	// Navigation
	Advance gin.HandlerFunc
	Retreat gin.HandlerFunc

	// Bookings
	GetBookingByCode gin.HandlerFunc
}

// NewHandlerBundle exposes every BookingHandler endpoint.
func NewHandlerBundle(h *BookingHandler, auth gin.HandlerFunc) *HandlerBundle {
	return &HandlerBundle{
		Auth:                auth,
		InitiateSession:     h.InitiateSession,
		GetSession:          h.GetSession,
		CancelSession:       h.CancelSession,
		SessionEvents:       h.SessionEvents,
		ListTimeSlots:       h.ListTimeSlots,
		SelectTimeSlot:      h.SelectTimeSlot,
		UpdateParticipants:  h.UpdateParticipants,
		SetParticipantName:  h.SetParticipantName,
		UpdateDetails:       h.UpdateDetails,
		ToggleEquipment:     h.ToggleEquipment,
		ApplyCoupon:         h.ApplyCoupon,
		RemoveCoupon:        h.RemoveCoupon,
		SelectPaymentMethod: h.SelectPaymentMethod,
		ToggleCredits:       h.ToggleCredits,
		AcceptTerms:         h.AcceptTerms,
		Advance:             h.Advance,
		Retreat:             h.Retreat,
		GetBookingByCode:    h.GetBookingByCode,
	}
}
