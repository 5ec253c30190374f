package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"hobbyist/models"
	"hobbyist/services/booking"
	"hobbyist/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingLookup reads stored bookings.
type BookingLookup interface {
	GetByConfirmationCode(ctx context.Context, code string) (*models.BookingRecord, error)
}

// SessionSubscriber streams snapshots of one session.
type SessionSubscriber interface {
	Subscribe(ctx context.Context, sessionID string) (<-chan *models.BookingSession, error)
}

type BookingHandler struct {
	Service  booking.BookingSessionService
	Bookings BookingLookup
	Events   SessionSubscriber
	Logger   *zap.Logger
}

func NewBookingHandler(service booking.BookingSessionService, bookings BookingLookup, events SessionSubscriber, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		Service:  service,
		Bookings: bookings,
		Events:   events,
		Logger:   logger,
	}
}

// SessionView is the snapshot returned to the app after every call.
type SessionView struct {
	Session  *models.BookingSession  `json:"session"`
	Pricing  models.PricingBreakdown `json:"pricing"`
	Title    string                  `json:"stepTitle"`
	Progress float64                 `json:"stepProgress"`
}

func newSessionView(s *models.BookingSession) SessionView {
	return SessionView{
		Session:  s,
		Pricing:  booking.RoundedPricing(s.Pricing),
		Title:    booking.StepTitle(s.CurrentStep),
		Progress: booking.StepProgress(s.CurrentStep),
	}
}

func currentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(utils.UserIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, booking.ErrSessionNotFound),
		errors.Is(err, booking.ErrClassNotFound),
		errors.Is(err, booking.ErrTimeSlotNotFound),
		errors.Is(err, booking.ErrEquipmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrSessionForbidden):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrSessionLocked):
		return http.StatusConflict
	case errors.Is(err, booking.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrInvalidPayment):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// respond writes either the session view or a translated error.
func (h *BookingHandler) respond(c *gin.Context, session *models.BookingSession, err error) {
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			getLogger(c).Error("booking request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		body := gin.H{"error": booking.UserMessage(err)}
		if session != nil {
			body["view"] = newSessionView(session)
		}
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, newSessionView(session))
}

// withUser runs fn with the authenticated user and session id from the path.
func (h *BookingHandler) withUser(c *gin.Context, fn func(userID, sessionID string)) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	fn(userID, c.Param("id"))
}

// InitiateSession starts a booking session for a class.
func (h *BookingHandler) InitiateSession(c *gin.Context) {
	var req struct {
		ClassID string `json:"classId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	h.withUser(c, func(userID, _ string) {
		session, err := h.Service.InitiateSession(c.Request.Context(), userID, req.ClassID)
		if err != nil {
			h.respond(c, nil, err)
			return
		}
		c.JSON(http.StatusCreated, newSessionView(session))
	})
}

func (h *BookingHandler) GetSession(c *gin.Context) {
	h.withUser(c, func(userID, sessionID string) {
		session, err := h.Service.GetSession(c.Request.Context(), sessionID, userID)
		h.respond(c, session, err)
	})
}

func (h *BookingHandler) CancelSession(c *gin.Context) {
	h.withUser(c, func(userID, sessionID string) {
		if err := h.Service.CancelSession(c.Request.Context(), sessionID, userID); err != nil {
			h.respond(c, nil, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Booking session cancelled"})
	})
}

// ListTimeSlots returns the class's slots on ?date=YYYY-MM-DD.
func (h *BookingHandler) ListTimeSlots(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid date", "date must be formatted as YYYY-MM-DD")
		return
	}
	h.withUser(c, func(userID, sessionID string) {
		slots, err := h.Service.ListTimeSlots(c.Request.Context(), sessionID, userID, date)
		if err != nil {
			h.respond(c, nil, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"timeslots": slots})
	})
}

func (h *BookingHandler) SelectTimeSlot(c *gin.Context) {
	var req struct {
		TimeSlotID string `json:"timeSlotId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	h.withUser(c, func(userID, sessionID string) {
		session, err := h.Service.SelectTimeSlot(c.Request.Context(), sessionID, userID, req.TimeSlotID)
		h.respond(c, session, err)
	})
}

func (h *BookingHandler) UpdateParticipants(c *gin.Context) {
	var req struct {
		Count int `json:"count" binding:"required,min=1,max=10"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	h.withUser(c, func(userID, sessionID string) {
		session, err := h.Service.UpdateParticipantCount(c.Request.Context(), sessionID, userID, req.Count)
		h.respond(c, session, err)
	})
}

func (h *BookingHandler) SetParticipantName(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid participant index", err.Error())
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	h.withUser(c, func(userID, sessionID string) {
		session, err := h.Service.SetParticipantName(c.Request.Context(), sessionID, userID, index, req.Name)
		h.respond(c, session, err)
	})
}

func (h *BookingHandler) UpdateDetails(c *gin.Context) {
	var req struct {
		EmergencyContact *models.EmergencyContact `json:"emergencyContact"`
		SpecialRequests  *string                  `json:"specialRequests"`
		ExperienceLevel  *models.ExperienceLevel  `json:"experienceLevel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	details := booking.ParticipantDetails{
		EmergencyContact: req.EmergencyContact,
		SpecialRequests:  req.SpecialRequests,
		ExperienceLevel:  req.ExperienceLevel,
	}
	h.withUser(c, func(userID, sessionID string) {
		session, err := h.Service.UpdateDetails(c.Request.Context(), sessionID, userID, details)
		h.respond(c, session, err)
	})
}

func (h *BookingHandler) ToggleEquipment(c *gin.Context) {
	h.withUser(c, func(userID, sessionID string) {
		session, err := h.Service.ToggleEquipment(c.Request.Context(), sessionID, userID, c.Param("equipmentId"))
		h.respond(c, session, err)
	})
}

// ApplyCoupon always answers 200 for a well-formed request; a rejected code shows up
// as the session's errorMessage.
func (h *BookingHandler) ApplyCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	h.withUser(c, func(userID, sessionID string) {
		session, err := h.Service.ApplyCoupon(c.Request.Context(), sessionID, userID, req.Code)
		h.respond(c, session, err)
	})
}

func (h *BookingHandler) RemoveCoupon(c *gin.Context) {
	h.withUser(c, func(userID, sessionID string) {
		session, err := h.Service.RemoveCoupon(c.Request.Context(), sessionID, userID)
		h.respond(c, session, err)
	})
}

func (h *BookingHandler) SelectPaymentMethod(c *gin.Context) {
	var req struct {
		Method models.PaymentMethod `json:"method" binding:"required,oneof=card apple_pay credits"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	h.withUser(c, func(userID, sessionID string) {
		session, err := h.Service.SelectPaymentMethod(c.Request.Context(), sessionID, userID, req.Method)
		h.respond(c, session, err)
	})
}

func (h *BookingHandler) ToggleCredits(c *gin.Context) {
	h.withUser(c, func(userID, sessionID string) {
		session, err := h.Service.ToggleCredits(c.Request.Context(), sessionID, userID)
		h.respond(c, session, err)
	})
}

func (h *BookingHandler) AcceptTerms(c *gin.Context) {
	var req struct {
		Accepted *bool `json:"accepted" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	h.withUser(c, func(userID, sessionID string) {
		session, err := h.Service.SetTermsAccepted(c.Request.Context(), sessionID, userID, *req.Accepted)
		h.respond(c, session, err)
	})
}

// Advance moves to the next step. On the review step this runs the whole commit and
// only returns once it has finished.
func (h *BookingHandler) Advance(c *gin.Context) {
	h.withUser(c, func(userID, sessionID string) {
		session, err := h.Service.Advance(c.Request.Context(), sessionID, userID)
		if err == nil && session.CurrentStep == models.StepConfirmation && session.ConfirmationCode != "" {
			getLogger(c).Info("booking confirmed",
				zap.String("sessionID", sessionID),
				zap.String("confirmationCode", session.ConfirmationCode))
		}
		h.respond(c, session, err)
	})
}

func (h *BookingHandler) Retreat(c *gin.Context) {
	h.withUser(c, func(userID, sessionID string) {
		session, err := h.Service.Retreat(c.Request.Context(), sessionID, userID)
		h.respond(c, session, err)
	})
}

// SessionEvents streams session snapshots as server-sent events until the client leaves.
func (h *BookingHandler) SessionEvents(c *gin.Context) {
	h.withUser(c, func(userID, sessionID string) {
		ctx := c.Request.Context()
		session, err := h.Service.GetSession(ctx, sessionID, userID)
		if err != nil {
			h.respond(c, nil, err)
			return
		}
		updates, err := h.Events.Subscribe(ctx, sessionID)
		if err != nil {
			getLogger(c).Error("failed to subscribe to session events", zap.String("sessionID", sessionID), zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Failed to subscribe to session events", "")
			return
		}

		c.SSEvent("session", newSessionView(session))
		c.Stream(func(w io.Writer) bool {
			select {
			case <-ctx.Done():
				return false
			case s, ok := <-updates:
				if !ok {
					return false
				}
				c.SSEvent("session", newSessionView(s))
				return true
			}
		})
	})
}

// GetBookingByCode returns one of the caller's bookings by confirmation code.
func (h *BookingHandler) GetBookingByCode(c *gin.Context) {
	code := c.Param("code")
	if !booking.ConfirmationCodePattern.MatchString(code) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid confirmation code", "")
		return
	}
	h.withUser(c, func(userID, _ string) {
		record, err := h.Bookings.GetByConfirmationCode(c.Request.Context(), code)
		if err != nil {
			getLogger(c).Error("failed to look up booking", zap.String("code", code), zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Failed to look up booking", "")
			return
		}
		if record == nil || record.UserID != userID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"booking": record})
	})
}
