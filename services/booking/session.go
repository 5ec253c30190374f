package booking

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"hobbyist/models"
)

// The setters below are the only code that edits a session's booking parameters.
// Each one leaves the pricing recomputed.

func selectTimeSlot(s *models.BookingSession, slot models.TimeSlot) {
	date := slot.Date
	s.SelectedDate = &date
	s.SelectedTimeSlot = &slot
	RecalculatePricing(s)
}

// MaxParticipants is the most people one booking may cover.
const MaxParticipants = 10

// participantLimit is the largest count the session may book: MaxParticipants, lowered
// to the selected slot's remaining spots.
func participantLimit(s *models.BookingSession) int {
	if s.SelectedTimeSlot != nil {
		return min(MaxParticipants, s.SelectedTimeSlot.SpotsRemaining)
	}
	return MaxParticipants
}

// setParticipantCount clamps count to at least one, rejects counts above the
// participant limit and resizes the name list to match.
func setParticipantCount(s *models.BookingSession, count int) error {
	if count < 1 {
		count = 1
	}
	if limit := participantLimit(s); count > limit {
		return fmt.Errorf("%w: only %d spots can be booked for this class", ErrInvalidInput, max(limit, 0))
	}
	s.ParticipantCount = count
	for len(s.ParticipantNames) < count {
		s.ParticipantNames = append(s.ParticipantNames, "")
	}
	s.ParticipantNames = s.ParticipantNames[:count]
	RecalculatePricing(s)
	return nil
}

func setParticipantName(s *models.BookingSession, index int, name string) error {
	if index < 0 || index >= len(s.ParticipantNames) {
		return fmt.Errorf("%w: participant index %d out of range", ErrInvalidInput, index)
	}
	s.ParticipantNames[index] = strings.TrimSpace(name)
	return nil
}

// toggleEquipment adds or removes item. The selection is kept ordered by id so
// equal selections always sum in the same order.
func toggleEquipment(s *models.BookingSession, item models.EquipmentItem) {
	kept := s.SelectedEquipment[:0:0]
	removed := false
	for _, e := range s.SelectedEquipment {
		if e.ID == item.ID {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		kept = append(kept, item)
		sort.Slice(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })
	}
	s.SelectedEquipment = kept
	RecalculatePricing(s)
}

// applyCoupon validates code against the catalog. An unknown code records a message
// on the session and leaves the applied coupon as it was.
func applyCoupon(ctx context.Context, catalog CouponCatalog, s *models.BookingSession, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		s.SetError(UserMessage(ErrInvalidCoupon))
		return ErrInvalidCoupon
	}
	coupon, err := catalog.Validate(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to validate coupon: %w", err)
	}
	if coupon == nil || coupon.Percentage < 0 || coupon.Percentage > 100 {
		s.SetError(UserMessage(ErrInvalidCoupon))
		return ErrInvalidCoupon
	}
	s.AppliedCoupon = coupon
	s.ClearError()
	RecalculatePricing(s)
	return nil
}

func removeCoupon(s *models.BookingSession) {
	s.AppliedCoupon = nil
	RecalculatePricing(s)
}

func selectPaymentMethod(s *models.BookingSession, method models.PaymentMethod) {
	s.SelectedPaymentMethod = &method
	RecalculatePricing(s)
}

// toggleCredits flips credit usage. Switching on reserves as many whole credits as the
// balance and the current total allow; switching off releases them.
func toggleCredits(ctx context.Context, ledger CreditLedger, s *models.BookingSession) error {
	if s.UseCredits {
		s.UseCredits = false
		s.CreditsToUse = 0
		RecalculatePricing(s)
		return nil
	}

	available, err := ledger.AvailableCredits(ctx, s.UserID)
	if err != nil {
		return fmt.Errorf("failed to read credit balance: %w", err)
	}

	// Fee and total first, so the reservation is sized against the final total.
	RecalculatePricing(s)
	s.UseCredits = true
	s.CreditsToUse = max(0, min(available, int(math.Floor(s.Pricing.TotalAmount))))
	RecalculatePricing(s)
	return nil
}
