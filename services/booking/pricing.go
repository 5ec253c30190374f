package booking

import (
	"math"

	"hobbyist/models"
)

// ProcessingFeeRate is charged on the discounted subtotal for every non-credit payment.
const ProcessingFeeRate = 0.03

// CalculatePricing computes the price breakdown for the session's current parameters.
// It reads only the session and never modifies it.
func CalculatePricing(s *models.BookingSession) models.PricingBreakdown {
	var p models.PricingBreakdown

	p.Subtotal = s.Class.BasePricePerPerson * float64(s.ParticipantCount)
	for _, e := range s.SelectedEquipment {
		p.Subtotal += e.Price
	}

	if s.AppliedCoupon != nil {
		p.DiscountAmount = p.Subtotal * float64(s.AppliedCoupon.Percentage) / 100
	}

	if !s.PaymentMethodIs(models.PaymentMethodCredits) {
		p.ProcessingFee = (p.Subtotal - p.DiscountAmount) * ProcessingFeeRate
	}

	p.TotalAmount = math.Max(0, p.Subtotal-p.DiscountAmount+p.ProcessingFee)

	if s.UseCredits {
		p.RemainingPayment = math.Max(0, p.TotalAmount-float64(s.CreditsToUse))
	} else {
		p.RemainingPayment = p.TotalAmount
	}
	return p
}

// RecalculatePricing refreshes the session's derived pricing. When credits are in use and the
// total has dropped below the credits reserved, the reservation shrinks to the whole-dollar total
// before remainingPayment is derived.
func RecalculatePricing(s *models.BookingSession) {
	s.Pricing = CalculatePricing(s)
	if s.UseCredits {
		if ceiling := int(math.Floor(s.Pricing.TotalAmount)); s.CreditsToUse > ceiling {
			s.CreditsToUse = ceiling
			s.Pricing = CalculatePricing(s)
		}
	}
}

// RoundCurrency rounds to two decimal places for display.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundedPricing returns the display form of a breakdown.
func RoundedPricing(p models.PricingBreakdown) models.PricingBreakdown {
	return models.PricingBreakdown{
		Subtotal:         RoundCurrency(p.Subtotal),
		DiscountAmount:   RoundCurrency(p.DiscountAmount),
		ProcessingFee:    RoundCurrency(p.ProcessingFee),
		TotalAmount:      RoundCurrency(p.TotalAmount),
		RemainingPayment: RoundCurrency(p.RemainingPayment),
	}
}

// toCents converts an amount to whole cents for comparisons and gateway calls.
func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}
