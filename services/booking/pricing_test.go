package booking

import (
	"context"
	"math"
	"testing"

	"hobbyist/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculatePricing_CouponWithCard(t *testing.T) {
	s := testSession()
	setParticipantCount(s, 2)
	selectPaymentMethod(s, models.PaymentMethodCard)
	if err := applyCoupon(context.Background(), fixtureCoupons(), s, "SAVE20"); err != nil {
		t.Fatalf("applyCoupon: %v", err)
	}

	got := RoundedPricing(s.Pricing)
	want := models.PricingBreakdown{
		Subtotal:         150.00,
		DiscountAmount:   30.00,
		ProcessingFee:    3.60,
		TotalAmount:      123.60,
		RemainingPayment: 123.60,
	}
	if got != want {
		t.Errorf("pricing = %+v, want %+v", got, want)
	}
}

func TestCalculatePricing_CreditsCoverTotal(t *testing.T) {
	s := testSession()
	s.Class.BasePricePerPerson = 50
	selectPaymentMethod(s, models.PaymentMethodCredits)

	ledger := &mockLedger{availableFunc: func(context.Context, string) (int, error) { return 80, nil }}
	if err := toggleCredits(context.Background(), ledger, s); err != nil {
		t.Fatalf("toggleCredits: %v", err)
	}

	if s.CreditsToUse != 50 {
		t.Errorf("creditsToUse = %d, want 50", s.CreditsToUse)
	}
	if s.Pricing.ProcessingFee != 0 {
		t.Errorf("processingFee = %v, want 0", s.Pricing.ProcessingFee)
	}
	if !almostEqual(s.Pricing.TotalAmount, 50) {
		t.Errorf("totalAmount = %v, want 50", s.Pricing.TotalAmount)
	}
	if s.Pricing.RemainingPayment != 0 {
		t.Errorf("remainingPayment = %v, want 0", s.Pricing.RemainingPayment)
	}
	if path := SelectPaymentPath(s); path != PaymentPathCreditOnly {
		t.Errorf("payment path = %s, want %s", path, PaymentPathCreditOnly)
	}
}

func TestCalculatePricing_Invariants(t *testing.T) {
	methods := []models.PaymentMethod{models.PaymentMethodCard, models.PaymentMethodApplePay, models.PaymentMethodCredits}
	coupons := []*models.CouponCode{nil, {Code: "FIRST10", Percentage: 10}, {Code: "ALL", Percentage: 100}}

	for _, method := range methods {
		for _, coupon := range coupons {
			for count := 1; count <= 3; count++ {
				for _, credits := range []int{0, 40, 500} {
					s := testSession()
					s.ParticipantCount = count
					s.SelectedPaymentMethod = methodPtr(method)
					s.AppliedCoupon = coupon
					s.SelectedEquipment = []models.EquipmentItem{{ID: "apron", Price: 5}}
					s.UseCredits = credits > 0
					s.CreditsToUse = credits

					p := CalculatePricing(s)
					if method == models.PaymentMethodCredits && p.ProcessingFee != 0 {
						t.Errorf("%s: fee = %v, want 0", method, p.ProcessingFee)
					}
					if want := math.Max(0, p.Subtotal-p.DiscountAmount+p.ProcessingFee); !almostEqual(p.TotalAmount, want) {
						t.Errorf("total = %v, want %v", p.TotalAmount, want)
					}
					wantRemaining := p.TotalAmount
					if s.UseCredits {
						wantRemaining = math.Max(0, p.TotalAmount-float64(credits))
					}
					if !almostEqual(p.RemainingPayment, wantRemaining) {
						t.Errorf("remaining = %v, want %v", p.RemainingPayment, wantRemaining)
					}
					if p.Subtotal < 0 || p.DiscountAmount < 0 || p.ProcessingFee < 0 || p.TotalAmount < 0 || p.RemainingPayment < 0 {
						t.Errorf("negative component in %+v", p)
					}
				}
			}
		}
	}
}

func TestCalculatePricing_Deterministic(t *testing.T) {
	s := testSession()
	setParticipantCount(s, 3)
	toggleEquipment(s, models.EquipmentItem{ID: "tools", Price: 12.5})
	toggleEquipment(s, models.EquipmentItem{ID: "apron", Price: 5})
	s.AppliedCoupon = &models.CouponCode{Code: "STUDENT15", Percentage: 15}

	first := CalculatePricing(s)
	for i := 0; i < 10; i++ {
		if got := CalculatePricing(s); got != first {
			t.Fatalf("run %d: %+v != %+v", i, got, first)
		}
	}

	// Same selection made in the other order prices identically.
	other := testSession()
	setParticipantCount(other, 3)
	toggleEquipment(other, models.EquipmentItem{ID: "apron", Price: 5})
	toggleEquipment(other, models.EquipmentItem{ID: "tools", Price: 12.5})
	other.AppliedCoupon = &models.CouponCode{Code: "STUDENT15", Percentage: 15}
	if got := CalculatePricing(other); got != first {
		t.Errorf("order-dependent pricing: %+v != %+v", got, first)
	}
}

func TestCalculatePricing_DoesNotMutate(t *testing.T) {
	s := testSession()
	s.UseCredits = true
	s.CreditsToUse = 1000
	before := s.Clone()
	CalculatePricing(s)
	if s.CreditsToUse != before.CreditsToUse || s.Pricing != before.Pricing {
		t.Errorf("CalculatePricing modified the session")
	}
}

func TestRecalculatePricing_ClampsCreditsToTotal(t *testing.T) {
	s := testSession()
	selectPaymentMethod(s, models.PaymentMethodCredits)
	setParticipantCount(s, 2)
	ledger := &mockLedger{availableFunc: func(context.Context, string) (int, error) { return 500, nil }}
	if err := toggleCredits(context.Background(), ledger, s); err != nil {
		t.Fatalf("toggleCredits: %v", err)
	}
	if s.CreditsToUse != 150 {
		t.Fatalf("creditsToUse = %d, want 150", s.CreditsToUse)
	}

	setParticipantCount(s, 1)
	if s.CreditsToUse != 75 {
		t.Errorf("creditsToUse after shrinking = %d, want 75", s.CreditsToUse)
	}
	if s.Pricing.RemainingPayment != 0 {
		t.Errorf("remainingPayment = %v, want 0", s.Pricing.RemainingPayment)
	}
}

func TestRoundCurrency(t *testing.T) {
	cases := map[float64]float64{
		3.6:      3.6,
		123.6049: 123.6,
		0.125:    0.13,
		2.675001: 2.68,
		0:        0,
	}
	for in, want := range cases {
		if got := RoundCurrency(in); !almostEqual(got, want) {
			t.Errorf("RoundCurrency(%v) = %v, want %v", in, got, want)
		}
	}
}
