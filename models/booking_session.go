package models

import "time"

// WizardStep is one stage of the linear booking flow.
type WizardStep string

const (
	StepSelectDateTime     WizardStep = "selectDateTime"
	StepParticipantDetails WizardStep = "participantDetails"
	StepPaymentMethod      WizardStep = "paymentMethod"
	StepReviewBooking      WizardStep = "reviewBooking"
	StepConfirmation       WizardStep = "confirmation"
)

// WizardSteps lists the steps in the order the wizard walks them.
var WizardSteps = []WizardStep{
	StepSelectDateTime,
	StepParticipantDetails,
	StepPaymentMethod,
	StepReviewBooking,
	StepConfirmation,
}

// PaymentMethod is the way the remaining amount of a booking gets paid.
type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodApplePay PaymentMethod = "apple_pay"
	PaymentMethodCredits  PaymentMethod = "credits"
)

// Valid reports whether m is one of the supported payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodApplePay, PaymentMethodCredits:
		return true
	}
	return false
}

// ExperienceLevel is the self-declared level of the participants.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

func (l ExperienceLevel) Valid() bool {
	switch l {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	}
	return false
}

type EmergencyContact struct {
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone" json:"phone"`
}

// PricingBreakdown holds the unrounded monetary figures derived from a session.
type PricingBreakdown struct {
	Subtotal         float64 `json:"subtotal"`
	DiscountAmount   float64 `json:"discountAmount"`
	ProcessingFee    float64 `json:"processingFee"`
	TotalAmount      float64 `json:"totalAmount"`
	RemainingPayment float64 `json:"remainingPayment"`
}

// BookingSession is the state of one user's in-progress class booking.
// Pricing is derived and must only be written by the pricing engine.
type BookingSession struct {
	ID     string    `json:"id"`
	UserID string    `json:"userId"`
	Class  ClassItem `json:"class"`

	SelectedDate     *time.Time `json:"selectedDate,omitempty"`
	SelectedTimeSlot *TimeSlot  `json:"selectedTimeSlot,omitempty"`

	ParticipantCount int              `json:"participantCount"`
	ParticipantNames []string         `json:"participantNames"`
	SpecialRequests  string           `json:"specialRequests,omitempty"`
	ExperienceLevel  ExperienceLevel  `json:"experienceLevel"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`

	SelectedEquipment []EquipmentItem `json:"selectedEquipment"`

	AppliedCoupon         *CouponCode    `json:"appliedCoupon,omitempty"`
	SelectedPaymentMethod *PaymentMethod `json:"selectedPaymentMethod,omitempty"`
	UseCredits            bool           `json:"useCredits"`
	CreditsToUse          int            `json:"creditsToUse"`

	CurrentStep       WizardStep `json:"currentStep"`
	AgreedToTerms     bool       `json:"agreedToTerms"`
	IsProcessing      bool       `json:"isProcessing"`
	ProcessingMessage string     `json:"processingMessage,omitempty"`

	Pricing PricingBreakdown `json:"pricing"`

	ErrorMessage     *string `json:"errorMessage,omitempty"`
	ConfirmationCode string  `json:"confirmationCode,omitempty"`
	BookingID        string  `json:"bookingId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBookingSession returns a session positioned on the first wizard step.
func NewBookingSession(id, userID string, class ClassItem, now time.Time) *BookingSession {
	return &BookingSession{
		ID:                id,
		UserID:            userID,
		Class:             class,
		ParticipantCount:  1,
		ParticipantNames:  []string{""},
		ExperienceLevel:   ExperienceBeginner,
		SelectedEquipment: []EquipmentItem{},
		CurrentStep:       StepSelectDateTime,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Clone returns a deep copy so callers can hand out snapshots without sharing slices or pointers.
func (s *BookingSession) Clone() *BookingSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Class = s.Class.Clone()
	c.ParticipantNames = append([]string(nil), s.ParticipantNames...)
	c.SelectedEquipment = append([]EquipmentItem(nil), s.SelectedEquipment...)
	if s.SelectedDate != nil {
		d := *s.SelectedDate
		c.SelectedDate = &d
	}
	if s.SelectedTimeSlot != nil {
		ts := *s.SelectedTimeSlot
		c.SelectedTimeSlot = &ts
	}
	if s.AppliedCoupon != nil {
		cp := *s.AppliedCoupon
		c.AppliedCoupon = &cp
	}
	if s.SelectedPaymentMethod != nil {
		m := *s.SelectedPaymentMethod
		c.SelectedPaymentMethod = &m
	}
	if s.ErrorMessage != nil {
		msg := *s.ErrorMessage
		c.ErrorMessage = &msg
	}
	return &c
}

// PaymentMethodIs reports whether the selected payment method equals m.
func (s *BookingSession) PaymentMethodIs(m PaymentMethod) bool {
	return s.SelectedPaymentMethod != nil && *s.SelectedPaymentMethod == m
}

// HasEquipment reports whether the equipment item with the given id is selected.
func (s *BookingSession) HasEquipment(id string) bool {
	for _, e := range s.SelectedEquipment {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (s *BookingSession) SetError(msg string) {
	s.ErrorMessage = &msg
}

func (s *BookingSession) ClearError() {
	s.ErrorMessage = nil
}
