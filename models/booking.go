package models

import "time"

// BookingRequest is the snapshot of a session handed to the booking store.
type BookingRequest struct {
	ClassID          string           `bson:"classId" json:"classId" validate:"required"`
	ClassName        string           `bson:"className,omitempty" json:"className,omitempty"`
	UserID           string           `bson:"userId" json:"userId" validate:"required"`
	TimeSlotID       string           `bson:"timeSlotId,omitempty" json:"timeSlotId,omitempty"`
	ClassStartDate   time.Time        `bson:"classStartDate" json:"classStartDate"`
	ParticipantCount int              `bson:"participantCount" json:"participantCount" validate:"min=1"`
	SpecialRequests  string           `bson:"specialRequests,omitempty" json:"specialRequests,omitempty"`
	PaymentID        string           `bson:"paymentId" json:"paymentId" validate:"required"`
	PaymentIntentID  string           `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	CouponID         string           `bson:"couponId,omitempty" json:"couponId,omitempty"`
	Subtotal         float64          `bson:"subtotal" json:"subtotal" validate:"gte=0"`
	TotalAmount      float64          `bson:"totalAmount" json:"totalAmount" validate:"gte=0"`
	PaymentMethod    PaymentMethod    `bson:"paymentMethod" json:"paymentMethod" validate:"required,oneof=card apple_pay credits"`
	CreditsUsed      int              `bson:"creditsUsed,omitempty" json:"creditsUsed,omitempty" validate:"gte=0"`
	DiscountApplied  float64          `bson:"discountApplied,omitempty" json:"discountApplied,omitempty" validate:"gte=0"`
	ProcessingFee    float64          `bson:"processingFee,omitempty" json:"processingFee,omitempty" validate:"gte=0"`
	ParticipantNames []string         `bson:"participantNames,omitempty" json:"participantNames,omitempty"`
	EmergencyContact EmergencyContact `bson:"emergencyContact" json:"emergencyContact"`
	EquipmentRental  []string         `bson:"equipmentRental,omitempty" json:"equipmentRental,omitempty"`
	ExperienceLevel  ExperienceLevel  `bson:"experienceLevel,omitempty" json:"experienceLevel,omitempty"`
}

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingRecord is a persisted booking. It only exists after a successful payment.
type BookingRecord struct {
	BookingRequest `bson:",inline"`

	ID               string        `bson:"id" json:"id"`
	ConfirmationCode string        `bson:"confirmationCode" json:"confirmationCode"`
	Status           BookingStatus `bson:"status" json:"status"`
	PaidWithCredits  bool          `bson:"paidWithCredits" json:"paidWithCredits"`
	CreatedAt        time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// BookingConfirmedEvent is published once a commit sequence completes.
type BookingConfirmedEvent struct {
	BookingID        string        `json:"bookingId"`
	SessionID        string        `json:"sessionId"`
	ConfirmationCode string        `json:"confirmationCode"`
	UserID           string        `json:"userId"`
	ClassID          string        `json:"classId"`
	TotalAmount      float64       `json:"totalAmount"`
	PaymentMethod    PaymentMethod `json:"paymentMethod"`
	CreditsUsed      int           `json:"creditsUsed,omitempty"`
	OccurredAt       time.Time     `json:"occurredAt"`
}
