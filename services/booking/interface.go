package booking

import (
	"context"
	"time"

	"hobbyist/models"
)

// BookingSessionService defines the interface for driving a stateful booking session.
type BookingSessionService interface {
	InitiateSession(ctx context.Context, userID, classID string) (*models.BookingSession, error)
	GetSession(ctx context.Context, sessionID, userID string) (*models.BookingSession, error)
	CancelSession(ctx context.Context, sessionID, userID string) error
	ListTimeSlots(ctx context.Context, sessionID, userID string, date time.Time) ([]models.TimeSlot, error)

	SelectTimeSlot(ctx context.Context, sessionID, userID, slotID string) (*models.BookingSession, error)
	UpdateParticipantCount(ctx context.Context, sessionID, userID string, count int) (*models.BookingSession, error)
	SetParticipantName(ctx context.Context, sessionID, userID string, index int, name string) (*models.BookingSession, error)
	UpdateDetails(ctx context.Context, sessionID, userID string, details ParticipantDetails) (*models.BookingSession, error)
	ToggleEquipment(ctx context.Context, sessionID, userID, equipmentID string) (*models.BookingSession, error)
	ApplyCoupon(ctx context.Context, sessionID, userID, code string) (*models.BookingSession, error)
	RemoveCoupon(ctx context.Context, sessionID, userID string) (*models.BookingSession, error)
	SelectPaymentMethod(ctx context.Context, sessionID, userID string, method models.PaymentMethod) (*models.BookingSession, error)
	ToggleCredits(ctx context.Context, sessionID, userID string) (*models.BookingSession, error)
	SetTermsAccepted(ctx context.Context, sessionID, userID string, accepted bool) (*models.BookingSession, error)

	Advance(ctx context.Context, sessionID, userID string) (*models.BookingSession, error)
	Retreat(ctx context.Context, sessionID, userID string) (*models.BookingSession, error)
}

// PaymentGateway is the card/wallet payment provider.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount float64, classID string, participantCount int) (*models.PaymentIntent, error)
	// PresentPaymentUI blocks until the user completes or abandons the payment interaction.
	PresentPaymentUI(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentResult, error)
	ProcessCreditOnlyPayment(ctx context.Context, amount float64, classID string, participantCount int) (*models.PaymentResult, error)
	ConfirmPayment(ctx context.Context, reference string) error
}

// CreditLedger tracks a user's spendable credits. It is shared across sessions
// and must serialize concurrent deductions for the same user.
type CreditLedger interface {
	AvailableCredits(ctx context.Context, userID string) (int, error)
	UseCredits(ctx context.Context, userID string, amount int, reason string) (bool, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingRecord, error)
}

// CouponCatalog validates promotional codes. A nil coupon with a nil error means the code is unknown.
type CouponCatalog interface {
	Validate(ctx context.Context, code string) (*models.CouponCode, error)
}

type ClassCatalog interface {
	GetClass(ctx context.Context, classID string) (*models.ClassItem, error)
	GetTimeSlot(ctx context.Context, classID, slotID string) (*models.TimeSlot, error)
	ListTimeSlots(ctx context.Context, classID string, date time.Time) ([]models.TimeSlot, error)
}

// SessionStore persists session snapshots between requests and owns the cross-process
// session lock. Every read-modify-write of a stored session runs under that lock.
type SessionStore interface {
	Save(ctx context.Context, session *models.BookingSession) error
	Get(ctx context.Context, sessionID string) (*models.BookingSession, error)
	Delete(ctx context.Context, sessionID string) error
	// AcquireSessionLock returns an owner token, or acquired=false while another writer holds the lock.
	AcquireSessionLock(ctx context.Context, sessionID string) (token string, acquired bool, err error)
	// ReleaseSessionLock frees the lock only while token still owns it.
	ReleaseSessionLock(ctx context.Context, sessionID, token string) error
}

// SessionNotifier pushes session snapshots to whoever renders them.
type SessionNotifier interface {
	SessionChanged(ctx context.Context, session *models.BookingSession) error
}

type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, evt models.BookingConfirmedEvent) error
}
