package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hobbyist/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingSessionService implements BookingSessionService on top of a SessionStore.
// Every write takes the session lock, loads the session, applies one change and saves it
// back before releasing the lock; callers only ever receive copies.
type DefaultBookingSessionService struct {
	Classes  ClassCatalog
	Coupons  CouponCatalog
	Credits  CreditLedger
	Sessions SessionStore
	Notifier SessionNotifier
	Wizard   *WizardStateMachine
	Logger   *zap.Logger

	now func() time.Time
}

func NewBookingSessionService(
	classes ClassCatalog,
	coupons CouponCatalog,
	credits CreditLedger,
	sessions SessionStore,
	notifier SessionNotifier,
	wizard *WizardStateMachine,
	logger *zap.Logger,
) *DefaultBookingSessionService {
	svc := &DefaultBookingSessionService{
		Classes:  classes,
		Coupons:  coupons,
		Credits:  credits,
		Sessions: sessions,
		Notifier: notifier,
		Wizard:   wizard,
		Logger:   logger,
		now:      time.Now,
	}
	if wizard != nil && wizard.Sequencer != nil {
		wizard.Sequencer.SetProgressHook(svc.saveProgress)
	}
	return svc
}

// InitiateSession creates a new booking session for a class.
func (s *DefaultBookingSessionService) InitiateSession(ctx context.Context, userID, classID string) (*models.BookingSession, error) {
	if userID == "" || classID == "" {
		return nil, fmt.Errorf("%w: user and class are required", ErrInvalidInput)
	}

	class, err := s.Classes.GetClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to load class: %w", err)
	}
	if class == nil {
		return nil, ErrClassNotFound
	}

	session := models.NewBookingSession(uuid.New().String(), userID, *class, s.now())
	RecalculatePricing(session)

	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}
	s.Logger.Info("booking session initiated", zap.String("sessionID", session.ID), zap.String("classID", classID))
	return session.Clone(), nil
}

func (s *DefaultBookingSessionService) GetSession(ctx context.Context, sessionID, userID string) (*models.BookingSession, error) {
	session, err := s.load(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// CancelSession discards the session. A session whose commit or edit is running cannot be cancelled.
func (s *DefaultBookingSessionService) CancelSession(ctx context.Context, sessionID, userID string) error {
	token, err := s.lock(ctx, sessionID)
	if err != nil {
		return err
	}
	if token == "" {
		return ErrSessionLocked
	}
	defer s.unlock(ctx, sessionID, token)

	session, err := s.load(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if session.IsProcessing {
		return ErrSessionLocked
	}
	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete booking session: %w", err)
	}
	s.Logger.Info("booking session cancelled", zap.String("sessionID", sessionID))
	return nil
}

func (s *DefaultBookingSessionService) ListTimeSlots(ctx context.Context, sessionID, userID string, date time.Time) ([]models.TimeSlot, error) {
	session, err := s.load(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	slots, err := s.Classes.ListTimeSlots(ctx, session.Class.ID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list time slots: %w", err)
	}
	return slots, nil
}

func (s *DefaultBookingSessionService) SelectTimeSlot(ctx context.Context, sessionID, userID, slotID string) (*models.BookingSession, error) {
	return s.mutate(ctx, sessionID, userID, func(session *models.BookingSession) error {
		slot, err := s.Classes.GetTimeSlot(ctx, session.Class.ID, slotID)
		if err != nil {
			return fmt.Errorf("failed to load time slot: %w", err)
		}
		if slot == nil {
			return ErrTimeSlotNotFound
		}
		selectTimeSlot(session, *slot)
		return nil
	})
}

func (s *DefaultBookingSessionService) UpdateParticipantCount(ctx context.Context, sessionID, userID string, count int) (*models.BookingSession, error) {
	return s.mutate(ctx, sessionID, userID, func(session *models.BookingSession) error {
		return setParticipantCount(session, count)
	})
}

func (s *DefaultBookingSessionService) SetParticipantName(ctx context.Context, sessionID, userID string, index int, name string) (*models.BookingSession, error) {
	return s.mutate(ctx, sessionID, userID, func(session *models.BookingSession) error {
		return setParticipantName(session, index, name)
	})
}

// ParticipantDetails carries the optional fields of the participant step. Nil fields are left unchanged.
type ParticipantDetails struct {
	EmergencyContact *models.EmergencyContact
	SpecialRequests  *string
	ExperienceLevel  *models.ExperienceLevel
}

func (s *DefaultBookingSessionService) UpdateDetails(ctx context.Context, sessionID, userID string, details ParticipantDetails) (*models.BookingSession, error) {
	if details.ExperienceLevel != nil && !details.ExperienceLevel.Valid() {
		return nil, fmt.Errorf("%w: unknown experience level %q", ErrInvalidInput, *details.ExperienceLevel)
	}
	return s.mutate(ctx, sessionID, userID, func(session *models.BookingSession) error {
		if details.EmergencyContact != nil {
			session.EmergencyContact = models.EmergencyContact{
				Name:  strings.TrimSpace(details.EmergencyContact.Name),
				Phone: strings.TrimSpace(details.EmergencyContact.Phone),
			}
		}
		if details.SpecialRequests != nil {
			session.SpecialRequests = strings.TrimSpace(*details.SpecialRequests)
		}
		if details.ExperienceLevel != nil {
			session.ExperienceLevel = *details.ExperienceLevel
		}
		return nil
	})
}

func (s *DefaultBookingSessionService) ToggleEquipment(ctx context.Context, sessionID, userID, equipmentID string) (*models.BookingSession, error) {
	return s.mutate(ctx, sessionID, userID, func(session *models.BookingSession) error {
		item, ok := session.Class.FindEquipment(equipmentID)
		if !ok {
			return ErrEquipmentNotFound
		}
		toggleEquipment(session, item)
		return nil
	})
}

// ApplyCoupon validates and applies a coupon. An unknown code is not an error for the
// caller: the returned session carries the message and keeps its previous coupon.
func (s *DefaultBookingSessionService) ApplyCoupon(ctx context.Context, sessionID, userID, code string) (*models.BookingSession, error) {
	return s.mutate(ctx, sessionID, userID, func(session *models.BookingSession) error {
		err := applyCoupon(ctx, s.Coupons, session, code)
		if errors.Is(err, ErrInvalidCoupon) {
			s.Logger.Info("coupon rejected", zap.String("sessionID", sessionID), zap.String("code", code))
			return nil
		}
		return err
	})
}

func (s *DefaultBookingSessionService) RemoveCoupon(ctx context.Context, sessionID, userID string) (*models.BookingSession, error) {
	return s.mutate(ctx, sessionID, userID, func(session *models.BookingSession) error {
		removeCoupon(session)
		return nil
	})
}

func (s *DefaultBookingSessionService) SelectPaymentMethod(ctx context.Context, sessionID, userID string, method models.PaymentMethod) (*models.BookingSession, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, method)
	}
	return s.mutate(ctx, sessionID, userID, func(session *models.BookingSession) error {
		selectPaymentMethod(session, method)
		return nil
	})
}

func (s *DefaultBookingSessionService) ToggleCredits(ctx context.Context, sessionID, userID string) (*models.BookingSession, error) {
	return s.mutate(ctx, sessionID, userID, func(session *models.BookingSession) error {
		return toggleCredits(ctx, s.Credits, session)
	})
}

func (s *DefaultBookingSessionService) SetTermsAccepted(ctx context.Context, sessionID, userID string, accepted bool) (*models.BookingSession, error) {
	return s.mutate(ctx, sessionID, userID, func(session *models.BookingSession) error {
		session.AgreedToTerms = accepted
		return nil
	})
}

// Advance moves the wizard forward. From the review step it runs the commit sequence
// while holding the session lock. If another commit holds the lock, or the session sits
// on the review step while an edit holds it, the call returns the current snapshot unchanged.
func (s *DefaultBookingSessionService) Advance(ctx context.Context, sessionID, userID string) (*models.BookingSession, error) {
	token, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		session, err := s.load(ctx, sessionID, userID)
		if err != nil {
			return nil, err
		}
		if session.IsProcessing || session.CurrentStep == models.StepReviewBooking {
			s.Logger.Info("session busy, advance ignored", zap.String("sessionID", sessionID))
			return session.Clone(), nil
		}
		return nil, ErrSessionLocked
	}
	defer s.unlock(ctx, sessionID, token)

	session, err := s.load(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	commitErr := s.Wizard.Advance(ctx, session)
	if err := s.persist(context.WithoutCancel(ctx), session); err != nil {
		s.Logger.Error("failed to save session after advance", zap.String("sessionID", sessionID), zap.Error(err))
		return nil, err
	}
	if commitErr != nil {
		return session.Clone(), commitErr
	}
	return session.Clone(), nil
}

func (s *DefaultBookingSessionService) Retreat(ctx context.Context, sessionID, userID string) (*models.BookingSession, error) {
	token, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		session, err := s.load(ctx, sessionID, userID)
		if err != nil {
			return nil, err
		}
		if session.IsProcessing {
			return session.Clone(), nil
		}
		return nil, ErrSessionLocked
	}
	defer s.unlock(ctx, sessionID, token)

	session, err := s.load(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	s.Wizard.Retreat(session)
	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// mutate applies fn to a session that is still editable and saves the result. It fails
// with ErrSessionLocked while a commit or another edit holds the session.
func (s *DefaultBookingSessionService) mutate(ctx context.Context, sessionID, userID string, fn func(*models.BookingSession) error) (*models.BookingSession, error) {
	token, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrSessionLocked
	}
	defer s.unlock(ctx, sessionID, token)

	session, err := s.load(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !s.Wizard.Mutable(session) {
		return nil, ErrSessionLocked
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	RecalculatePricing(session)
	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// lock takes the session lock. An empty token means another writer holds it.
func (s *DefaultBookingSessionService) lock(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrSessionNotFound
	}
	token, acquired, err := s.Sessions.AcquireSessionLock(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to lock booking session: %w", err)
	}
	if !acquired {
		return "", nil
	}
	return token, nil
}

func (s *DefaultBookingSessionService) unlock(ctx context.Context, sessionID, token string) {
	if err := s.Sessions.ReleaseSessionLock(context.WithoutCancel(ctx), sessionID, token); err != nil {
		s.Logger.Warn("failed to release session lock", zap.String("sessionID", sessionID), zap.Error(err))
	}
}

func (s *DefaultBookingSessionService) load(ctx context.Context, sessionID, userID string) (*models.BookingSession, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionForbidden
	}
	return session, nil
}

func (s *DefaultBookingSessionService) persist(ctx context.Context, session *models.BookingSession) error {
	session.UpdatedAt = s.now()
	if err := s.Sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to store booking session: %w", err)
	}
	s.notify(ctx, session)
	return nil
}

func (s *DefaultBookingSessionService) notify(ctx context.Context, session *models.BookingSession) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SessionChanged(ctx, session.Clone()); err != nil {
		s.Logger.Warn("session change notification failed", zap.String("sessionID", session.ID), zap.Error(err))
	}
}

// saveProgress keeps the stored session in step with a running commit.
func (s *DefaultBookingSessionService) saveProgress(ctx context.Context, session *models.BookingSession) {
	if err := s.persist(ctx, session); err != nil {
		s.Logger.Warn("failed to save commit progress", zap.String("sessionID", session.ID), zap.Error(err))
	}
}
