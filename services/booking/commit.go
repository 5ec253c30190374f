package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hobbyist/models"

	"go.uber.org/zap"
)

// ProgressFunc observes the session between commit steps.
type ProgressFunc func(ctx context.Context, s *models.BookingSession)

// BookingCommitSequencer finalizes a reviewed session: payment, booking persistence,
// credit settlement and payment confirmation, in that order. Completed steps are never
// undone when a later step fails.
type BookingCommitSequencer struct {
	payments  *PaymentOrchestrator
	gateway   PaymentGateway
	store     BookingStore
	credits   CreditLedger
	publisher EventPublisher
	logger    *zap.Logger

	Timeout  time.Duration
	progress ProgressFunc
	now      func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewBookingCommitSequencer(
	payments *PaymentOrchestrator,
	gateway PaymentGateway,
	store BookingStore,
	credits CreditLedger,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingCommitSequencer {
	return &BookingCommitSequencer{
		payments:  payments,
		gateway:   gateway,
		store:     store,
		credits:   credits,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		inflight:  make(map[string]struct{}),
	}
}

// SetProgressHook registers fn to be called each time the in-flight session changes.
func (c *BookingCommitSequencer) SetProgressHook(fn ProgressFunc) {
	c.progress = fn
}

// begin marks the session as having a commit in flight. It returns false if one already is.
func (c *BookingCommitSequencer) begin(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[sessionID]; busy {
		return false
	}
	c.inflight[sessionID] = struct{}{}
	return true
}

func (c *BookingCommitSequencer) end(sessionID string) {
	c.mu.Lock()
	delete(c.inflight, sessionID)
	c.mu.Unlock()
}

func (c *BookingCommitSequencer) report(ctx context.Context, s *models.BookingSession, msg string) {
	s.ProcessingMessage = msg
	s.UpdatedAt = c.now()
	if c.progress != nil {
		c.progress(ctx, s)
	}
}

// Commit runs the commit sequence for s. A second call for a session whose commit is
// still running returns nil without doing anything. Failures are recorded on the
// session as a user-facing message and returned.
func (c *BookingCommitSequencer) Commit(ctx context.Context, s *models.BookingSession) (err error) {
	if s.IsProcessing || !c.begin(s.ID) {
		c.logger.Info("commit already in progress, ignoring", zap.String("sessionID", s.ID))
		return nil
	}
	defer c.end(s.ID)

	// Once payment starts the sequence runs to completion or failure, whatever the caller does.
	ctx = context.WithoutCancel(ctx)
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	log := c.logger.With(zap.String("sessionID", s.ID), zap.String("classID", s.Class.ID), zap.String("userID", s.UserID))

	// Step 1: Take the processing flag
	s.IsProcessing = true
	s.ClearError()
	c.report(ctx, s, "Processing your booking...")

	defer func() {
		if r := recover(); r != nil {
			log.Error("commit panicked", zap.Any("panic", r))
			err = fmt.Errorf("internal error during booking commit: %v", r)
		}
		s.IsProcessing = false
		s.ProcessingMessage = ""
		if err != nil {
			s.SetError(UserMessage(err))
		}
		s.UpdatedAt = c.now()
	}()

	// Step 2: Payment
	c.report(ctx, s, "Processing payment...")
	result, err := c.payments.Pay(ctx, s)
	if err != nil {
		log.Warn("payment failed", zap.Error(err))
		return err
	}
	log = log.With(zap.String("paymentReference", result.PaymentReference()))

	// Step 3: Snapshot the session
	req := BuildBookingRequest(s, result)

	// Step 4: Persist the booking
	c.report(ctx, s, "Creating your booking...")
	record, storeErr := c.store.CreateBooking(ctx, req)
	if storeErr == nil && record == nil {
		storeErr = fmt.Errorf("booking store returned no record")
	}
	if storeErr != nil {
		log.Error("payment collected but booking not persisted; needs manual reconciliation", zap.Error(storeErr))
		return NewBookingPersistenceError(storeErr)
	}
	log = log.With(zap.String("bookingID", record.ID))

	// Step 5: Settle credits
	if s.UseCredits && s.CreditsToUse > 0 {
		c.report(ctx, s, "Applying credits...")
		reason := fmt.Sprintf("Class Booking - %s", s.Class.Name)
		ok, creditErr := c.credits.UseCredits(ctx, s.UserID, s.CreditsToUse, reason)
		if creditErr != nil || !ok {
			log.Error("booking persisted but credits not deducted; needs manual reconciliation",
				zap.Int("credits", s.CreditsToUse), zap.Error(creditErr))
			if creditErr == nil {
				return NewCreditDeductionError("credit ledger refused the deduction", nil)
			}
			return NewCreditDeductionError("credit ledger call failed", creditErr)
		}
	}

	// Step 6: Confirm with the gateway
	if ref := result.GatewayReference(); ref != "" {
		c.report(ctx, s, "Confirming payment...")
		if confirmErr := c.gateway.ConfirmPayment(ctx, ref); confirmErr != nil {
			log.Error("payment confirmation failed after booking was created", zap.Error(confirmErr))
		}
	}

	// Step 7: Done
	s.ConfirmationCode = record.ConfirmationCode
	s.BookingID = record.ID
	s.CurrentStep = models.StepConfirmation
	log.Info("booking committed", zap.String("confirmationCode", record.ConfirmationCode))

	c.publishConfirmed(ctx, s, record, log)
	return nil
}

func (c *BookingCommitSequencer) publishConfirmed(ctx context.Context, s *models.BookingSession, record *models.BookingRecord, log *zap.Logger) {
	if c.publisher == nil {
		return
	}
	evt := models.BookingConfirmedEvent{
		BookingID:        record.ID,
		SessionID:        s.ID,
		ConfirmationCode: record.ConfirmationCode,
		UserID:           s.UserID,
		ClassID:          s.Class.ID,
		TotalAmount:      RoundCurrency(s.Pricing.TotalAmount),
		PaymentMethod:    record.PaymentMethod,
		OccurredAt:       c.now(),
	}
	if s.UseCredits {
		evt.CreditsUsed = s.CreditsToUse
	}
	if err := c.publisher.PublishBookingConfirmed(ctx, evt); err != nil {
		log.Warn("failed to publish booking confirmed event", zap.Error(err))
	}
}

// BuildBookingRequest snapshots the session and payment result for the booking store.
func BuildBookingRequest(s *models.BookingSession, result *models.PaymentResult) models.BookingRequest {
	method := models.PaymentMethodCard
	if s.SelectedPaymentMethod != nil {
		method = *s.SelectedPaymentMethod
	}

	req := models.BookingRequest{
		ClassID:          s.Class.ID,
		ClassName:        s.Class.Name,
		UserID:           s.UserID,
		ParticipantCount: s.ParticipantCount,
		SpecialRequests:  s.SpecialRequests,
		PaymentID:        result.PaymentReference(),
		PaymentIntentID:  result.PaymentIntentID,
		Subtotal:         RoundCurrency(s.Pricing.Subtotal),
		TotalAmount:      RoundCurrency(s.Pricing.TotalAmount),
		PaymentMethod:    method,
		DiscountApplied:  RoundCurrency(s.Pricing.DiscountAmount),
		ProcessingFee:    RoundCurrency(s.Pricing.ProcessingFee),
		EmergencyContact: s.EmergencyContact,
		ExperienceLevel:  s.ExperienceLevel,
	}
	if s.SelectedTimeSlot != nil {
		req.TimeSlotID = s.SelectedTimeSlot.ID
		req.ClassStartDate = s.SelectedTimeSlot.Date
	}
	if s.AppliedCoupon != nil {
		req.CouponID = s.AppliedCoupon.Code
	}
	if s.UseCredits {
		req.CreditsUsed = s.CreditsToUse
	}
	if len(s.ParticipantNames) > 0 {
		req.ParticipantNames = append([]string(nil), s.ParticipantNames...)
	}
	for _, e := range s.SelectedEquipment {
		req.EquipmentRental = append(req.EquipmentRental, e.Name)
	}
	return req
}
