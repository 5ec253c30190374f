package booking

import (
	"context"

	"hobbyist/models"

	"go.uber.org/zap"
)

// PaymentPath is the way a session's amount gets collected.
type PaymentPath string

const (
	PaymentPathNone       PaymentPath = "none"
	PaymentPathCreditOnly PaymentPath = "creditOnly"
	PaymentPathGateway    PaymentPath = "gateway"
)

// --- PaymentOrchestrator ---
type PaymentOrchestrator struct {
	gateway PaymentGateway
	logger  *zap.Logger
}

func NewPaymentOrchestrator(gateway PaymentGateway, logger *zap.Logger) *PaymentOrchestrator {
	return &PaymentOrchestrator{
		gateway: gateway,
		logger:  logger,
	}
}

// SelectPaymentPath decides how the session will be paid from its current pricing.
func SelectPaymentPath(s *models.BookingSession) PaymentPath {
	remaining := toCents(s.Pricing.RemainingPayment)
	switch {
	case s.PaymentMethodIs(models.PaymentMethodCredits) && remaining == 0:
		return PaymentPathCreditOnly
	case remaining > 0:
		return PaymentPathGateway
	default:
		return PaymentPathNone
	}
}

// --- Pay Entry Point ---
// Pay runs exactly one payment path and returns a successful result or an InvalidPayment error.
// It never retries.
func (o *PaymentOrchestrator) Pay(ctx context.Context, s *models.BookingSession) (*models.PaymentResult, error) {
	switch SelectPaymentPath(s) {
	case PaymentPathCreditOnly:
		return o.payWithCredits(ctx, s)
	case PaymentPathGateway:
		return o.payWithGateway(ctx, s)
	default:
		return nil, NewInvalidPaymentError("no payment path applies to this session", nil)
	}
}

// --- Credit-only Payment ---
func (o *PaymentOrchestrator) payWithCredits(ctx context.Context, s *models.BookingSession) (*models.PaymentResult, error) {
	result, err := o.gateway.ProcessCreditOnlyPayment(ctx, float64(s.CreditsToUse), s.Class.ID, s.ParticipantCount)
	if err != nil {
		return nil, NewInvalidPaymentError("credit payment failed", err)
	}
	if result == nil || !result.Success {
		return nil, NewInvalidPaymentError("credit payment was not accepted", nil)
	}

	o.logger.Info("credit payment accepted",
		zap.String("sessionID", s.ID),
		zap.Int("credits", s.CreditsToUse),
		zap.String("reference", result.Reference),
	)
	return result, nil
}

// --- Gateway Payment ---
func (o *PaymentOrchestrator) payWithGateway(ctx context.Context, s *models.BookingSession) (*models.PaymentResult, error) {
	amount := s.Pricing.RemainingPayment

	intent, err := o.gateway.CreatePaymentIntent(ctx, amount, s.Class.ID, s.ParticipantCount)
	if err != nil {
		return nil, NewInvalidPaymentError("could not create payment intent", err)
	}
	if intent == nil {
		return nil, NewInvalidPaymentError("gateway returned no payment intent", nil)
	}
	o.logger.Info("payment intent created",
		zap.String("sessionID", s.ID),
		zap.String("paymentIntentID", intent.ID),
		zap.Float64("amount", RoundCurrency(amount)),
	)

	result, err := o.gateway.PresentPaymentUI(ctx, intent)
	if err != nil {
		return nil, NewInvalidPaymentError("payment interaction failed", err)
	}
	if result == nil || !result.Success {
		reason := ""
		if result != nil {
			reason = result.FailureReason
		}
		o.logger.Warn("payment not completed",
			zap.String("sessionID", s.ID),
			zap.String("paymentIntentID", intent.ID),
			zap.String("reason", reason),
		)
		return nil, NewInvalidPaymentError("payment was not completed", nil)
	}
	if result.PaymentIntentID == "" {
		return nil, NewInvalidPaymentError("payment result carries no payment intent id", nil)
	}
	return result, nil
}
