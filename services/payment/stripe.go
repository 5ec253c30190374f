package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"hobbyist/models"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// intentAPI is the slice of the Stripe PaymentIntent API the gateway uses.
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Capture(id string, params *stripe.PaymentIntentCaptureParams) (*stripe.PaymentIntent, error)
	Cancel(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
}

type stripeIntents struct{}

func (stripeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.New(params)
}

func (stripeIntents) Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.Get(id, params)
}

func (stripeIntents) Capture(id string, params *stripe.PaymentIntentCaptureParams) (*stripe.PaymentIntent, error) {
	return paymentintent.Capture(id, params)
}

func (stripeIntents) Cancel(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error) {
	return paymentintent.Cancel(id, params)
}

// StripeGateway implements booking.PaymentGateway with manual-capture PaymentIntents.
// The intent is authorised on the device with its client secret and captured once the
// booking is stored.
type StripeGateway struct {
	intents      intentAPI
	currency     string
	timeout      time.Duration
	pollInterval time.Duration
	logger       *zap.Logger
}

func NewStripeGateway(currency string, timeout, pollInterval time.Duration, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{
		intents:      stripeIntents{},
		currency:     currency,
		timeout:      timeout,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// toMinorUnits converts an amount to cents.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount float64, classID string, participantCount int) (*models.PaymentIntent, error) {
	cents := toMinorUnits(amount)
	if cents <= 0 {
		return nil, fmt.Errorf("payment amount must be positive, got %.2f", amount)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(cents),
		Currency:      stripe.String(g.currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("classId", classID)
	params.AddMetadata("participants", strconv.Itoa(participantCount))

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	g.logger.Debug("payment intent created", zap.String("paymentIntentID", pi.ID), zap.Int64("amount", pi.Amount))
	return &models.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       float64(pi.Amount) / 100,
		Currency:     string(pi.Currency),
	}, nil
}

// PresentPaymentUI waits for the client to authorise the intent on the device. It polls
// the intent until it is authorised, cancelled or the payment timeout passes. A timed out
// intent is cancelled so the authorisation cannot be completed later.
func (g *StripeGateway) PresentPaymentUI(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentResult, error) {
	if intent == nil || intent.ID == "" {
		return nil, errors.New("payment intent is required")
	}

	deadline := time.NewTimer(g.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		params := &stripe.PaymentIntentParams{}
		params.Context = ctx
		pi, err := g.intents.Get(intent.ID, params)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch payment intent: %w", err)
		}

		switch pi.Status {
		case stripe.PaymentIntentStatusRequiresCapture, stripe.PaymentIntentStatusSucceeded:
			return &models.PaymentResult{Success: true, PaymentIntentID: pi.ID}, nil
		case stripe.PaymentIntentStatusCanceled:
			return &models.PaymentResult{Success: false, FailureReason: cancellationReason(pi)}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			g.cancelIntent(ctx, intent.ID)
			return &models.PaymentResult{Success: false, FailureReason: "payment was not completed in time"}, nil
		case <-ticker.C:
		}
	}
}

func cancellationReason(pi *stripe.PaymentIntent) string {
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		return pi.LastPaymentError.Msg
	}
	if pi.CancellationReason != "" {
		return string(pi.CancellationReason)
	}
	return "payment was cancelled"
}

func (g *StripeGateway) cancelIntent(ctx context.Context, id string) {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = context.WithoutCancel(ctx)
	if _, err := g.intents.Cancel(id, params); err != nil {
		g.logger.Warn("failed to cancel abandoned payment intent", zap.String("paymentIntentID", id), zap.Error(err))
	}
}

// ProcessCreditOnlyPayment accepts a payment covered entirely by credits. Stripe is not
// involved; the result carries an internal reference and no payment intent.
func (g *StripeGateway) ProcessCreditOnlyPayment(ctx context.Context, amount float64, classID string, participantCount int) (*models.PaymentResult, error) {
	if amount < 0 {
		return nil, fmt.Errorf("credit amount must not be negative, got %.2f", amount)
	}
	ref := "cr_" + uuid.New().String()
	g.logger.Debug("credit-only payment accepted",
		zap.String("reference", ref), zap.String("classID", classID), zap.Int("participants", participantCount))
	return &models.PaymentResult{Success: true, Reference: ref}, nil
}

// ConfirmPayment captures a previously authorised intent.
func (g *StripeGateway) ConfirmPayment(ctx context.Context, reference string) error {
	if reference == "" {
		return errors.New("payment reference is required")
	}
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	if _, err := g.intents.Capture(reference, params); err != nil {
		return fmt.Errorf("failed to capture payment intent %s: %w", reference, err)
	}
	return nil
}
