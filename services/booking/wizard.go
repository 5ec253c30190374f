package booking

import (
	"context"

	"hobbyist/models"

	"go.uber.org/zap"
)

// WizardStateMachine owns the fixed order of booking steps and decides when the
// session may move between them.
type WizardStateMachine struct {
	Credits   CreditLedger
	Sequencer *BookingCommitSequencer
	Logger    *zap.Logger
}

func NewWizardStateMachine(credits CreditLedger, sequencer *BookingCommitSequencer, logger *zap.Logger) *WizardStateMachine {
	return &WizardStateMachine{
		Credits:   credits,
		Sequencer: sequencer,
		Logger:    logger,
	}
}

// CanAdvance evaluates the gate of the session's current step.
func (w *WizardStateMachine) CanAdvance(ctx context.Context, s *models.BookingSession) bool {
	switch s.CurrentStep {
	case models.StepSelectDateTime:
		return s.SelectedTimeSlot != nil && !s.SelectedTimeSlot.IsFullyBooked()
	case models.StepParticipantDetails:
		return s.ParticipantCount > 0 && s.ParticipantCount <= participantLimit(s) &&
			s.EmergencyContact.Name != "" && s.EmergencyContact.Phone != ""
	case models.StepPaymentMethod:
		if s.SelectedPaymentMethod == nil {
			return false
		}
		if !s.PaymentMethodIs(models.PaymentMethodCredits) {
			return true
		}
		available, err := w.Credits.AvailableCredits(ctx, s.UserID)
		if err != nil {
			w.Logger.Warn("could not read credit balance", zap.String("sessionID", s.ID), zap.Error(err))
			return false
		}
		return available >= s.CreditsToUse
	case models.StepReviewBooking:
		return s.AgreedToTerms
	case models.StepConfirmation:
		return true
	}
	return false
}

// Advance moves the session one step forward. A closed gate is a silent no-op.
// Advancing from ReviewBooking runs the commit sequence and only reaches
// Confirmation when it succeeds; the commit error, if any, is returned.
func (w *WizardStateMachine) Advance(ctx context.Context, s *models.BookingSession) error {
	if s.IsProcessing || !w.CanAdvance(ctx, s) {
		return nil
	}

	switch s.CurrentStep {
	case models.StepReviewBooking:
		return w.Sequencer.Commit(ctx, s)
	case models.StepConfirmation:
		return nil
	default:
		s.CurrentStep = nextStep(s.CurrentStep)
		return nil
	}
}

// Retreat moves the session one step back. It does nothing on the first step,
// after confirmation, or while a commit is running.
func (w *WizardStateMachine) Retreat(s *models.BookingSession) {
	if s.IsProcessing {
		return
	}
	switch s.CurrentStep {
	case models.StepSelectDateTime, models.StepConfirmation:
		return
	}
	s.CurrentStep = previousStep(s.CurrentStep)
}

// Mutable reports whether the session's fields may still be edited.
func (w *WizardStateMachine) Mutable(s *models.BookingSession) bool {
	return !s.IsProcessing && s.CurrentStep != models.StepConfirmation
}

func stepIndex(step models.WizardStep) int {
	for i, st := range models.WizardSteps {
		if st == step {
			return i
		}
	}
	return -1
}

func nextStep(step models.WizardStep) models.WizardStep {
	i := stepIndex(step)
	if i < 0 || i >= len(models.WizardSteps)-1 {
		return step
	}
	return models.WizardSteps[i+1]
}

func previousStep(step models.WizardStep) models.WizardStep {
	i := stepIndex(step)
	if i <= 0 {
		return step
	}
	return models.WizardSteps[i-1]
}

// StepTitle is the heading shown for a step.
func StepTitle(step models.WizardStep) string {
	switch step {
	case models.StepSelectDateTime:
		return "Select Date & Time"
	case models.StepParticipantDetails:
		return "Participant Details"
	case models.StepPaymentMethod:
		return "Payment Method"
	case models.StepReviewBooking:
		return "Review Booking"
	case models.StepConfirmation:
		return "Booking Confirmed"
	}
	return ""
}

// StepProgress is the fraction of the flow completed once the step is shown.
func StepProgress(step models.WizardStep) float64 {
	i := stepIndex(step)
	if i < 0 {
		i = 0
	}
	return float64(i+1) / float64(len(models.WizardSteps))
}
