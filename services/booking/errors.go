package booking

import (
	"errors"
	"fmt"
)

const (
	CodeInvalidCoupon             = "invalidCoupon"
	CodeInvalidPayment            = "invalidPayment"
	CodeBookingPersistenceFailure = "bookingPersistenceFailure"
	CodeCreditDeductionFailure    = "creditDeductionFailure"
)

// BookingError is a failure of the booking flow. Two BookingErrors match under
// errors.Is when their codes are equal, so the Err* values below work as sentinels.
type BookingError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func (e *BookingError) Is(target error) bool {
	t, ok := target.(*BookingError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidCoupon             = &BookingError{Code: CodeInvalidCoupon, Message: "coupon code not recognized"}
	ErrInvalidPayment            = &BookingError{Code: CodeInvalidPayment, Message: "payment missing, unsuccessful or unreferenced"}
	ErrBookingPersistenceFailure = &BookingError{Code: CodeBookingPersistenceFailure, Message: "failed to persist booking"}
	ErrCreditDeductionFailure    = &BookingError{Code: CodeCreditDeductionFailure, Message: "failed to deduct credits"}
)

func NewInvalidPaymentError(msg string, cause error) error {
	return &BookingError{Code: CodeInvalidPayment, Message: msg, Err: cause}
}

func NewBookingPersistenceError(cause error) error {
	return &BookingError{Code: CodeBookingPersistenceFailure, Message: "failed to persist booking", Err: cause}
}

func NewCreditDeductionError(msg string, cause error) error {
	return &BookingError{Code: CodeCreditDeductionFailure, Message: msg, Err: cause}
}

// Session-level errors returned by BookingSessionService.
var (
	ErrSessionNotFound   = errors.New("booking session not found or expired")
	ErrSessionForbidden  = errors.New("booking session belongs to another user")
	ErrSessionLocked     = errors.New("booking session cannot be modified in its current state")
	ErrClassNotFound     = errors.New("class not found")
	ErrTimeSlotNotFound  = errors.New("time slot not found")
	ErrEquipmentNotFound = errors.New("equipment not offered for this class")
	ErrInvalidInput      = errors.New("invalid input")
)

// UserMessage translates an error from the booking flow into text for the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCoupon):
		return "Invalid coupon code"
	case errors.Is(err, ErrInvalidPayment):
		return "Payment processing failed. Please try again"
	case errors.Is(err, ErrBookingPersistenceFailure):
		return "We couldn't save your booking. Your payment was received, please contact support"
	case errors.Is(err, ErrCreditDeductionFailure):
		return "Your booking is confirmed but we couldn't apply your credits. Please contact support"
	case errors.Is(err, ErrSessionNotFound):
		return "Your booking session has expired. Please start again"
	case errors.Is(err, ErrSessionForbidden):
		return "You don't have access to this booking"
	case errors.Is(err, ErrSessionLocked):
		return "This booking can no longer be changed"
	case errors.Is(err, ErrClassNotFound):
		return "This class is no longer available"
	case errors.Is(err, ErrTimeSlotNotFound):
		return "This time slot is no longer available"
	case errors.Is(err, ErrEquipmentNotFound):
		return "This equipment isn't offered for this class"
	case errors.Is(err, ErrInvalidInput):
		return err.Error()
	default:
		return "Something went wrong. Please try again"
	}
}
