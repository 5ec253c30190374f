package models

// PaymentIntent is a gateway-issued handle for an authorised but not yet captured amount.
type PaymentIntent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"clientSecret,omitempty"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

// PaymentResult is what a payment attempt produced.
type PaymentResult struct {
	Success         bool   `json:"success"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	Reference       string `json:"reference,omitempty"`
	FailureReason   string `json:"failureReason,omitempty"`
}

// GatewayReference is the reference the gateway must later confirm, if any.
func (r PaymentResult) GatewayReference() string {
	return r.PaymentIntentID
}

// PaymentReference identifies the payment on the booking record.
func (r PaymentResult) PaymentReference() string {
	if r.PaymentIntentID != "" {
		return r.PaymentIntentID
	}
	return r.Reference
}
