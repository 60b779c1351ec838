package services

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// ErrPaymentNotCompleted is returned when a payment intent exists but has
// not reached the succeeded state.
var ErrPaymentNotCompleted = errors.New("payment intent not completed")

// StripeService wraps the payment gateway. An empty secret key disables
// the integration: intent creation fails loudly, verification is skipped
// by the caller.
type StripeService struct {
	currency string
	enabled  bool
}

// NewStripeService sets the package-level API key once and remembers the
// checkout currency.
func NewStripeService(secretKey, currency string) *StripeService {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	if currency == "" {
		currency = "inr"
	}
	return &StripeService{currency: currency, enabled: secretKey != ""}
}

// Enabled reports whether the gateway is configured.
func (s *StripeService) Enabled() bool {
	return s.enabled
}

// CreatePaymentIntent registers an intent for the amount and returns the
// client secret the frontend needs to complete payment. Amount is in major
// units; stripe wants the smallest unit.
func (s *StripeService) CreatePaymentIntent(amount float64, userID string) (string, error) {
	if !s.enabled {
		return "", fmt.Errorf("%w: stripe not configured", ErrUpstreamUnavailable)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(s.currency),
	}
	params.AddMetadata("user_id", userID)

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create intent: %w", err)
	}

	return intent.ClientSecret, nil
}

// VerifyPaymentIntent confirms with stripe that the intent the client
// claims to have paid actually succeeded. Checkout calls this before
// committing rather than trusting the client-supplied payment id.
func (s *StripeService) VerifyPaymentIntent(paymentID string) error {
	if !s.enabled {
		return fmt.Errorf("%w: stripe not configured", ErrUpstreamUnavailable)
	}

	intent, err := paymentintent.Get(paymentID, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("%w: status %s", ErrPaymentNotCompleted, intent.Status)
	}

	return nil
}
