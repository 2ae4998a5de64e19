package service

import (
	"context"
	"fmt"

	"travelapp/internal/config"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// StripeService is the Stripe Checkout implementation of PaymentGateway.
type StripeService struct {
	successURL string
	cancelURL  string
}

func NewStripeService(cfg config.StripeConfig) *StripeService {
	stripe.Key = cfg.SecretKey
	return &StripeService{successURL: cfg.SuccessURL, cancelURL: cfg.CancelURL}
}

// Create checkout session
func (s *StripeService) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		CustomerEmail:     stripe.String(req.CustomerEmail),
		ClientReferenceID: stripe.String(req.Reference),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", req.Reference)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session for %s: %w", req.Reference, err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// SessionPaymentStatus returns the Checkout session payment_status
// ("paid", "unpaid" or "no_payment_required").
func (s *StripeService) SessionPaymentStatus(ctx context.Context, sessionID string) (string, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := session.Get(sessionID, params)
	if err != nil {
		return "", fmt.Errorf("stripe session %s: %w", sessionID, err)
	}
	return string(sess.PaymentStatus), nil
}
