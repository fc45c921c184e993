// Package billing implements the outbound Stripe API surface behind the
// core.PaymentGateway interface.
package billing

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"

	"billing-backend-go/internal/core"
)

// firebaseUIDMetadataKey tags Stripe customer records with the owning
// Firebase UID so webhook events can be attributed by reverse lookup.
const firebaseUIDMetadataKey = "firebaseUID"

// StripeGateway implements core.PaymentGateway using the Stripe API.
type StripeGateway struct{}

var _ core.PaymentGateway = (*StripeGateway)(nil)

// NewStripeGateway sets the Stripe API key and returns a gateway.
func NewStripeGateway(apiKey string) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{}
}

// CreateCustomer creates a new Stripe customer tagged with the user's UID.
func (g *StripeGateway) CreateCustomer(_ context.Context, userID, email string) (string, error) {
	params := &stripe.CustomerParams{
		Metadata: map[string]string{
			firebaseUIDMetadataKey: userID,
		},
	}
	if email != "" {
		params.Email = stripe.String(email)
	}
	c, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return c.ID, nil
}

// CreateCheckoutSession opens a hosted checkout session and returns its URL.
func (g *StripeGateway) CreateCheckoutSession(_ context.Context, p core.CheckoutSessionParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(p.CustomerID),
		Mode:     stripe.String(string(p.Mode)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		Metadata:   p.Metadata,
	}
	if p.SubscriptionMetadata != nil {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: p.SubscriptionMetadata,
		}
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe checkout session: %w", err)
	}
	return s.URL, nil
}

// CreatePortalSession opens a self-service billing portal session for the
// customer and returns its URL.
func (g *StripeGateway) CreatePortalSession(_ context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe portal session: %w", err)
	}
	return s.URL, nil
}

// LookupCustomerUserID reads the Firebase UID tag back off a Stripe customer
// record. An untagged customer resolves to the empty string.
func (g *StripeGateway) LookupCustomerUserID(_ context.Context, customerID string) (string, error) {
	c, err := customer.Get(customerID, nil)
	if err != nil {
		return "", fmt.Errorf("retrieve stripe customer %s: %w", customerID, err)
	}
	return c.Metadata[firebaseUIDMetadataKey], nil
}
