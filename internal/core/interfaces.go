package core

import (
	"context"

	"billing-backend-go/internal/models"
)

// UserService defines the interface for user-profile operations.
type UserService interface {
	// GetOrCreate retrieves a user by ID. If the user doesn't exist, it
	// creates the baseline free-plan record and provisions a Stripe customer
	// tagged with the user's identity.
	GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// BillingService defines the interface for billing operations.
type BillingService interface {
	// CreateCheckoutSession opens a Stripe Checkout session for the given
	// plan code and returns the hosted checkout URL.
	CreateCheckoutSession(ctx context.Context, userID, email, planCode string) (string, error)
	// CreatePortalSession opens a Stripe customer portal session and returns
	// its URL.
	CreatePortalSession(ctx context.Context, userID string) (string, error)
	// HandleStripeWebhook verifies the event signature and applies the
	// event's state transition to the owning user's document.
	HandleStripeWebhook(ctx context.Context, signature string, payload []byte) error
}

// CheckoutSessionParams carries everything the payment gateway needs to open
// a hosted checkout session.
type CheckoutSessionParams struct {
	CustomerID string
	PriceID    string
	Mode       PlanMode
	SuccessURL string
	CancelURL  string
	// Metadata is attached to the checkout session; SubscriptionMetadata is
	// additionally attached to the subscription created by a subscription-mode
	// session, so that webhook events carry the identity tag.
	Metadata             map[string]string
	SubscriptionMetadata map[string]string
}

// PaymentGateway abstracts the outbound Stripe API surface so services can
// be tested against a fake.
type PaymentGateway interface {
	// CreateCustomer creates a processor customer tagged with the internal
	// user ID and returns the customer ID.
	CreateCustomer(ctx context.Context, userID, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	// LookupCustomerUserID retrieves the customer record from the processor
	// and reads back the identity tag stored at customer creation time.
	LookupCustomerUserID(ctx context.Context, customerID string) (string, error)
}
