package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"billing-backend-go/internal/db"
	"billing-backend-go/internal/models"
)

// Errors for billing operations. Handlers map these to HTTP statuses.
var (
	ErrPlanNotFound        = errors.New("plan code not found in catalog")
	ErrStripeClient        = errors.New("stripe client operation failed")
	ErrWebhookProcessing   = errors.New("stripe webhook processing failed")
	ErrWebhookSignature    = errors.New("stripe webhook signature verification failed")
	ErrUserStripeNotLinked = errors.New("user does not have a Stripe customer ID")
)

// Metadata keys this system stamps on Stripe customers, checkout sessions
// and subscriptions, and reads back during webhook reconciliation.
const (
	metadataUserIDKey   = "firebaseUID"
	metadataPlanCodeKey = "planCode"
)

// billingService implements the BillingService interface: it initiates
// checkout and portal sessions and reconciles webhook events into the user
// document store.
type billingService struct {
	userRepo      db.UserRepository
	gateway       PaymentGateway
	catalog       *PlanCatalog
	webhookSecret string
	appURL        string
	logger        *zap.Logger
}

// NewBillingService creates a BillingService backed by the given repository,
// payment gateway and plan catalog.
func NewBillingService(
	userRepo db.UserRepository,
	gateway PaymentGateway,
	catalog *PlanCatalog,
	webhookSecret string,
	appURL string,
	logger *zap.Logger,
) BillingService {
	return &billingService{
		userRepo:      userRepo,
		gateway:       gateway,
		catalog:       catalog,
		webhookSecret: webhookSecret,
		appURL:        appURL,
		logger:        logger,
	}
}

// CreateCheckoutSession validates the plan code, resolves or provisions the
// user's Stripe customer, and opens a checkout session for the plan's price.
// The session is tagged with the user ID and plan code so webhook events can
// be attributed without a customer lookup.
func (s *billingService) CreateCheckoutSession(ctx context.Context, userID, email, planCode string) (string, error) {
	plan, ok := s.catalog.Lookup(planCode)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrPlanNotFound, planCode)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return "", fmt.Errorf("failed to load user '%s': %w", userID, err)
	}

	customerID := user.StripeCustomerID
	if customerID == "" {
		// Not transactional against the read above: two concurrent first
		// checkouts can each create a customer, and the later merge wins.
		// The orphaned customer record is an accepted leak.
		customerEmail := user.Email
		if customerEmail == "" {
			customerEmail = email
		}
		customerID, err = s.gateway.CreateCustomer(ctx, userID, customerEmail)
		if err != nil {
			return "", fmt.Errorf("%w: create customer for user '%s': %v", ErrStripeClient, userID, err)
		}
		if mergeErr := s.userRepo.Merge(ctx, userID, map[string]interface{}{
			"stripeCustomerId": customerID,
		}); mergeErr != nil {
			return "", fmt.Errorf("failed to persist stripe customer ID for user '%s': %w", userID, mergeErr)
		}
	}

	metadata := map[string]string{
		metadataUserIDKey:   userID,
		metadataPlanCodeKey: planCode,
	}
	params := CheckoutSessionParams{
		CustomerID: customerID,
		PriceID:    plan.PriceID,
		Mode:       plan.Mode,
		SuccessURL: s.appURL + "/pricing?status=success&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.appURL + "/pricing?status=cancel",
		Metadata:   metadata,
	}
	if plan.Mode == PlanModeSubscription {
		params.SubscriptionMetadata = metadata
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: create checkout session for user '%s': %v", ErrStripeClient, userID, err)
	}
	return url, nil
}

// CreatePortalSession opens a Stripe customer portal session for the user's
// existing customer record.
func (s *billingService) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return "", fmt.Errorf("failed to load user '%s': %w", userID, err)
	}
	if user.StripeCustomerID == "" {
		return "", fmt.Errorf("%w: user '%s'", ErrUserStripeNotLinked, userID)
	}

	url, err := s.gateway.CreatePortalSession(ctx, user.StripeCustomerID, s.appURL+"/pricing")
	if err != nil {
		return "", fmt.Errorf("%w: create portal session for user '%s': %v", ErrStripeClient, userID, err)
	}
	return url, nil
}

// HandleStripeWebhook verifies the event signature against the shared secret
// and dispatches the event. Signature verification happens before any event
// parsing; a failure rejects the delivery with no state touched.
//
// Events whose owning user cannot be resolved are logged and acknowledged:
// Stripe does not retry on a 2xx response, and this system does not park
// unresolvable events for replay.
func (s *billingService) HandleStripeWebhook(ctx context.Context, signature string, payload []byte) error {
	// Webhook endpoints pin the API version they were created with, which
	// rarely matches the SDK's pinned version; the payload shapes consumed
	// here are stable across both.
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		return s.applySubscriptionUpdate(ctx, &event)
	case "customer.subscription.deleted":
		return s.applySubscriptionDeleted(ctx, &event)
	case "checkout.session.completed":
		return s.applyCheckoutCompleted(ctx, &event)
	default:
		// Acknowledged without effect.
		return nil
	}
}

// applySubscriptionUpdate merge-writes the subscription-dependent fields of
// the owning user's document from the event's own data. Because every write
// fully overwrites those fields, redelivery is idempotent and concurrent
// deliveries resolve last-write-wins.
func (s *billingService) applySubscriptionUpdate(ctx context.Context, event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("%w: parse subscription event: %v", ErrWebhookProcessing, err)
	}

	userID := s.resolveUserID(ctx, sub.Metadata, customerID(sub.Customer))
	if userID == "" {
		s.logger.Warn("dropping subscription event with no resolvable user",
			zap.String("eventID", event.ID),
			zap.String("eventType", string(event.Type)),
			zap.String("subscriptionID", sub.ID))
		return nil
	}

	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return fmt.Errorf("%w: subscription %s has no items", ErrWebhookProcessing, sub.ID)
	}
	item := sub.Items.Data[0]

	var priceID, productID string
	if item.Price != nil {
		priceID = item.Price.ID
		if item.Price.Product != nil {
			productID = item.Price.Product.ID
		}
	}

	planCode := sub.Metadata[metadataPlanCodeKey]
	if planCode == "" {
		if code, ok := s.catalog.CodeForPrice(priceID); ok {
			planCode = code
		} else {
			planCode = PlanCodeUnknown
		}
	}

	periodStart := time.Unix(item.CurrentPeriodStart, 0).UTC()
	periodEnd := time.Unix(item.CurrentPeriodEnd, 0).UTC()

	fields := map[string]interface{}{
		"plan":            models.PlanPro,
		"plan_code":       planCode,
		"plan_status":     string(sub.Status),
		"plan_start_date": periodStart,
		"plan_end_date":   periodEnd,
		"payment_channel": models.PaymentChannelStripe,
		"subscriptions": []models.SubscriptionSnapshot{
			{
				SubscriptionID:     sub.ID,
				CustomerID:         customerID(sub.Customer),
				Status:             string(sub.Status),
				ProductID:          productID,
				PriceID:            priceID,
				CurrentPeriodStart: periodStart,
				CurrentPeriodEnd:   periodEnd,
				CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
			},
		},
	}
	if err := s.userRepo.Merge(ctx, userID, fields); err != nil {
		return fmt.Errorf("%w: apply subscription update for user '%s': %v", ErrWebhookProcessing, userID, err)
	}
	return nil
}

// applySubscriptionDeleted resets the user to the free plan regardless of
// prior state.
func (s *billingService) applySubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("%w: parse subscription event: %v", ErrWebhookProcessing, err)
	}

	userID := s.resolveUserID(ctx, sub.Metadata, customerID(sub.Customer))
	if userID == "" {
		s.logger.Warn("dropping subscription deletion with no resolvable user",
			zap.String("eventID", event.ID),
			zap.String("subscriptionID", sub.ID))
		return nil
	}

	fields := map[string]interface{}{
		"plan":            models.PlanFree,
		"plan_code":       PlanCodeFree,
		"plan_status":     models.PlanStatusActive,
		"plan_start_date": time.Now().UTC(),
		"plan_end_date":   nil,
	}
	if err := s.userRepo.Merge(ctx, userID, fields); err != nil {
		return fmt.Errorf("%w: apply subscription deletion for user '%s': %v", ErrWebhookProcessing, userID, err)
	}
	return nil
}

// applyCheckoutCompleted grants bonus credits for paid one-time purchases.
// The credit increment runs as a transactional read-modify-write in the
// repository; it is keyed only on the event payload, so a redelivered event
// credits again.
func (s *billingService) applyCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("%w: parse checkout session event: %v", ErrWebhookProcessing, err)
	}

	if session.Mode != stripe.CheckoutSessionModePayment || session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil
	}

	userID := s.resolveUserID(ctx, session.Metadata, customerID(session.Customer))
	if userID == "" {
		s.logger.Warn("dropping one-time payment with no resolvable user",
			zap.String("eventID", event.ID),
			zap.String("sessionID", session.ID))
		return nil
	}

	planCode := session.Metadata[metadataPlanCodeKey]
	if planCode == "" && session.LineItems != nil && len(session.LineItems.Data) > 0 {
		if price := session.LineItems.Data[0].Price; price != nil {
			planCode, _ = s.catalog.CodeForPrice(price.ID)
		}
	}

	credits := s.catalog.Credits(planCode)
	if credits <= 0 {
		return nil
	}

	if err := s.userRepo.AddCredits(ctx, userID, credits); err != nil {
		return fmt.Errorf("%w: add %d credits to user '%s': %v", ErrWebhookProcessing, credits, userID, err)
	}
	return nil
}

// resolveUserID prefers the identity tag this system stamps into event
// metadata at checkout creation time, falling back to a reverse lookup of
// the tag stored on the Stripe customer record. An empty result means the
// event cannot be attributed and will be dropped.
func (s *billingService) resolveUserID(ctx context.Context, metadata map[string]string, custID string) string {
	if uid := metadata[metadataUserIDKey]; uid != "" {
		return uid
	}
	if custID == "" {
		return ""
	}
	uid, err := s.gateway.LookupCustomerUserID(ctx, custID)
	if err != nil {
		s.logger.Warn("stripe customer lookup failed during event resolution",
			zap.String("customerID", custID), zap.Error(err))
		return ""
	}
	return uid
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}
