package models

import "time"

// Plan tiers and statuses stored on the user document.
const (
	PlanFree = "free"
	PlanPro  = "pro"

	PlanStatusActive = "active"

	PaymentChannelStripe = "stripe"
)

// User represents a user document in the users collection.
// The document ID is the Firebase Auth UID.
type User struct {
	ID               string `json:"id" firestore:"-"`
	Email            string `json:"email" firestore:"email"`
	DisplayName      string `json:"displayName,omitempty" firestore:"displayName"`
	PhotoURL         string `json:"photoURL,omitempty" firestore:"photoURL"`
	StripeCustomerID string `json:"stripeCustomerId,omitempty" firestore:"stripeCustomerId"`

	// Plan is the coarse tier ("free" or "pro"); PlanCode is the specific SKU
	// (FREE, PRO_MONTH, PRO_YEAR, CREDITS_100, UNKNOWN).
	Plan          string     `json:"plan" firestore:"plan"`
	PlanCode      string     `json:"plan_code" firestore:"plan_code"`
	PlanStatus    string     `json:"plan_status" firestore:"plan_status"`
	PlanStartDate *time.Time `json:"plan_start_date,omitempty" firestore:"plan_start_date"`
	PlanEndDate   *time.Time `json:"plan_end_date,omitempty" firestore:"plan_end_date"`

	PaymentChannel string                 `json:"payment_channel,omitempty" firestore:"payment_channel"`
	Subscriptions  []SubscriptionSnapshot `json:"subscriptions,omitempty" firestore:"subscriptions"`

	// Credits is a purchase-only balance; this system only ever adds to it.
	Credits int64 `json:"credits" firestore:"credits"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// SubscriptionSnapshot captures the state of a Stripe subscription as of the
// last processed event. The subscriptions array on the user document is
// overwritten wholesale on every subscription event, never appended to.
type SubscriptionSnapshot struct {
	SubscriptionID     string    `json:"subscription_id" firestore:"subscription_id"`
	CustomerID         string    `json:"customer_id" firestore:"customer_id"`
	Status             string    `json:"status" firestore:"status"`
	ProductID          string    `json:"product_id" firestore:"product_id"`
	PriceID            string    `json:"price_id" firestore:"price_id"`
	CurrentPeriodStart time.Time `json:"current_period_start" firestore:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end" firestore:"current_period_end"`
	CancelAtPeriodEnd  bool      `json:"cancel_at_period_end" firestore:"cancel_at_period_end"`
}
