package core

import (
	"context"
	"fmt"
	"time"

	"billing-backend-go/internal/db"
	"billing-backend-go/internal/models"
)

// fakeUserRepo is an in-memory db.UserRepository that mirrors Firestore
// merge semantics closely enough to assert on document state and write
// counts.
type fakeUserRepo struct {
	users map[string]*models.User

	createCount int
	mergeCount  int
	creditCount int

	getErr    error
	mergeErr  error
	creditErr error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (f *fakeUserRepo) writes() int {
	return f.createCount + f.mergeCount + f.creditCount
}

func (f *fakeUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.createCount++
	cp := *user
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Merge(_ context.Context, userID string, fields map[string]interface{}) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.mergeCount++
	u, ok := f.users[userID]
	if !ok {
		u = &models.User{ID: userID}
		f.users[userID] = u
	}
	for k, v := range fields {
		switch k {
		case "stripeCustomerId":
			u.StripeCustomerID = v.(string)
		case "plan":
			u.Plan = v.(string)
		case "plan_code":
			u.PlanCode = v.(string)
		case "plan_status":
			u.PlanStatus = v.(string)
		case "plan_start_date":
			if t, ok := v.(time.Time); ok {
				tt := t
				u.PlanStartDate = &tt
			}
		case "plan_end_date":
			if v == nil {
				u.PlanEndDate = nil
			} else if t, ok := v.(time.Time); ok {
				tt := t
				u.PlanEndDate = &tt
			}
		case "payment_channel":
			u.PaymentChannel = v.(string)
		case "subscriptions":
			u.Subscriptions = v.([]models.SubscriptionSnapshot)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeUserRepo) AddCredits(_ context.Context, userID string, amount int64) error {
	if f.creditErr != nil {
		return f.creditErr
	}
	f.creditCount++
	u, ok := f.users[userID]
	if !ok {
		u = &models.User{ID: userID}
		f.users[userID] = u
	}
	u.Credits += amount
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// fakeGateway is a canned PaymentGateway that records calls.
type fakeGateway struct {
	nextCustomerID string
	checkoutURL    string
	portalURL      string

	// customerUserIDs backs LookupCustomerUserID, mimicking the identity tag
	// stored on Stripe customer records.
	customerUserIDs map[string]string

	createCustomerCalls []string
	checkoutCalls       []CheckoutSessionParams
	portalCalls         []string
	lookupCalls         []string

	createCustomerErr error
	checkoutErr       error
	portalErr         error
	lookupErr         error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		nextCustomerID:  "cus_fake",
		checkoutURL:     "https://checkout.stripe.test/session",
		portalURL:       "https://billing.stripe.test/portal",
		customerUserIDs: make(map[string]string),
	}
}

func (g *fakeGateway) CreateCustomer(_ context.Context, userID, _ string) (string, error) {
	g.createCustomerCalls = append(g.createCustomerCalls, userID)
	if g.createCustomerErr != nil {
		return "", g.createCustomerErr
	}
	g.customerUserIDs[g.nextCustomerID] = userID
	return g.nextCustomerID, nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, params CheckoutSessionParams) (string, error) {
	g.checkoutCalls = append(g.checkoutCalls, params)
	if g.checkoutErr != nil {
		return "", g.checkoutErr
	}
	return g.checkoutURL, nil
}

func (g *fakeGateway) CreatePortalSession(_ context.Context, customerID, _ string) (string, error) {
	g.portalCalls = append(g.portalCalls, customerID)
	if g.portalErr != nil {
		return "", g.portalErr
	}
	return g.portalURL, nil
}

func (g *fakeGateway) LookupCustomerUserID(_ context.Context, customerID string) (string, error) {
	g.lookupCalls = append(g.lookupCalls, customerID)
	if g.lookupErr != nil {
		return "", g.lookupErr
	}
	return g.customerUserIDs[customerID], nil
}

// testCatalog mirrors the production catalog with fixed price IDs.
func testCatalog() *PlanCatalog {
	return NewPlanCatalog(
		Plan{Code: PlanCodeProMonth, Mode: PlanModeSubscription, PriceID: "price_pro_month"},
		Plan{Code: PlanCodeProYear, Mode: PlanModeSubscription, PriceID: "price_pro_year"},
		Plan{Code: PlanCodeCredits100, Mode: PlanModePayment, PriceID: "price_credits_100", Credits: 100},
	)
}
