package core

import "billing-backend-go/internal/config"

// Plan codes are stable SKU identifiers, distinct from the coarse free/pro
// tier stored in the user document's plan field.
const (
	PlanCodeFree       = "FREE"
	PlanCodeProMonth   = "PRO_MONTH"
	PlanCodeProYear    = "PRO_YEAR"
	PlanCodeCredits100 = "CREDITS_100"
	PlanCodeUnknown    = "UNKNOWN"
)

// PlanMode distinguishes recurring subscriptions from one-time purchases.
// Values match Stripe Checkout modes.
type PlanMode string

const (
	PlanModeSubscription PlanMode = "subscription"
	PlanModePayment      PlanMode = "payment"
)

// Plan describes one purchasable SKU: its Stripe price, its billing mode,
// and the bonus credits granted for one-time purchases.
type Plan struct {
	Code    string
	Mode    PlanMode
	PriceID string
	Credits int64
}

// PlanCatalog is an immutable mapping from plan codes to Stripe prices,
// built once at startup and injected wherever plans are resolved. The
// reverse price index is derived from the forward table.
type PlanCatalog struct {
	plans       map[string]Plan
	priceToCode map[string]string
}

// NewPlanCatalog builds a catalog from the given plans.
func NewPlanCatalog(plans ...Plan) *PlanCatalog {
	c := &PlanCatalog{
		plans:       make(map[string]Plan, len(plans)),
		priceToCode: make(map[string]string, len(plans)),
	}
	for _, p := range plans {
		c.plans[p.Code] = p
		if p.PriceID != "" {
			c.priceToCode[p.PriceID] = p.Code
		}
	}
	return c
}

// CatalogFromConfig builds the production catalog from configured price IDs.
func CatalogFromConfig(cfg *config.Config) *PlanCatalog {
	return NewPlanCatalog(
		Plan{Code: PlanCodeProMonth, Mode: PlanModeSubscription, PriceID: cfg.StripePriceProMonth},
		Plan{Code: PlanCodeProYear, Mode: PlanModeSubscription, PriceID: cfg.StripePriceProYear},
		Plan{Code: PlanCodeCredits100, Mode: PlanModePayment, PriceID: cfg.StripePriceCredits100, Credits: 100},
	)
}

// Lookup returns the plan for the given code.
func (c *PlanCatalog) Lookup(code string) (Plan, bool) {
	p, ok := c.plans[code]
	return p, ok
}

// CodeForPrice reverse-maps a Stripe price ID to its plan code.
func (c *PlanCatalog) CodeForPrice(priceID string) (string, bool) {
	code, ok := c.priceToCode[priceID]
	return code, ok
}

// Credits returns the bonus credits for the given plan code, or zero when
// the code is unknown or carries no credits.
func (c *PlanCatalog) Credits(code string) int64 {
	if p, ok := c.plans[code]; ok {
		return p.Credits
	}
	return 0
}
