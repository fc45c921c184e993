package api

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CreateCheckoutSessionRequest carries the requested plan code.
type CreateCheckoutSessionRequest struct {
	PlanCode string `json:"planCode" binding:"required"`
}

// CreateCheckoutSessionResponse returns the hosted checkout URL.
type CreateCheckoutSessionResponse struct {
	URL string `json:"url"`
}

// WebhookAckResponse acknowledges a webhook delivery.
type WebhookAckResponse struct {
	Received bool `json:"received"`
}
