package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"billing-backend-go/internal/core"
	"billing-backend-go/internal/middleware"
)

// BillingHandler handles billing-related API endpoints.
type BillingHandler struct {
	billingService core.BillingService
	logger         *zap.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: bs, logger: logger}
}

// mapBillingErrorToStatus maps errors from core.BillingService to HTTP status
// codes and an ErrorResponse body.
func (h *BillingHandler) mapBillingErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrPlanNotFound):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid plan code", Details: err.Error()}
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "User profile not found", Details: err.Error()}
	case errors.Is(err, core.ErrUserStripeNotLinked):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "No Stripe customer found", Details: err.Error()}
	case errors.Is(err, core.ErrWebhookSignature):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Webhook signature verification failed"}
	case errors.Is(err, core.ErrStripeClient):
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: "Payment provider error", Details: "Could not complete the operation with the payment provider."}
		h.logger.Error("stripe client error", zap.Error(err))
	case errors.Is(err, core.ErrWebhookProcessing):
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "Webhook processing error"}
		h.logger.Error("webhook processing error", zap.Error(err))
	default:
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
		h.logger.Error("internal error in BillingHandler", zap.Error(err))
	}
	c.JSON(statusCode, errResponse)
}

// CreateCheckoutSession handles POST /api/v1/billing/create-checkout-session.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := contextString(c, middleware.ContextUserID)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}
	email, _ := contextString(c, middleware.ContextUserEmail)

	var req CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	url, err := h.billingService.CreateCheckoutSession(c.Request.Context(), userID, email, req.PlanCode)
	if err != nil {
		h.mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, CreateCheckoutSessionResponse{URL: url})
}

// CreatePortalSession handles POST /api/v1/billing/create-portal-session and
// redirects to the self-service billing portal.
func (h *BillingHandler) CreatePortalSession(c *gin.Context) {
	userID, ok := contextString(c, middleware.ContextUserID)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	portalURL, err := h.billingService.CreatePortalSession(c.Request.Context(), userID)
	if err != nil {
		h.mapBillingErrorToStatus(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, portalURL)
}

// HandleStripeWebhook handles POST /api/v1/billing/webhooks/stripe. The
// endpoint is public; Stripe authenticates deliveries via the
// Stripe-Signature header, verified in the billing service before any event
// parsing. Unresolvable events are acknowledged so Stripe does not retry.
func (h *BillingHandler) HandleStripeWebhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing Stripe-Signature header"})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("failed to read webhook payload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read webhook payload"})
		return
	}

	if err := h.billingService.HandleStripeWebhook(c.Request.Context(), signature, payload); err != nil {
		h.mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, WebhookAckResponse{Received: true})
}
