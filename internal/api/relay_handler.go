package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RelayHandler forwards authenticated JSON requests to the region-qualified
// billing functions deployment and relays the upstream response verbatim.
// It exists for deployments where checkout creation still runs on the legacy
// functions; the base URL must include protocol, host, project ID and region.
type RelayHandler struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewRelayHandler creates a RelayHandler targeting the given base URL.
func NewRelayHandler(baseURL string, logger *zap.Logger) *RelayHandler {
	return &RelayHandler{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// CreateCheckoutSession handles POST /api/functions/create-checkout-session.
// The request body and Authorization header are forwarded as-is; the
// upstream status and JSON body are relayed back. A non-JSON upstream body
// (e.g. a plain "Not Found") is surfaced as {"error": <raw text>} so the
// real server message reaches the caller.
func (h *RelayHandler) CreateCheckoutSession(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read request body"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost,
		h.baseURL+"/createCheckoutSession", bytes.NewReader(body))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to build upstream request"})
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if auth := c.GetHeader("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Error("relay to billing functions failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Upstream request failed"})
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to read upstream response"})
		return
	}

	if !json.Valid(respBody) {
		msg := strings.TrimSpace(string(respBody))
		if msg == "" {
			msg = "Upstream returned non-JSON"
		}
		c.JSON(resp.StatusCode, ErrorResponse{Error: msg})
		return
	}

	c.Data(resp.StatusCode, "application/json", respBody)
}
