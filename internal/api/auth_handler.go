package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"billing-backend-go/internal/core"
	"billing-backend-go/internal/middleware"
)

// AuthHandler handles authentication related API endpoints.
type AuthHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(us core.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{userService: us, logger: logger}
}

// InitializeUserProfile handles POST /api/v1/users/initialize.
// Clients call it after a Firebase sign-in event so the backend user record
// exists; first-time callers get the baseline free-plan document and a
// provisioned Stripe customer.
func (h *AuthHandler) InitializeUserProfile(c *gin.Context) {
	userID, ok := contextString(c, middleware.ContextUserID)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}
	email, _ := contextString(c, middleware.ContextUserEmail)
	displayName, _ := contextString(c, middleware.ContextDisplayName)
	photoURL, _ := contextString(c, middleware.ContextPhotoURL)

	user, created, err := h.userService.GetOrCreate(c.Request.Context(), userID, email, displayName, photoURL)
	if err != nil {
		h.logger.Error("failed to initialize user profile", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to initialize user profile", Details: err.Error()})
		return
	}

	if created {
		c.JSON(http.StatusCreated, user)
	} else {
		c.JSON(http.StatusOK, user)
	}
}

// contextString reads a string value the auth middleware stored in the Gin
// context.
func contextString(c *gin.Context, key string) (string, bool) {
	raw, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
