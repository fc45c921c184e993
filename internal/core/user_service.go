package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"billing-backend-go/internal/db"
	"billing-backend-go/internal/models"
)

// ErrUserNotFound is returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// userService implements the UserService interface.
type userService struct {
	userRepo db.UserRepository
	gateway  PaymentGateway
	logger   *zap.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, gateway PaymentGateway, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		gateway:  gateway,
		logger:   logger,
	}
}

// GetOrCreate retrieves a user by ID, creating the baseline record on first
// sign-in. Creation writes the free-plan defaults, then provisions a Stripe
// customer tagged with the user's UID and backfills stripeCustomerId.
// Customer provisioning is best-effort: checkout creates one on demand if it
// failed here.
func (s *userService) GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		// Existing profile: touch updatedAt only, like every sign-in does.
		if mergeErr := s.userRepo.Merge(ctx, userID, map[string]interface{}{}); mergeErr != nil {
			s.logger.Warn("failed to touch user document on sign-in",
				zap.String("userID", userID), zap.Error(mergeErr))
		}
		return user, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}

	now := time.Now().UTC()
	newUser := &models.User{
		ID:            userID,
		Email:         email,
		DisplayName:   displayName,
		PhotoURL:      photoURL,
		Plan:          models.PlanFree,
		PlanCode:      PlanCodeFree,
		PlanStatus:    models.PlanStatusActive,
		PlanStartDate: &now,
		Credits:       0,
	}
	if createErr := s.userRepo.Create(ctx, newUser); createErr != nil {
		return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", userID, createErr)
	}

	customerID, custErr := s.gateway.CreateCustomer(ctx, userID, email)
	if custErr != nil {
		s.logger.Warn("failed to provision stripe customer on user creation",
			zap.String("userID", userID), zap.Error(custErr))
		return newUser, true, nil
	}
	if mergeErr := s.userRepo.Merge(ctx, userID, map[string]interface{}{
		"stripeCustomerId": customerID,
	}); mergeErr != nil {
		s.logger.Warn("failed to backfill stripe customer ID",
			zap.String("userID", userID), zap.String("customerID", customerID), zap.Error(mergeErr))
		return newUser, true, nil
	}
	newUser.StripeCustomerID = customerID

	return newUser, true, nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	return user, nil
}
