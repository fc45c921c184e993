package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"billing-backend-go/internal/models"
)

func TestGetOrCreate_FirstSignInCreatesBaseline(t *testing.T) {
	repo := newFakeUserRepo()
	gw := newFakeGateway()
	gw.nextCustomerID = "cus_brand_new"
	svc := NewUserService(repo, gw, zap.NewNop())

	user, created, err := svc.GetOrCreate(context.Background(), "u1", "u1@example.test", "User One", "https://img.example.test/u1.png")
	require.NoError(t, err)
	assert.True(t, created)

	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "u1@example.test", user.Email)
	assert.Equal(t, "User One", user.DisplayName)
	assert.Equal(t, models.PlanFree, user.Plan)
	assert.Equal(t, PlanCodeFree, user.PlanCode)
	assert.Equal(t, models.PlanStatusActive, user.PlanStatus)
	assert.NotNil(t, user.PlanStartDate)
	assert.Zero(t, user.Credits)
	assert.Equal(t, "cus_brand_new", user.StripeCustomerID)

	assert.Equal(t, []string{"u1"}, gw.createCustomerCalls)
	assert.Equal(t, "cus_brand_new", repo.users["u1"].StripeCustomerID)
	assert.Equal(t, 1, repo.createCount)
}

func TestGetOrCreate_ExistingUserNotRecreated(t *testing.T) {
	repo := newFakeUserRepo(proUser("u1"))
	gw := newFakeGateway()
	svc := NewUserService(repo, gw, zap.NewNop())

	user, created, err := svc.GetOrCreate(context.Background(), "u1", "other@example.test", "Other Name", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, models.PlanPro, user.Plan)
	assert.Zero(t, repo.createCount)
	assert.Empty(t, gw.createCustomerCalls)
	// Sign-in still touches the document.
	assert.Equal(t, 1, repo.mergeCount)
}

func TestGetOrCreate_CustomerProvisioningIsBestEffort(t *testing.T) {
	repo := newFakeUserRepo()
	gw := newFakeGateway()
	gw.createCustomerErr = fmt.Errorf("stripe: unavailable")
	svc := NewUserService(repo, gw, zap.NewNop())

	user, created, err := svc.GetOrCreate(context.Background(), "u1", "u1@example.test", "", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, user.StripeCustomerID)
	assert.Equal(t, 1, repo.createCount)
}

func TestGetOrCreate_RepoFailureSurfaced(t *testing.T) {
	repo := newFakeUserRepo()
	repo.getErr = fmt.Errorf("firestore: deadline exceeded")
	svc := NewUserService(repo, newFakeGateway(), zap.NewNop())

	_, _, err := svc.GetOrCreate(context.Background(), "u1", "", "", "")
	require.Error(t, err)
	assert.Zero(t, repo.writes())
}

func TestGetByID(t *testing.T) {
	repo := newFakeUserRepo(proUser("u1"))
	svc := NewUserService(repo, newFakeGateway(), zap.NewNop())

	user, err := svc.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = svc.GetByID(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}
