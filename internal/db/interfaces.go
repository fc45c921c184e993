package db

import (
	"context"

	"billing-backend-go/internal/models"
)

// UserRepository defines the interface for user document storage operations.
//
// Merge and AddCredits are the only write paths used by webhook
// reconciliation: Merge is an unconditional merge-write (last write wins
// under concurrent events), AddCredits is a transactional read-modify-write
// so concurrent credit additions cannot lose updates.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// Merge writes only the named fields of the user document, leaving all
	// other fields untouched. The document is created if it does not exist.
	Merge(ctx context.Context, userID string, fields map[string]interface{}) error
	// AddCredits atomically increments the credits balance by amount.
	AddCredits(ctx context.Context, userID string, amount int64) error
}
