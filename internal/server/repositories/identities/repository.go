// Package identities stores the authentication records: email and password
// hash.
package identities

import (
	"context"

	"github.com/dmitrijs2005/rentfinder/internal/server/models"
)

type Repository interface {
	// Create assigns an ID and stores id. A taken email yields
	// common.ErrEmailInUse.
	Create(ctx context.Context, id *models.Identity) error
	Get(ctx context.Context, id string) (*models.Identity, error)
	// GetByEmail returns common.ErrNotFound when no identity uses email.
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	UpdatePassword(ctx context.Context, id string, hash []byte) error
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
}
