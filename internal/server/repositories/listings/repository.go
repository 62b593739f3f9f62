// Package listings declares the listing store contract and its PostgreSQL,
// MongoDB and in-memory implementations.
package listings

import (
	"context"

	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/dmitrijs2005/rentfinder/internal/server/search"
)

// Repository persists listings. Every write that names an owner only touches
// a record whose owner matches, so the store refuses cross-owner writes on
// its own; such a write reports common.ErrNotFound.
type Repository interface {
	// Create stores l, assigning ID and CreatedAt.
	Create(ctx context.Context, l *models.Listing) (*models.Listing, error)

	// Get returns common.ErrNotFound when id is absent.
	Get(ctx context.Context, id string) (*models.Listing, error)

	Update(ctx context.Context, id, ownerID string, patch models.ListingPatch) error
	SetStatus(ctx context.Context, id, ownerID string, status models.ListingStatus) error
	Delete(ctx context.Context, id, ownerID string) error

	// Find returns the listings matching q in store order.
	Find(ctx context.Context, q search.Query) ([]*models.Listing, error)
}
