// Package accounts stores account profiles keyed by identity id.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/rentfinder/internal/server/models"
)

type Repository interface {
	// Create stores a profile under a.ID, which must be the identity id.
	Create(ctx context.Context, a *models.Account) error
	// Get returns the stored profile as is, role included, or
	// common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Account, error)
}
