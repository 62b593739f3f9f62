// Package resettokens stores one-time password reset tokens.
package resettokens

import (
	"context"

	"github.com/dmitrijs2005/rentfinder/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.ResetToken) error
	// Find returns common.ErrNotFound for an unknown token.
	Find(ctx context.Context, token string) (*models.ResetToken, error)
	Delete(ctx context.Context, token string) error
}
