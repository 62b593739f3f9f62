// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/rentfinder/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores t; Expires must already be set.
	Create(ctx context.Context, t *models.RefreshToken) error

	// Find looks up a refresh token by its opaque token string. It returns
	// common.ErrNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token. Deleting a non-existent token is not an
	// error.
	Delete(ctx context.Context, token string) error

	// DeleteBySession removes every token issued to a session.
	DeleteBySession(ctx context.Context, sessionID string) error

	// DeleteByUser removes every token of a user and returns the distinct
	// sessions they belonged to.
	DeleteByUser(ctx context.Context, userID string) ([]string, error)
}
