package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/server/models"
)

// Registry is the shared session state. Implementations must be safe for
// concurrent use.
type Registry interface {
	// CacheRole remembers the normalized role of a session for ttl.
	CacheRole(ctx context.Context, sessionID string, role models.Role, ttl time.Duration) error
	// CachedRole returns the cached role; ok is false on a miss.
	CachedRole(ctx context.Context, sessionID string) (role models.Role, ok bool, err error)
	// Revoke marks a session as signed out for ttl and drops its cached role.
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	Revoked(ctx context.Context, sessionID string) (bool, error)
	// Allow counts one hit against key and reports whether it stays within
	// limit hits per window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Close() error
}
