// Package sessions holds the per-request session value and the registry
// backing role caching, sign-out revocation and rate limiting.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/rentfinder/internal/server/models"
)

// Session is the authenticated caller, resolved once per request and passed
// explicitly to whatever needs it. A nil *Session is an anonymous caller.
type Session struct {
	AccountID string
	SessionID string
	Role      models.Role
}

func (s *Session) Authenticated() bool {
	return s != nil && s.AccountID != ""
}

// HasRole reports whether the session carries one of roles.
func (s *Session) HasRole(roles ...models.Role) bool {
	if !s.Authenticated() {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
