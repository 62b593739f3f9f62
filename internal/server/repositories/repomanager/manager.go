// Package repomanager selects a storage backend from the store DSN and vends
// the repositories bound to it.
package repomanager

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/identities"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/listings"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/resettokens"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Listings() listings.Repository
	Accounts() accounts.Repository
	Identities() identities.Repository
	RefreshTokens() refreshtokens.Repository
	ResetTokens() resettokens.Repository
	// WithinTx runs fn with repositories sharing one unit of work where the
	// backend supports it, and directly otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error
	Close(ctx context.Context) error
}

// New opens the backend named by the DSN scheme: postgres(ql), mongodb(+srv)
// or memory.
func New(ctx context.Context, dsn, mongoDatabase string) (RepositoryManager, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse store dsn: %w", err)
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		return NewPostgresRepositoryManager(ctx, dsn)
	case "mongodb", "mongodb+srv":
		return NewMongoRepositoryManager(ctx, dsn, mongoDatabase)
	case "memory":
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
}
