package repomanager

import (
	"context"

	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/identities"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/listings"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/resettokens"
)

// MemoryRepositoryManager keeps everything in process. State is lost on
// restart.
type MemoryRepositoryManager struct {
	listings      *listings.MemoryRepository
	accounts      *accounts.MemoryRepository
	identities    *identities.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
	resetTokens   *resettokens.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		listings:      listings.NewMemoryRepository(),
		accounts:      accounts.NewMemoryRepository(),
		identities:    identities.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
		resetTokens:   resettokens.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Listings() listings.Repository { return m.listings }

func (m *MemoryRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *MemoryRepositoryManager) Identities() identities.Repository { return m.identities }

func (m *MemoryRepositoryManager) RefreshTokens() refreshtokens.Repository { return m.refreshTokens }

func (m *MemoryRepositoryManager) ResetTokens() resettokens.Repository { return m.resetTokens }

func (m *MemoryRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	return fn(ctx, m)
}

func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }
