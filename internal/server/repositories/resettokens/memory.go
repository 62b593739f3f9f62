package resettokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
)

type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]models.ResetToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]models.ResetToken)}
}

func (r *MemoryRepository) Create(_ context.Context, t *models.ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.CreatedAt = time.Now().UTC()
	r.tokens[t.Token] = *t
	return nil
}

func (r *MemoryRepository) Find(_ context.Context, token string) (*models.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}
