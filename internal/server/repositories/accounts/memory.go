package accounts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
)

type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]models.Account)}
}

func (r *MemoryRepository) Create(_ context.Context, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.ID]; ok {
		return fmt.Errorf("account %s already exists", a.ID)
	}
	a.CreatedAt = time.Now().UTC()
	r.byID[a.ID] = *a
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &a, nil
}
