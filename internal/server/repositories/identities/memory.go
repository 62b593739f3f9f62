package identities

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.Identity
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.Identity),
		byEmail: make(map[string]string),
	}
}

func copyOf(id *models.Identity) *models.Identity {
	c := *id
	c.PasswordHash = slices.Clone(id.PasswordHash)
	return &c
}

func (r *MemoryRepository) Create(_ context.Context, id *models.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[id.Email]; taken {
		return common.ErrEmailInUse
	}
	id.ID = uuid.NewString()
	id.CreatedAt = time.Now().UTC()
	r.byID[id.ID] = copyOf(id)
	r.byEmail[id.Email] = id.ID
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return copyOf(stored), nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, common.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *MemoryRepository) UpdatePassword(_ context.Context, id string, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	stored.PasswordHash = slices.Clone(hash)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.byID[id]; ok {
		delete(r.byEmail, stored.Email)
		delete(r.byID, id)
	}
	return nil
}
