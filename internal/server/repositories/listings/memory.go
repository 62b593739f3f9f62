package listings

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/dmitrijs2005/rentfinder/internal/server/search"
	"github.com/google/uuid"
)

// MemoryRepository keeps listings in insertion order. Callers always get
// copies.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*models.Listing
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*models.Listing)}
}

func clone(l *models.Listing) *models.Listing {
	c := *l
	c.Images = slices.Clone(l.Images)
	return &c
}

func (r *MemoryRepository) Create(_ context.Context, l *models.Listing) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()
	r.byID[l.ID] = clone(l)
	r.order = append(r.order, l.ID)
	return l, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return clone(l), nil
}

// owned returns the stored record of id if ownerID owns it. Caller holds mu.
func (r *MemoryRepository) owned(id, ownerID string) (*models.Listing, error) {
	l, ok := r.byID[id]
	if !ok || l.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	return l, nil
}

func (r *MemoryRepository) Update(_ context.Context, id, ownerID string, patch models.ListingPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, err := r.owned(id, ownerID)
	if err != nil {
		return err
	}
	patch.Apply(l)
	return nil
}

func (r *MemoryRepository) SetStatus(_ context.Context, id, ownerID string, status models.ListingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, err := r.owned(id, ownerID)
	if err != nil {
		return err
	}
	l.Status = status
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.owned(id, ownerID); err != nil {
		return err
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return nil
}

func (r *MemoryRepository) Find(_ context.Context, q search.Query) ([]*models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Listing, 0)
	for _, id := range r.order {
		if l := r.byID[id]; q.Matches(l) {
			result = append(result, clone(l))
		}
	}
	return result, nil
}
