package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/logging"
	"github.com/dmitrijs2005/rentfinder/internal/server/events"
	"github.com/dmitrijs2005/rentfinder/internal/server/media"
	"github.com/dmitrijs2005/rentfinder/internal/server/metrics"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rentfinder/internal/server/search"
	"github.com/dmitrijs2005/rentfinder/internal/server/sessions"
)

// FeaturedLimit caps the listings previewed on the home view.
const FeaturedLimit = 4

// DefaultOwnerName is shown when a listing's owner has no readable profile.
const DefaultOwnerName = "House Owner"

// ListingDetail is a listing together with what the detail view shows about
// its owner.
type ListingDetail struct {
	Listing   *models.Listing
	OwnerName string
	IsOwner   bool
}

// OwnerStats counts an owner's listings by status.
type OwnerStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Rented    int `json:"rented"`
}

// HomeView is either an owner's stats or a short featured list.
type HomeView struct {
	Stats    *OwnerStats
	Featured []*models.Listing
}

// ListingService creates, changes and queries listings. Every change is
// checked against the caller's session before it reaches the store.
type ListingService struct {
	repos     repomanager.RepositoryManager
	engine    *search.Engine
	uploader  media.Uploader
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       logging.Logger
	now       func() time.Time
}

func NewListingService(m repomanager.RepositoryManager, u media.Uploader, p events.Publisher,
	mt *metrics.Metrics, log logging.Logger) *ListingService {
	return &ListingService{
		repos:     m,
		engine:    search.NewEngine(m.Listings()),
		uploader:  u,
		publisher: p,
		metrics:   mt,
		log:       log.With("module", "listings"),
		now:       time.Now,
	}
}

// Create uploads images, in order, and then writes an available listing
// owned by the caller. Only owner accounts may create listings.
func (s *ListingService) Create(ctx context.Context, sess *sessions.Session, fields models.ListingFields, images []media.File) (*models.Listing, error) {
	if !sess.Authenticated() {
		return nil, common.ErrUnauthorized
	}
	if !sess.HasRole(models.RoleOwner) {
		return nil, common.ErrPermissionDenied
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, common.Validationf("at least one image is required")
	}

	urls, err := media.UploadMany(ctx, s.uploader, images)
	s.metrics.Upload(err == nil)
	if err != nil {
		return nil, err
	}

	listing, err := s.repos.Listings().Create(ctx, &models.Listing{
		OwnerID:     sess.AccountID,
		Title:       fields.Title,
		Rent:        fields.Rent,
		Bedrooms:    fields.Bedrooms,
		Area:        fields.Area,
		Address:     fields.Address,
		LocationURL: fields.LocationURL,
		Contact:     fields.Contact,
		Description: fields.Description,
		Images:      urls,
		Status:      models.StatusAvailable,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating listing: %w", err)
	}

	s.metrics.ListingWrite("create")
	s.publish(ctx, events.SubjectListingCreated, listing)
	s.log.Info(ctx, "listing created", "listing_id", listing.ID, "owner_id", listing.OwnerID)
	return listing, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (*models.Listing, error) {
	return s.repos.Listings().Get(ctx, id)
}

// Update applies a partial edit. Concurrent edits are last write wins per
// field.
func (s *ListingService) Update(ctx context.Context, sess *sessions.Session, id string, patch models.ListingPatch) (*models.Listing, error) {
	listing, err := s.owned(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return listing, nil
	}

	if err := s.repos.Listings().Update(ctx, id, sess.AccountID, patch); err != nil {
		return nil, err
	}
	patch.Apply(listing)

	s.metrics.ListingWrite("update")
	s.publish(ctx, events.SubjectListingUpdated, listing)
	return listing, nil
}

func (s *ListingService) SetStatus(ctx context.Context, sess *sessions.Session, id string, status models.ListingStatus) error {
	if !status.Valid() {
		return common.Validationf("unknown status %q", status)
	}
	listing, err := s.owned(ctx, sess, id)
	if err != nil {
		return err
	}
	return s.setStatus(ctx, listing, status)
}

// ToggleStatus flips available and rented and returns the new status.
func (s *ListingService) ToggleStatus(ctx context.Context, sess *sessions.Session, id string) (models.ListingStatus, error) {
	listing, err := s.owned(ctx, sess, id)
	if err != nil {
		return "", err
	}
	next := listing.Status.Toggle()
	if err := s.setStatus(ctx, listing, next); err != nil {
		return "", err
	}
	return next, nil
}

func (s *ListingService) setStatus(ctx context.Context, listing *models.Listing, status models.ListingStatus) error {
	if err := s.repos.Listings().SetStatus(ctx, listing.ID, listing.OwnerID, status); err != nil {
		return err
	}
	listing.Status = status

	s.metrics.ListingWrite("status")
	s.publish(ctx, events.SubjectListingStatusChanged, listing)
	return nil
}

// Delete removes a listing for good. Its images stay in remote storage.
func (s *ListingService) Delete(ctx context.Context, sess *sessions.Session, id string) error {
	listing, err := s.owned(ctx, sess, id)
	if err != nil {
		return err
	}
	if err := s.repos.Listings().Delete(ctx, id, sess.AccountID); err != nil {
		return err
	}

	s.metrics.ListingWrite("delete")
	s.publish(ctx, events.SubjectListingDeleted, listing)
	s.log.Info(ctx, "listing deleted", "listing_id", id, "owner_id", listing.OwnerID)
	return nil
}

func (s *ListingService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Listing, error) {
	return s.repos.Listings().Find(ctx, search.ByOwner(ownerID))
}

// ListAll returns every listing in store order.
func (s *ListingService) ListAll(ctx context.Context) ([]*models.Listing, error) {
	return s.repos.Listings().Find(ctx, search.Query{})
}

func (s *ListingService) Search(ctx context.Context, c search.Criteria) (*search.Result, error) {
	res, err := s.engine.Search(ctx, c)
	if err != nil {
		return nil, err
	}
	s.metrics.Search(string(res.State))
	return res, nil
}

// Detail loads a listing with its owner's display name.
func (s *ListingService) Detail(ctx context.Context, sess *sessions.Session, id string) (*ListingDetail, error) {
	listing, err := s.repos.Listings().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ownerName := DefaultOwnerName
	if owner, err := s.repos.Accounts().Get(ctx, listing.OwnerID); err == nil && owner.Name != "" {
		ownerName = owner.Name
	}

	return &ListingDetail{
		Listing:   listing,
		OwnerName: ownerName,
		IsOwner:   sess.Authenticated() && sess.AccountID == listing.OwnerID,
	}, nil
}

// Home gives owners stats over their own listings and everyone else the
// first FeaturedLimit listings.
func (s *ListingService) Home(ctx context.Context, sess *sessions.Session) (*HomeView, error) {
	if sess.HasRole(models.RoleOwner) {
		own, err := s.ListByOwner(ctx, sess.AccountID)
		if err != nil {
			return nil, err
		}
		stats := &OwnerStats{Total: len(own)}
		for _, l := range own {
			if l.Status == models.StatusRented {
				stats.Rented++
			} else {
				stats.Available++
			}
		}
		return &HomeView{Stats: stats}, nil
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > FeaturedLimit {
		all = all[:FeaturedLimit]
	}
	return &HomeView{Featured: all}, nil
}

// EditView returns the listing for its owner's edit form.
func (s *ListingService) EditView(ctx context.Context, sess *sessions.Session, id string) (*models.Listing, error) {
	return s.owned(ctx, sess, id)
}

// owned loads a listing and checks the caller owns it.
func (s *ListingService) owned(ctx context.Context, sess *sessions.Session, id string) (*models.Listing, error) {
	if !sess.Authenticated() {
		return nil, common.ErrUnauthorized
	}
	listing, err := s.repos.Listings().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != sess.AccountID {
		return nil, common.ErrPermissionDenied
	}
	return listing, nil
}

func (s *ListingService) publish(ctx context.Context, subject string, l *models.Listing) {
	ev := events.ListingEvent{ListingID: l.ID, OwnerID: l.OwnerID, Status: l.Status, At: s.now().UTC()}
	if err := s.publisher.Publish(ctx, subject, ev); err != nil {
		s.log.Warn(ctx, "listing event not published", "subject", subject, "listing_id", l.ID, "error", err)
	}
}
