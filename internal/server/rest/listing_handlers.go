package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/server/access"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/dmitrijs2005/rentfinder/internal/server/search"
	"github.com/dmitrijs2005/rentfinder/internal/server/sessions"
	"github.com/go-chi/chi/v5"
)

var criteriaKeys = []string{"minRent", "maxRent", "bedrooms", "area"}

type statusRequest struct {
	Status models.ListingStatus `json:"status"`
}

func (s *HTTPServer) home(w http.ResponseWriter, r *http.Request) {
	home, err := s.listings.Home(r.Context(), sessions.FromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	v := homeView{Stats: home.Stats}
	if home.Stats == nil {
		v.Featured = search.RenderCards(home.Featured, search.SurfaceHome)
	}
	respondJSON(w, http.StatusOK, v)
}

// search runs an explicit search when any criteria key is present, even
// empty. Without one the page previews every listing as not yet searched.
func (s *HTTPServer) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	explicit := false
	for _, k := range criteriaKeys {
		if q.Has(k) {
			explicit = true
		}
	}

	v := searchView{Areas: models.Areas}
	if !explicit {
		all, err := s.listings.ListAll(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		v.State = search.StateNotSearched
		v.Results = search.RenderCards(all, search.SurfaceSearch)
		respondJSON(w, http.StatusOK, v)
		return
	}

	c := search.ParseCriteria(q.Get("minRent"), q.Get("maxRent"), q.Get("bedrooms"), q.Get("area"))
	res, err := s.listings.Search(r.Context(), c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v.State = res.State
	v.Criteria = res.Criteria
	v.Results = search.RenderCards(res.Listings, search.SurfaceSearch)
	respondJSON(w, http.StatusOK, v)
}

func (s *HTTPServer) ownerDashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessions.FromContext(r.Context())
	own, err := s.listings.ListByOwner(r.Context(), sess.AccountID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newDashboardView(own))
}

func (s *HTTPServer) ownerProfile(w http.ResponseWriter, r *http.Request) {
	account, err := s.identity.Profile(r.Context(), sessions.FromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// addHouse takes a multipart form with the listing fields and one or more
// "images" files.
func (s *HTTPServer) addHouse(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		s.fail(w, r, err)
		return
	}

	rent, err := formFloat(r, "rent")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bedrooms, err := formInt(r, "bedrooms")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	fields := models.ListingFields{
		Title:       r.FormValue("title"),
		Rent:        rent,
		Bedrooms:    bedrooms,
		Area:        r.FormValue("area"),
		Address:     r.FormValue("address"),
		LocationURL: r.FormValue("locationUrl"),
		Contact:     r.FormValue("contact"),
		Description: r.FormValue("description"),
	}

	images, err := openUploads(r, "images")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer images.Close()

	listing, err := s.listings.Create(r.Context(), sessions.FromContext(r.Context()), fields, images.files)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, createdView{ID: listing.ID, Redirect: access.RouteOwner})
}

func (s *HTTPServer) houseDetail(w http.ResponseWriter, r *http.Request) {
	d, err := s.listings.Detail(r.Context(), sessions.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newDetailView(d))
}

// editHouseView sends anyone but the owner, or anyone asking for a missing
// listing, back home.
func (s *HTTPServer) editHouseView(w http.ResponseWriter, r *http.Request) {
	l, err := s.listings.EditView(r.Context(), sessions.FromContext(r.Context()), chi.URLParam(r, "id"))
	if errors.Is(err, common.ErrPermissionDenied) || errors.Is(err, common.ErrNotFound) {
		redirect(w, access.RouteHome)
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, editView{Listing: l, Areas: models.Areas})
}

func (s *HTTPServer) updateHouse(w http.ResponseWriter, r *http.Request) {
	var patch models.ListingPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}

	l, err := s.listings.Update(r.Context(), sessions.FromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

// setStatus sets the status named in the body, or toggles it when the body
// is empty.
func (s *HTTPServer) setStatus(w http.ResponseWriter, r *http.Request) {
	sess := sessions.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req statusRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	status := req.Status
	if status == "" {
		next, err := s.listings.ToggleStatus(r.Context(), sess, id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		status = next
	} else if err := s.listings.SetStatus(r.Context(), sess, id, status); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, statusView{Status: status, StatusLabel: statusLabel(status)})
}

func (s *HTTPServer) deleteHouse(w http.ResponseWriter, r *http.Request) {
	if err := s.listings.Delete(r.Context(), sessions.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, redirectResponse{Redirect: access.RouteOwner})
}
