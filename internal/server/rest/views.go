package rest

import (
	"github.com/dmitrijs2005/rentfinder/internal/server/access"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/dmitrijs2005/rentfinder/internal/server/search"
	"github.com/dmitrijs2005/rentfinder/internal/server/services"
)

type homeView struct {
	Stats    *services.OwnerStats `json:"stats,omitempty"`
	Featured []search.Card        `json:"featured,omitempty"`
}

type searchView struct {
	State    search.State    `json:"state"`
	Criteria search.Criteria `json:"criteria"`
	Results  []search.Card   `json:"results"`
	Areas    []string        `json:"areas"`
}

type dashboardView struct {
	Listings []search.Card `json:"listings"`
	AddHref  string        `json:"addHref"`
}

type detailView struct {
	*models.Listing
	OwnerName   string `json:"ownerName"`
	IsOwner     bool   `json:"isOwner"`
	StatusLabel string `json:"statusLabel"`
	MapURL      string `json:"mapUrl,omitempty"`
	EditHref    string `json:"editHref,omitempty"`
	ToggleLabel string `json:"toggleLabel,omitempty"`
}

type editView struct {
	Listing *models.Listing `json:"listing"`
	Areas   []string        `json:"areas"`
}

type createdView struct {
	ID       string `json:"id"`
	Redirect string `json:"redirect"`
}

type statusView struct {
	Status      models.ListingStatus `json:"status"`
	StatusLabel string               `json:"statusLabel"`
}

func statusLabel(s models.ListingStatus) string {
	if s == models.StatusAvailable {
		return "Available"
	}
	return "Rented"
}

func newDetailView(d *services.ListingDetail) detailView {
	v := detailView{
		Listing:     d.Listing,
		OwnerName:   d.OwnerName,
		IsOwner:     d.IsOwner,
		StatusLabel: statusLabel(d.Listing.Status),
		MapURL:      d.Listing.LocationURL,
	}
	if d.IsOwner {
		v.EditHref = search.EditHref(d.Listing.ID)
		v.ToggleLabel = "Mark as " + statusLabel(d.Listing.Status.Toggle())
	}
	return v
}

func newDashboardView(listings []*models.Listing) dashboardView {
	return dashboardView{
		Listings: search.RenderCards(listings, search.SurfaceOwnerDashboard),
		AddHref:  access.RouteAddHouse,
	}
}
