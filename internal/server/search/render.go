package search

import "github.com/dmitrijs2005/rentfinder/internal/server/models"

// Surface is a place where listings are rendered in bulk.
type Surface int

const (
	SurfaceHome Surface = iota
	SurfaceSearch
	SurfaceOwnerDashboard
)

// Card is the bulk rendering of one listing. Href is empty for inert cards.
type Card struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Area      string               `json:"area"`
	Rent      float64              `json:"rent"`
	Bedrooms  int                  `json:"bedrooms"`
	Status    models.ListingStatus `json:"status"`
	Image     string               `json:"image,omitempty"`
	Href      string               `json:"href,omitempty"`
	EditHref  string               `json:"editHref,omitempty"`
	Navigable bool                 `json:"navigable"`
	Muted     bool                 `json:"muted"`
}

// DetailHref is the route of a listing's detail view.
func DetailHref(id string) string { return "/house/" + id }

// EditHref is the route of a listing's edit view.
func EditHref(id string) string { return "/house/" + id + "/edit" }

// RenderCards applies the status policy: rented listings are inert and muted
// everywhere except the owner's dashboard, where every listing stays
// manageable.
func RenderCards(listings []*models.Listing, surface Surface) []Card {
	cards := make([]Card, 0, len(listings))
	for _, l := range listings {
		c := Card{
			ID:       l.ID,
			Title:    l.Title,
			Area:     l.Area,
			Rent:     l.Rent,
			Bedrooms: l.Bedrooms,
			Status:   l.Status,
		}
		if len(l.Images) > 0 {
			c.Image = l.Images[0]
		}

		if surface == SurfaceOwnerDashboard || l.Status == models.StatusAvailable {
			c.Navigable = true
			c.Href = DetailHref(l.ID)
		} else {
			c.Muted = true
		}
		if surface == SurfaceOwnerDashboard {
			c.EditHref = EditHref(l.ID)
		}

		cards = append(cards, c)
	}
	return cards
}
