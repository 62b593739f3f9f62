// Package models defines the payloads the terminal client exchanges with the
// RentFinder HTTP API.
package models

import "time"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleRenter Role = "renter"
)

type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusRented    ListingStatus = "rented"
)

type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is what a successful login hands back. The client keeps it in
// memory only and drops it on logout.
type Session struct {
	Account   *Account  `json:"account"`
	Tokens    TokenPair `json:"tokens"`
	SessionID string    `json:"sessionId"`
	Redirect  string    `json:"redirect"`
}

type Listing struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"ownerId"`
	Title       string        `json:"title"`
	Rent        float64       `json:"rent"`
	Bedrooms    int           `json:"bedrooms"`
	Area        string        `json:"area"`
	Address     string        `json:"address"`
	LocationURL string        `json:"locationUrl,omitempty"`
	Contact     string        `json:"contact"`
	Description string        `json:"description"`
	Images      []string      `json:"images"`
	Status      ListingStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Card is one listing as rendered in a list.
type Card struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Area      string        `json:"area"`
	Rent      float64       `json:"rent"`
	Bedrooms  int           `json:"bedrooms"`
	Status    ListingStatus `json:"status"`
	Image     string        `json:"image,omitempty"`
	Href      string        `json:"href,omitempty"`
	EditHref  string        `json:"editHref,omitempty"`
	Navigable bool          `json:"navigable"`
	Muted     bool          `json:"muted"`
}

type OwnerStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Rented    int `json:"rented"`
}

type HomeView struct {
	Stats    *OwnerStats `json:"stats,omitempty"`
	Featured []Card      `json:"featured,omitempty"`
}

// Search states reported by the server.
const (
	StateNotSearched = "not_searched"
	StateResults     = "results"
	StateEmpty       = "empty"
)

type Criteria struct {
	MinRent  *float64 `json:"minRent,omitempty"`
	MaxRent  *float64 `json:"maxRent,omitempty"`
	Bedrooms *float64 `json:"bedrooms,omitempty"`
	Area     *string  `json:"area,omitempty"`
}

type SearchView struct {
	State    string   `json:"state"`
	Criteria Criteria `json:"criteria"`
	Results  []Card   `json:"results"`
	Areas    []string `json:"areas"`
}

// SearchParams are the raw form values of a search. Empty strings mean "any".
type SearchParams struct {
	MinRent  string
	MaxRent  string
	Bedrooms string
	Area     string
}

type Dashboard struct {
	Listings []Card `json:"listings"`
	AddHref  string `json:"addHref"`
}

type Detail struct {
	Listing
	OwnerName   string `json:"ownerName"`
	IsOwner     bool   `json:"isOwner"`
	StatusLabel string `json:"statusLabel"`
	MapURL      string `json:"mapUrl,omitempty"`
	EditHref    string `json:"editHref,omitempty"`
	ToggleLabel string `json:"toggleLabel,omitempty"`
}

type EditView struct {
	Listing *Listing `json:"listing"`
	Areas   []string `json:"areas"`
}

type StatusView struct {
	Status      ListingStatus `json:"status"`
	StatusLabel string        `json:"statusLabel"`
}

// ListingInput carries the text fields of a new listing as typed.
type ListingInput struct {
	Title       string
	Rent        string
	Bedrooms    string
	Area        string
	Address     string
	LocationURL string
	Contact     string
	Description string
}

// ListingPatch is a partial update. Nil fields are left untouched.
type ListingPatch struct {
	Title       *string  `json:"title,omitempty"`
	Rent        *float64 `json:"rent,omitempty"`
	Bedrooms    *int     `json:"bedrooms,omitempty"`
	Area        *string  `json:"area,omitempty"`
	Address     *string  `json:"address,omitempty"`
	LocationURL *string  `json:"locationUrl,omitempty"`
	Contact     *string  `json:"contact,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ListingPatch) Empty() bool {
	return p.Title == nil && p.Rent == nil && p.Bedrooms == nil && p.Area == nil &&
		p.Address == nil && p.LocationURL == nil && p.Contact == nil && p.Description == nil
}
