// Package models defines the records persisted by the store: listings,
// accounts, identities and tokens.
package models

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/common"
)

type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusRented    ListingStatus = "rented"
)

// Valid reports whether s is one of the two enumerated statuses.
func (s ListingStatus) Valid() bool {
	return s == StatusAvailable || s == StatusRented
}

// Toggle returns the other status.
func (s ListingStatus) Toggle() ListingStatus {
	if s == StatusAvailable {
		return StatusRented
	}
	return StatusAvailable
}

// Listing is a rentable property. OwnerID never changes after creation.
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

// ListingFields are the owner-supplied attributes of a new listing.
type ListingFields struct {
	Title       string
	Rent        float64
	Bedrooms    int
	Area        string
	Address     string
	LocationURL string
	Contact     string
	Description string
}

// Validate checks the fields required when a listing is created.
func (f ListingFields) Validate() error {
	switch {
	case strings.TrimSpace(f.Title) == "":
		return common.Validationf("title is required")
	case f.Rent < 0:
		return common.Validationf("rent must not be negative")
	case f.Bedrooms < 1:
		return common.Validationf("bedrooms must be a positive number")
	case !IsArea(f.Area):
		return common.Validationf("unknown area %q", f.Area)
	case strings.TrimSpace(f.Address) == "":
		return common.Validationf("address is required")
	case strings.TrimSpace(f.Contact) == "":
		return common.Validationf("contact is required")
	case strings.TrimSpace(f.Description) == "":
		return common.Validationf("description is required")
	}
	return validateLocationURL(f.LocationURL)
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

func (p ListingPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return common.Validationf("title is required")
	}
	if p.Rent != nil && *p.Rent < 0 {
		return common.Validationf("rent must not be negative")
	}
	if p.Bedrooms != nil && *p.Bedrooms < 1 {
		return common.Validationf("bedrooms must be a positive number")
	}
	if p.Area != nil && !IsArea(*p.Area) {
		return common.Validationf("unknown area %q", *p.Area)
	}
	if p.Address != nil && strings.TrimSpace(*p.Address) == "" {
		return common.Validationf("address is required")
	}
	if p.Contact != nil && strings.TrimSpace(*p.Contact) == "" {
		return common.Validationf("contact is required")
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return common.Validationf("description is required")
	}
	if p.LocationURL != nil {
		return validateLocationURL(*p.LocationURL)
	}
	return nil
}

// Apply copies the set fields of p onto l.
func (p ListingPatch) Apply(l *Listing) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Rent != nil {
		l.Rent = *p.Rent
	}
	if p.Bedrooms != nil {
		l.Bedrooms = *p.Bedrooms
	}
	if p.Area != nil {
		l.Area = *p.Area
	}
	if p.Address != nil {
		l.Address = *p.Address
	}
	if p.LocationURL != nil {
		l.LocationURL = *p.LocationURL
	}
	if p.Contact != nil {
		l.Contact = *p.Contact
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
}

func validateLocationURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return common.Validationf("location must be an http(s) link")
	}
	return nil
}

// Areas is the fixed set of zones a listing can be placed in.
var Areas = []string{
	"Adajan", "Althan", "Amroli", "Athwa", "Bhatar", "Citylight", "Dumas",
	"Ghod Dod Road", "Jahangirpura", "Katargam", "Limbayat", "Magdalla",
	"Majura Gate", "Mota Varachha", "Nanpura", "Pal", "Palanpur", "Pandesara",
	"Parle Point", "Piplod", "Rander", "Sachin", "Sarthana", "Udhna", "Umra",
	"Varachha", "Vesu",
}

// IsArea reports whether name is one of Areas (exact, case-sensitive).
func IsArea(name string) bool {
	return slices.Contains(Areas, name)
}
