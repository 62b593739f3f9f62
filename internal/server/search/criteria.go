// Package search turns sparse filter criteria into a store query and decides
// how the matching listings are rendered.
package search

import (
	"math"
	"strconv"
	"strings"
)

// Criteria is the transient filter a renter fills in. Every field is optional.
type Criteria struct {
	MinRent  *float64 `json:"minRent,omitempty"`
	MaxRent  *float64 `json:"maxRent,omitempty"`
	Bedrooms *float64 `json:"bedrooms,omitempty"`
	Area     *string  `json:"area,omitempty"`
}

// ParseCriteria builds Criteria from raw form values. Empty or non-numeric
// numbers are treated as absent, never as zero. A fractional bedrooms value
// is kept and simply matches no listing.
func ParseCriteria(minRent, maxRent, bedrooms, area string) Criteria {
	var c Criteria
	c.MinRent = parseNumber(minRent)
	c.MaxRent = parseNumber(maxRent)
	c.Bedrooms = parseNumber(bedrooms)
	if a := strings.TrimSpace(area); a != "" {
		c.Area = &a
	}
	return c
}

func parseNumber(raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Empty reports whether no criterion is present.
func (c Criteria) Empty() bool {
	return c.MinRent == nil && c.MaxRent == nil && c.Bedrooms == nil && c.Area == nil
}
