package search

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rentfinder/internal/server/models"
)

// State tracks a search interaction. "Searched with no results" is distinct
// from "not searched yet". A search is answered within one request, so the
// in-flight state belongs to the client and is never reported here.
type State string

const (
	StateNotSearched State = "not_searched"
	StateResults     State = "results"
	StateEmpty       State = "empty"
)

// Finder runs one query against the listing store.
type Finder interface {
	Find(ctx context.Context, q Query) ([]*models.Listing, error)
}

// Result is the outcome of an explicit search.
type Result struct {
	State    State
	Criteria Criteria
	Listings []*models.Listing
}

type Engine struct {
	finder Finder
}

func NewEngine(f Finder) *Engine {
	return &Engine{finder: f}
}

// Search issues a single AND query built from c. Empty criteria degrade to
// "all listings". Result order is whatever the store returns.
func (e *Engine) Search(ctx context.Context, c Criteria) (*Result, error) {
	listings, err := e.finder.Find(ctx, Build(c))
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}

	state := StateResults
	if len(listings) == 0 {
		state = StateEmpty
	}
	return &Result{State: state, Criteria: c, Listings: listings}, nil
}
