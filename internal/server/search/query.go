package search

import "github.com/dmitrijs2005/rentfinder/internal/server/models"

// Field names a listing attribute a predicate can test.
type Field string

const (
	FieldArea     Field = "area"
	FieldBedrooms Field = "bedrooms"
	FieldRent     Field = "rent"
	FieldOwner    Field = "ownerId"
)

type Op string

const (
	OpEq  Op = "=="
	OpGte Op = ">="
	OpLte Op = "<="
)

// Predicate is one equality or range test against a listing field.
type Predicate struct {
	Field Field
	Op    Op
	Value any
}

// Query is the AND of its predicates. A query without predicates matches
// every listing.
type Query struct {
	Predicates []Predicate
}

// Build appends exactly one predicate per present criterion.
func Build(c Criteria) Query {
	var q Query
	if c.Area != nil {
		q.Predicates = append(q.Predicates, Predicate{Field: FieldArea, Op: OpEq, Value: *c.Area})
	}
	if c.Bedrooms != nil {
		q.Predicates = append(q.Predicates, Predicate{Field: FieldBedrooms, Op: OpEq, Value: *c.Bedrooms})
	}
	if c.MinRent != nil {
		q.Predicates = append(q.Predicates, Predicate{Field: FieldRent, Op: OpGte, Value: *c.MinRent})
	}
	if c.MaxRent != nil {
		q.Predicates = append(q.Predicates, Predicate{Field: FieldRent, Op: OpLte, Value: *c.MaxRent})
	}
	return q
}

// ByOwner selects the listings of one owner.
func ByOwner(ownerID string) Query {
	return Query{Predicates: []Predicate{{Field: FieldOwner, Op: OpEq, Value: ownerID}}}
}

// All reports whether q has no predicates.
func (q Query) All() bool {
	return len(q.Predicates) == 0
}

// Matches evaluates q against l in memory.
func (q Query) Matches(l *models.Listing) bool {
	for _, p := range q.Predicates {
		if !p.Matches(l) {
			return false
		}
	}
	return true
}

func (p Predicate) Matches(l *models.Listing) bool {
	switch p.Field {
	case FieldArea:
		v, ok := p.Value.(string)
		return ok && p.Op == OpEq && l.Area == v
	case FieldOwner:
		v, ok := p.Value.(string)
		return ok && p.Op == OpEq && l.OwnerID == v
	case FieldBedrooms:
		v, ok := p.Value.(float64)
		return ok && compare(float64(l.Bedrooms), p.Op, v)
	case FieldRent:
		v, ok := p.Value.(float64)
		return ok && compare(l.Rent, p.Op, v)
	}
	return false
}

func compare(have float64, op Op, want float64) bool {
	switch op {
	case OpEq:
		return have == want
	case OpGte:
		return have >= want
	case OpLte:
		return have <= want
	}
	return false
}
