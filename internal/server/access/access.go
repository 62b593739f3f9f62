// Package access decides whether a session may render a route. The decision
// is a pure function of the session and the route's requirement.
package access

import (
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/dmitrijs2005/rentfinder/internal/server/sessions"
)

const (
	RouteHome           = "/"
	RouteLogin          = "/login"
	RouteRegister       = "/register"
	RouteForgotPassword = "/forgot-password"
	RouteSearch         = "/search"
	RouteOwner          = "/owner"
	RouteOwnerProfile   = "/owner/profile"
	RouteAddHouse       = "/owner/add-house"
	RouteHouse          = "/house/{id}"
	RouteHouseEdit      = "/house/{id}/edit"
	RouteHouseStatus    = "/house/{id}/status"
)

// Requirement guards a route. The zero value is a public route.
type Requirement struct {
	Authenticated bool
	Roles         []models.Role
}

func Public() Requirement { return Requirement{} }

func Authenticated() Requirement { return Requirement{Authenticated: true} }

// Roles requires an authenticated session holding one of roles.
func Roles(roles ...models.Role) Requirement {
	return Requirement{Authenticated: true, Roles: roles}
}

// Decision is either Allow or a redirect to another route.
type Decision struct {
	Redirect string
}

func Allow() Decision { return Decision{} }

func RedirectTo(route string) Decision { return Decision{Redirect: route} }

func (d Decision) Allowed() bool { return d.Redirect == "" }

// Evaluate applies req to s. Unauthenticated callers go to the login route
// before any role is considered; a role mismatch goes home.
func Evaluate(s *sessions.Session, req Requirement) Decision {
	needsAuth := req.Authenticated || len(req.Roles) > 0
	if needsAuth && !s.Authenticated() {
		return RedirectTo(RouteLogin)
	}
	if len(req.Roles) > 0 && !s.HasRole(req.Roles...) {
		return RedirectTo(RouteHome)
	}
	return Allow()
}

// Routes is the view route table.
var Routes = map[string]Requirement{
	RouteHome:           Public(),
	RouteLogin:          Public(),
	RouteRegister:       Public(),
	RouteForgotPassword: Public(),
	RouteSearch:         Authenticated(),
	RouteOwner:          Authenticated(),
	RouteOwnerProfile:   Authenticated(),
	RouteAddHouse:       Authenticated(),
	RouteHouse:          Public(),
	RouteHouseEdit:      Roles(models.RoleOwner),
	RouteHouseStatus:    Roles(models.RoleOwner),
}

// For returns the requirement of route; unknown routes are public.
func For(route string) Requirement {
	return Routes[route]
}

// Landing is where a freshly signed-in account is sent.
func Landing(role models.Role) string {
	if models.NormalizeRole(string(role)) == models.RoleOwner {
		return RouteOwner
	}
	return RouteSearch
}
