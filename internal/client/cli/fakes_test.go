package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/rentfinder/internal/client/api"
	"github.com/dmitrijs2005/rentfinder/internal/client/config"
	"github.com/dmitrijs2005/rentfinder/internal/client/models"
	"github.com/dmitrijs2005/rentfinder/internal/filex"
	"github.com/dmitrijs2005/rentfinder/internal/logging"
)

// fakeService records what the commands send and answers from its fields.
type fakeService struct {
	session *models.Session
	pingErr error
	err     error

	registered  *api.RegisterInput
	searched    *models.SearchParams
	added       *models.ListingInput
	addedImages []filex.File
	patch       *models.ListingPatch
	status      models.ListingStatus
	deleted     string
	resetToken  string
	loggedOut   bool

	dashboard models.Dashboard
	listing   models.Listing
	search    models.SearchView
}

func (f *fakeService) Session() *models.Session   { return f.session }
func (f *fakeService) Ping(context.Context) error { return f.pingErr }
func (f *fakeService) Areas(context.Context) ([]string, error) {
	return []string{"Gulshan", "Dhanmondi"}, nil
}

func (f *fakeService) Register(_ context.Context, in api.RegisterInput) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.registered = &in
	return &models.Account{ID: "a1", Name: in.Name, Email: in.Email, Role: in.Role}, nil
}

func (f *fakeService) Login(_ context.Context, email, password string) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	role, redirect := models.RoleRenter, "/search"
	if strings.HasPrefix(email, "owner") {
		role, redirect = models.RoleOwner, "/owner"
	}
	f.session = &models.Session{Account: &models.Account{Name: "Olga", Email: email, Role: role}, Redirect: redirect}
	return f.session, nil
}

func (f *fakeService) Logout(context.Context) error {
	f.loggedOut = true
	f.session = nil
	return f.err
}

func (f *fakeService) ForgotPassword(context.Context, string) (string, error) {
	return "Password reset email sent. Check your inbox.", f.err
}

func (f *fakeService) ResetPassword(_ context.Context, token, _ string) (string, error) {
	f.resetToken = token
	return "Password updated", f.err
}

func (f *fakeService) Home(context.Context) (*models.HomeView, error) {
	return &models.HomeView{Stats: &models.OwnerStats{Total: 3, Available: 2, Rented: 1}}, f.err
}

func (f *fakeService) Browse(context.Context) (*models.SearchView, error) {
	return &models.SearchView{State: models.StateNotSearched, Results: f.search.Results}, f.err
}

func (f *fakeService) Search(_ context.Context, p models.SearchParams) (*models.SearchView, error) {
	f.searched = &p
	v := f.search
	return &v, f.err
}

func (f *fakeService) Dashboard(context.Context) (*models.Dashboard, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.dashboard, nil
}

func (f *fakeService) Profile(context.Context) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session.Account, nil
}

func (f *fakeService) Detail(_ context.Context, id string) (*models.Detail, error) {
	if f.err != nil {
		return nil, f.err
	}
	l := f.listing
	l.ID = id
	return &models.Detail{Listing: l, OwnerName: "Olga", StatusLabel: "Available"}, nil
}

func (f *fakeService) EditView(context.Context, string) (*models.EditView, error) {
	if f.err != nil {
		return nil, f.err
	}
	l := f.listing
	return &models.EditView{Listing: &l}, nil
}

func (f *fakeService) AddHouse(_ context.Context, in models.ListingInput, images []filex.File) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.added = &in
	f.addedImages = images
	return "new-id", nil
}

func (f *fakeService) UpdateHouse(_ context.Context, id string, p models.ListingPatch) (*models.Listing, error) {
	f.patch = &p
	l := f.listing
	l.ID = id
	return &l, f.err
}

func (f *fakeService) SetStatus(_ context.Context, _ string, status models.ListingStatus) (*models.StatusView, error) {
	f.status = status
	if status == "" {
		status = models.StatusRented
	}
	return &models.StatusView{Status: status}, f.err
}

func (f *fakeService) DeleteHouse(_ context.Context, id string) error {
	f.deleted = id
	return f.err
}

// newTestApp builds an App reading the given lines, with passwords read as
// plain lines.
func newTestApp(t *testing.T, s *fakeService, lines ...string) (*App, *bytes.Buffer) {
	t.Helper()

	orig := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	return newApp(cfg, s, logging.Nop{}, in, &out), &out
}
