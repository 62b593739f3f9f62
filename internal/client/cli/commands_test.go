package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/rentfinder/internal/client/models"
	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("img"), 0o600))
	return p
}

func TestRegister_OwnerWithPhoto(t *testing.T) {
	photo := writeImage(t, "me.png")
	s := &fakeService{}
	a, out := newTestApp(t, s, "Olga", "olga@example.com", "secret1", "owner", photo)

	require.NoError(t, a.Register(context.Background()))
	require.NotNil(t, s.registered)
	assert.Equal(t, models.RoleOwner, s.registered.Role)
	assert.Equal(t, "secret1", s.registered.Password)
	require.NotNil(t, s.registered.Photo)
	assert.Equal(t, "image/png", s.registered.Photo.ContentType)
	assert.Contains(t, out.String(), "required for owners")
	assert.Contains(t, out.String(), "Account created for olga@example.com")
	assert.Nil(t, s.session, "registering does not log in")
}

func TestRegister_RenterWithoutPhoto(t *testing.T) {
	s := &fakeService{}
	a, _ := newTestApp(t, s, "Rita", "rita@example.com", "secret1", "renter", "")

	require.NoError(t, a.Register(context.Background()))
	assert.Nil(t, s.registered.Photo)
}

func TestRegister_MissingPhotoFile(t *testing.T) {
	s := &fakeService{}
	a, _ := newTestApp(t, s, "Olga", "olga@example.com", "secret1", "owner", "/nope/missing.png")

	require.Error(t, a.Register(context.Background()))
	assert.Nil(t, s.registered, "nothing is sent when the photo cannot be read")
}

func TestLogin_LandsByRole(t *testing.T) {
	owner := &fakeService{dashboard: models.Dashboard{Listings: []models.Card{
		{ID: "l1", Title: "Flat", Status: models.StatusAvailable, Navigable: true},
		{ID: "l2", Title: "Loft", Status: models.StatusRented, Navigable: true},
	}}}
	a, out := newTestApp(t, owner, "owner@example.com", "secret1")
	require.NoError(t, a.Login(context.Background()))
	assert.Contains(t, out.String(), "Welcome, Olga!")
	assert.Contains(t, out.String(), "Your 2 listings:")
	assert.Contains(t, out.String(), "l2", "owners keep their rented listings reachable")

	renter := &fakeService{}
	a, out = newTestApp(t, renter, "rita@example.com", "secret1")
	require.NoError(t, a.Login(context.Background()))
	assert.Contains(t, out.String(), "No houses listed yet.")

	require.NoError(t, a.Login(context.Background()))
	assert.Contains(t, out.String(), "Already logged in")
}

func TestLogin_Failure(t *testing.T) {
	s := &fakeService{err: common.ErrInvalidCredentials}
	a, _ := newTestApp(t, s, "x@example.com", "bad")

	require.ErrorIs(t, a.Login(context.Background()), common.ErrInvalidCredentials)
	assert.False(t, a.isLoggedIn())
}

func TestLogout(t *testing.T) {
	s := &fakeService{}
	a, out := newTestApp(t, s)

	require.NoError(t, a.Logout(context.Background()))
	assert.Contains(t, out.String(), "Not logged in.")
	assert.False(t, s.loggedOut)

	s.session = &models.Session{Account: &models.Account{Name: "Olga"}}
	require.NoError(t, a.Logout(context.Background()))
	assert.True(t, s.loggedOut)
	assert.False(t, a.isLoggedIn())
}

func TestReset(t *testing.T) {
	s := &fakeService{}
	a, out := newTestApp(t, s, "http://localhost:8080/forgot-password?token=abc123&x=1", "newpass", "newpass")

	require.NoError(t, a.Reset(context.Background()))
	assert.Equal(t, "abc123", s.resetToken)
	assert.Contains(t, out.String(), "Password updated")

	a, _ = newTestApp(t, s, "tok", "one", "two")
	require.ErrorIs(t, a.Reset(context.Background()), common.ErrValidation)
}

func TestTokenFromLink(t *testing.T) {
	assert.Equal(t, "abc", tokenFromLink(" abc "))
	assert.Equal(t, "abc", tokenFromLink("http://h/forgot-password?token=abc"))
	assert.Equal(t, "abc", tokenFromLink("http://h/forgot-password?token=abc#top"))
}

func TestSearch_PassesRawValues(t *testing.T) {
	s := &fakeService{search: models.SearchView{State: models.StateEmpty}}
	a, out := newTestApp(t, s, "5000", "", "2", "Gulshan")

	require.NoError(t, a.Search(context.Background()))
	assert.Equal(t, models.SearchParams{MinRent: "5000", Bedrooms: "2", Area: "Gulshan"}, *s.searched)
	assert.Contains(t, out.String(), "[Gulshan, Dhanmondi]")
	assert.Contains(t, out.String(), "Searching...\nNo houses match your search.")

	s.search = models.SearchView{State: models.StateResults, Results: []models.Card{{ID: "l1", Title: "Flat", Rent: 6000}}}
	a, out = newTestApp(t, s, "", "", "", "")
	require.NoError(t, a.Search(context.Background()))
	assert.Contains(t, out.String(), "1 matching houses:")
	assert.Contains(t, out.String(), "6000/month")
}

func TestRentedCardsHideTheirID(t *testing.T) {
	cards := []models.Card{
		{ID: "open-listing", Title: "Flat", Rent: 6000, Status: models.StatusAvailable, Navigable: true, Href: "/house/open-listing"},
		{ID: "rented-listing", Title: "Loft", Rent: 9000, Status: models.StatusRented, Muted: true},
	}
	s := &fakeService{search: models.SearchView{State: models.StateResults, Results: cards}}

	a, out := newTestApp(t, s, "", "", "", "")
	require.NoError(t, a.Search(context.Background()))
	assert.Contains(t, out.String(), "open-listing")
	assert.NotContains(t, out.String(), "rented-listing")
	assert.Contains(t, out.String(), "(not open)")

	a, out = newTestApp(t, s)
	require.NoError(t, a.Browse(context.Background()))
	assert.Contains(t, out.String(), "open-listing")
	assert.NotContains(t, out.String(), "rented-listing")
}

func TestAdd(t *testing.T) {
	img1, img2 := writeImage(t, "a.jpg"), writeImage(t, "b.webp")
	s := &fakeService{}
	a, out := newTestApp(t, s,
		"Sunny flat", "7500", "2", "Gulshan", "Road 1", "", "0123",
		"Bright rooms", "Near the lake", "",
		img1, img2, "",
	)

	require.NoError(t, a.Add(context.Background()))
	require.NotNil(t, s.added)
	assert.Equal(t, models.ListingInput{
		Title: "Sunny flat", Rent: "7500", Bedrooms: "2", Area: "Gulshan", Address: "Road 1",
		Contact: "0123", Description: "Bright rooms\nNear the lake",
	}, *s.added)
	require.Len(t, s.addedImages, 2)
	assert.Equal(t, "image/webp", s.addedImages[1].ContentType)
	assert.Contains(t, out.String(), "Listing new-id created.")
}

func TestAdd_NeedsImages(t *testing.T) {
	s := &fakeService{}
	a, _ := newTestApp(t, s, "T", "1", "1", "Gulshan", "A", "", "C", "D", "", "")

	require.ErrorIs(t, a.Add(context.Background()), common.ErrValidation)
	assert.Nil(t, s.added)
}

func TestEdit(t *testing.T) {
	s := &fakeService{listing: models.Listing{ID: "l1", Title: "Old", Rent: 5000, Bedrooms: 2, Area: "Gulshan"}}

	a, out := newTestApp(t, s, "New", "", "", "", "", "", "6500", "")
	require.NoError(t, a.Edit(context.Background(), []string{"l1"}))
	require.NotNil(t, s.patch)
	assert.Equal(t, "New", *s.patch.Title)
	assert.Equal(t, 6500.0, *s.patch.Rent)
	assert.Nil(t, s.patch.Bedrooms)
	assert.Nil(t, s.patch.Area)
	assert.Contains(t, out.String(), "Listing l1 updated.")

	s.patch = nil
	a, out = newTestApp(t, s, "", "Gulshan", "", "", "", "", "", "")
	require.NoError(t, a.Edit(context.Background(), []string{"l1"}))
	assert.Nil(t, s.patch, "unchanged answers send nothing")
	assert.Contains(t, out.String(), "Nothing changed.")

	a, _ = newTestApp(t, s, "", "", "", "", "", "", "", "2.5")
	require.ErrorIs(t, a.Edit(context.Background(), []string{"l1"}), common.ErrValidation)
}

func TestStatus(t *testing.T) {
	s := &fakeService{}
	a, out := newTestApp(t, s)

	require.NoError(t, a.Status(context.Background(), []string{"l1"}))
	assert.Equal(t, models.ListingStatus(""), s.status)
	assert.Contains(t, out.String(), "Listing l1 is now Rented.")

	require.NoError(t, a.Status(context.Background(), []string{"l1", "Available"}))
	assert.Equal(t, models.StatusAvailable, s.status)

	require.ErrorIs(t, a.Status(context.Background(), []string{"l1", "sold"}), common.ErrValidation)
}

func TestDelete(t *testing.T) {
	s := &fakeService{}
	a, out := newTestApp(t, s, "n")
	require.NoError(t, a.Delete(context.Background(), []string{"l1"}))
	assert.Empty(t, s.deleted)
	assert.Contains(t, out.String(), "Cancelled.")

	a, out = newTestApp(t, s, "yes")
	require.NoError(t, a.Delete(context.Background(), []string{"l1"}))
	assert.Equal(t, "l1", s.deleted)
	assert.Contains(t, out.String(), "Listing l1 deleted.")
}

func TestShow_PromptsForID(t *testing.T) {
	s := &fakeService{listing: models.Listing{Title: "Flat", Description: "Nice", LocationURL: "https://maps.google.com/?q=1"}}
	a, out := newTestApp(t, s, "l9")

	require.NoError(t, a.Show(context.Background(), nil))
	assert.Contains(t, out.String(), "Flat  [Available]")
	assert.Contains(t, out.String(), "Owner:     Olga")

	a, _ = newTestApp(t, s, "")
	require.ErrorIs(t, a.Show(context.Background(), nil), common.ErrValidation)
}

func TestHome_OwnerStats(t *testing.T) {
	a, out := newTestApp(t, &fakeService{})
	require.NoError(t, a.Home(context.Background()))
	assert.Contains(t, out.String(), "Your listings: 3 total, 2 available, 1 rented")
}
