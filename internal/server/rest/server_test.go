package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/dmitrijs2005/rentfinder/internal/logging"
	"github.com/dmitrijs2005/rentfinder/internal/server/config"
	"github.com/dmitrijs2005/rentfinder/internal/server/events"
	"github.com/dmitrijs2005/rentfinder/internal/server/mailer"
	"github.com/dmitrijs2005/rentfinder/internal/server/media"
	"github.com/dmitrijs2005/rentfinder/internal/server/metrics"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rentfinder/internal/server/search"
	"github.com/dmitrijs2005/rentfinder/internal/server/services"
	"github.com/dmitrijs2005/rentfinder/internal/server/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUploader struct{}

func (stubUploader) UploadOne(_ context.Context, f media.File) (string, error) {
	if err := media.Validate(f); err != nil {
		return "", err
	}
	return "https://img.test/" + f.Name, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	repos := repomanager.NewMemoryRepositoryManager()
	m := metrics.New("test")
	log := logging.Nop{}
	is := services.NewIdentityService(repos, sessions.NewMemoryRegistry(), stubUploader{}, mailer.NewLogMailer(log), m, log, cfg)
	ls := services.NewListingService(repos, stubUploader{}, events.Noop{}, m, log)

	ts := httptest.NewServer(NewHTTPServer(cfg, log, is, ls, m).Handler())
	t.Cleanup(ts.Close)
	return ts
}

type part struct {
	field, filename, contentType, content string
}

func multipartBody(t *testing.T, fields map[string]string, files ...part) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body io.Reader, contentType string) (*http.Response, []byte) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	hc := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := hc.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}

func (c *client) json(method, path string, payload any) (*http.Response, []byte) {
	c.t.Helper()
	if payload == nil {
		return c.do(method, path, nil, "")
	}
	b, err := json.Marshal(payload)
	require.NoError(c.t, err)
	return c.do(method, path, bytes.NewReader(b), "application/json")
}

func (c *client) register(name, email, role string, photo bool) *http.Response {
	c.t.Helper()
	var files []part
	if photo {
		files = append(files, part{"photo", "face.png", "image/png", "png"})
	}
	body, ct := multipartBody(c.t, map[string]string{
		"name": name, "email": email, "password": "secret1", "role": role,
	}, files...)
	resp, _ := c.do(http.MethodPost, "/api/auth/register", body, ct)
	return resp
}

func (c *client) login(email string) services.SignInResult {
	c.t.Helper()
	resp, data := c.json(http.MethodPost, "/api/auth/login", loginRequest{Email: email, Password: "secret1"})
	require.Equal(c.t, http.StatusOK, resp.StatusCode, string(data))
	var res services.SignInResult
	require.NoError(c.t, json.Unmarshal(data, &res))
	c.token = res.Tokens.AccessToken
	return res
}

func (c *client) addHouse(title, bedrooms string) string {
	c.t.Helper()
	body, ct := multipartBody(c.t, map[string]string{
		"title": title, "rent": "12000", "bedrooms": bedrooms, "area": "Vesu",
		"address": "Block C, Vesu", "contact": "9876543210", "description": "Corner flat",
	}, part{"images", "front.jpg", "image/jpeg", "jpg"}, part{"images", "hall.webp", "image/webp", "webp"})
	resp, data := c.do(http.MethodPost, "/owner/add-house", body, ct)
	require.Equal(c.t, http.StatusCreated, resp.StatusCode, string(data))
	var created createdView
	require.NoError(c.t, json.Unmarshal(data, &created))
	assert.Equal(c.t, "/owner", created.Redirect)
	return created.ID
}

func TestHealthAndAreas(t *testing.T) {
	ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}

	resp, _ := c.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := c.do(http.MethodGet, "/api/areas", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var areas []string
	require.NoError(t, json.Unmarshal(data, &areas))
	assert.Equal(t, models.Areas, areas)

	resp, _ = c.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGate_AnonymousIsSentToLogin(t *testing.T) {
	ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}

	for _, path := range []string{"/search", "/owner", "/owner/profile", "/house/x/edit"} {
		resp, data := c.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
		assert.JSONEq(t, `{"redirect":"/login"}`, string(data), path)
	}

	resp, _ := c.do(http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGate_RenterCannotEdit(t *testing.T) {
	ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}
	require.Equal(t, http.StatusCreated, c.register("Ravi", "ravi@rent.test", "user", false).StatusCode)
	res := c.login("ravi@rent.test")
	assert.Equal(t, "/search", res.Redirect)

	resp, _ := c.do(http.MethodGet, "/house/any/edit", nil, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = c.do(http.MethodGet, "/search", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegister_OwnerNeedsPhoto(t *testing.T) {
	ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}

	resp := c.register("Asha", "asha@rent.test", "owner", false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.register("Asha", "asha@rent.test", "owner", true)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = c.register("Asha", "asha@rent.test", "owner", true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLogin_Failures(t *testing.T) {
	ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}
	c.register("Ravi", "ravi@rent.test", "user", false)

	resp, data := c.json(http.MethodPost, "/api/auth/login", loginRequest{Email: "ravi@rent.test", Password: "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Invalid email or password"}`, string(data))

	resp, data = c.json(http.MethodPost, "/api/auth/login", loginRequest{Email: "ghost@rent.test", Password: "secret1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"No account found with this email"}`, string(data))

	c.token = "not-a-jwt"
	resp, _ = c.do(http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListingFlow(t *testing.T) {
	ts := newTestServer(t)
	owner := &client{t: t, base: ts.URL}
	require.Equal(t, http.StatusCreated, owner.register("Asha", "asha@rent.test", "owner", true).StatusCode)
	res := owner.login("asha@rent.test")
	assert.Equal(t, "/owner", res.Redirect)

	first := owner.addHouse("2 BHK Vesu", "2")
	second := owner.addHouse("3 BHK Vesu", "3")

	renter := &client{t: t, base: ts.URL}
	renter.register("Ravi", "ravi@rent.test", "user", false)
	renter.login("ravi@rent.test")

	// Detail is public.
	anon := &client{t: t, base: ts.URL}
	resp, data := anon.do(http.MethodGet, "/house/"+first, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail struct {
		Title       string   `json:"title"`
		OwnerName   string   `json:"ownerName"`
		IsOwner     bool     `json:"isOwner"`
		StatusLabel string   `json:"statusLabel"`
		Images      []string `json:"images"`
	}
	require.NoError(t, json.Unmarshal(data, &detail))
	assert.Equal(t, "Asha", detail.OwnerName)
	assert.False(t, detail.IsOwner)
	assert.Equal(t, "Available", detail.StatusLabel)
	assert.Equal(t, []string{"https://img.test/front.jpg", "https://img.test/hall.webp"}, detail.Images)

	// Search with an exact bedroom count.
	resp, data = renter.do(http.MethodGet, "/search?bedrooms=2", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sv searchView
	require.NoError(t, json.Unmarshal(data, &sv))
	assert.Equal(t, search.StateResults, sv.State)
	require.Len(t, sv.Results, 1)
	assert.Equal(t, first, sv.Results[0].ID)

	resp, data = renter.do(http.MethodGet, "/search?bedrooms=7", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &sv))
	assert.Equal(t, search.StateEmpty, sv.State)

	resp, data = renter.do(http.MethodGet, "/search?bedrooms=2.5", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sv = searchView{}
	require.NoError(t, json.Unmarshal(data, &sv))
	assert.Equal(t, search.StateEmpty, sv.State, "a fractional bedroom count matches nothing")
	assert.Empty(t, sv.Results)

	// The renter may not touch the owner's listing.
	resp, _ = renter.json(http.MethodPut, "/house/"+first+"/status", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// Owner marks the first listing rented.
	resp, data = owner.json(http.MethodPut, "/house/"+first+"/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.JSONEq(t, `{"status":"rented","statusLabel":"Rented"}`, string(data))

	resp, data = renter.do(http.MethodGet, "/search", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &sv))
	assert.Equal(t, search.StateNotSearched, sv.State)
	for _, card := range sv.Results {
		if card.ID == first {
			assert.False(t, card.Navigable)
			assert.True(t, card.Muted)
			assert.Empty(t, card.Href)
		}
	}

	// The dashboard keeps rented listings manageable.
	resp, data = owner.do(http.MethodGet, "/owner", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dash dashboardView
	require.NoError(t, json.Unmarshal(data, &dash))
	require.Len(t, dash.Listings, 2)
	for _, card := range dash.Listings {
		assert.True(t, card.Navigable)
		assert.NotEmpty(t, card.EditHref)
	}

	// Edit.
	resp, data = owner.do(http.MethodGet, "/house/"+second+"/edit", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	resp, data = owner.json(http.MethodPut, "/house/"+second+"/edit", map[string]any{"title": "3 BHK Vesu, renovated", "rent": 15000})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var updated models.Listing
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, "3 BHK Vesu, renovated", updated.Title)
	assert.Equal(t, 15000.0, updated.Rent)

	resp, _ = owner.json(http.MethodPut, "/house/"+second+"/edit", map[string]any{"bedrooms": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Delete.
	resp, data = owner.do(http.MethodDelete, "/house/"+second, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.JSONEq(t, `{"redirect":"/owner"}`, string(data))
	resp, _ = anon.do(http.MethodGet, "/house/"+second, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Home: stats for the owner, featured cards for the renter.
	resp, data = owner.do(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"stats":{"total":1,"available":0,"rented":1}}`, string(data))

	// Logout ends the session.
	resp, _ = owner.json(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = owner.do(http.MethodGet, "/owner", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOtherOwnerIsRefused(t *testing.T) {
	ts := newTestServer(t)
	a := &client{t: t, base: ts.URL}
	a.register("Asha", "asha@rent.test", "owner", true)
	a.login("asha@rent.test")
	id := a.addHouse("2 BHK", "2")

	b := &client{t: t, base: ts.URL}
	b.register("Bela", "bela@rent.test", "owner", true)
	b.login("bela@rent.test")

	resp, _ := b.json(http.MethodPut, "/house/"+id+"/edit", map[string]any{"title": "mine now"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = b.json(http.MethodPut, "/house/"+id+"/status", statusRequest{Status: models.StatusRented})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = b.do(http.MethodDelete, "/house/"+id, nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = b.do(http.MethodGet, "/house/"+id+"/edit", nil, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestAddHouse_Rejections(t *testing.T) {
	ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}
	c.register("Asha", "asha@rent.test", "owner", true)
	c.login("asha@rent.test")

	fields := map[string]string{
		"title": "2 BHK", "rent": "12000", "bedrooms": "2", "area": "Vesu",
		"address": "Vesu", "contact": "98", "description": "flat",
	}

	body, ct := multipartBody(t, fields)
	resp, _ := c.do(http.MethodPost, "/owner/add-house", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "images are required")

	body, ct = multipartBody(t, fields, part{"images", "anim.gif", "image/gif", "gif"})
	resp, data := c.do(http.MethodPost, "/owner/add-house", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Only JPG, PNG, JPEG, WEBP images allowed"}`, string(data))

	big := part{"images", "big.jpg", "image/jpeg", strings.Repeat("x", int(media.MaxFileSize)+1)}
	body, ct = multipartBody(t, fields, big)
	resp, data = c.do(http.MethodPost, "/owner/add-house", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Image must be less than 5MB"}`, string(data))

	fields["bedrooms"] = "two"
	body, ct = multipartBody(t, fields, part{"images", "a.jpg", "image/jpeg", "jpg"})
	resp, _ = c.do(http.MethodPost, "/owner/add-house", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPasswordResetRoutes(t *testing.T) {
	ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}
	c.register("Ravi", "ravi@rent.test", "user", false)

	resp, _ := c.json(http.MethodPost, "/api/auth/forgot-password", forgotPasswordRequest{Email: "ravi@rent.test"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := c.json(http.MethodPost, "/api/auth/forgot-password", forgotPasswordRequest{Email: "bad"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Please enter a valid email address"}`, string(data))

	resp, _ = c.json(http.MethodPost, "/api/auth/reset-password", resetPasswordRequest{Token: "unknown", Password: "brand-new"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshRoute(t *testing.T) {
	ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}
	c.register("Ravi", "ravi@rent.test", "user", false)
	res := c.login("ravi@rent.test")

	resp, data := c.json(http.MethodPost, "/api/auth/refresh", refreshRequest{RefreshToken: res.Tokens.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var pair services.TokenPair
	require.NoError(t, json.Unmarshal(data, &pair))
	assert.NotEmpty(t, pair.AccessToken)

	resp, _ = c.json(http.MethodPost, "/api/auth/refresh", refreshRequest{RefreshToken: res.Tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
