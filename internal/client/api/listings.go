package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/rentfinder/internal/client/models"
	"github.com/dmitrijs2005/rentfinder/internal/filex"
)

func housePath(id string, suffix string) string {
	return "/house/" + url.PathEscape(id) + suffix
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	return c.do(ctx, call{method: http.MethodGet, path: path, query: q, auth: true}, out)
}

func (c *Client) Home(ctx context.Context) (*models.HomeView, error) {
	var v models.HomeView
	if err := c.get(ctx, "/", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Browse opens the search page without criteria: every listing, unfiltered.
func (c *Client) Browse(ctx context.Context) (*models.SearchView, error) {
	var v models.SearchView
	if err := c.get(ctx, "/search", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Search submits the search form. Every key is sent so the server treats it
// as an explicit search even when all values are empty.
func (c *Client) Search(ctx context.Context, p models.SearchParams) (*models.SearchView, error) {
	q := url.Values{}
	q.Set("minRent", p.MinRent)
	q.Set("maxRent", p.MaxRent)
	q.Set("bedrooms", p.Bedrooms)
	q.Set("area", p.Area)

	var v models.SearchView
	if err := c.get(ctx, "/search", q, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Dashboard lists the caller's own listings.
func (c *Client) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var v models.Dashboard
	if err := c.get(ctx, "/owner", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) Profile(ctx context.Context) (*models.Account, error) {
	var a models.Account
	if err := c.get(ctx, "/owner/profile", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) Detail(ctx context.Context, id string) (*models.Detail, error) {
	var d models.Detail
	if err := c.get(ctx, housePath(id, ""), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) EditView(ctx context.Context, id string) (*models.EditView, error) {
	var v models.EditView
	if err := c.get(ctx, housePath(id, "/edit"), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// AddHouse creates a listing and returns its id.
func (c *Client) AddHouse(ctx context.Context, in models.ListingInput, images []filex.File) (string, error) {
	fields := []formField{
		{"title", in.Title},
		{"rent", in.Rent},
		{"bedrooms", in.Bedrooms},
		{"area", in.Area},
		{"address", in.Address},
		{"locationUrl", in.LocationURL},
		{"contact", in.Contact},
		{"description", in.Description},
	}
	files := make([]formFile, 0, len(images))
	for _, img := range images {
		files = append(files, formFile{field: "images", file: img})
	}

	var resp struct {
		ID string `json:"id"`
	}
	cl := call{method: http.MethodPost, path: "/owner/add-house", body: multipartBody(fields, files), auth: true}
	if err := c.do(ctx, cl, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) UpdateHouse(ctx context.Context, id string, p models.ListingPatch) (*models.Listing, error) {
	var l models.Listing
	cl := call{method: http.MethodPut, path: housePath(id, "/edit"), body: jsonBody(p), auth: true}
	if err := c.do(ctx, cl, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// SetStatus sets the listing status. An empty status toggles it.
func (c *Client) SetStatus(ctx context.Context, id string, status models.ListingStatus) (*models.StatusView, error) {
	cl := call{method: http.MethodPut, path: housePath(id, "/status"), auth: true}
	if status != "" {
		cl.body = jsonBody(map[string]models.ListingStatus{"status": status})
	}

	var v models.StatusView
	if err := c.do(ctx, cl, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) DeleteHouse(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: housePath(id, ""), auth: true}, nil)
}
