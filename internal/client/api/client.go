// Package api is the HTTP client of the RentFinder server used by the
// terminal client.
//
// The Client keeps the current session in memory, sends its access token as
// a bearer header, and on a 401 refreshes the token pair once and retries.
// Redirects are never followed: a 303 from a guarded view surfaces as a
// *RedirectError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/client/models"
	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/logging"
)

type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  logging.Logger

	mu      sync.Mutex
	session *models.Session
}

func New(baseURL string, timeout time.Duration, l logging.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute http(s)", baseURL)
	}

	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: l.With("module", "api_client"),
	}, nil
}

// Session returns a copy of the current session, or nil.
func (c *Client) Session() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Client) setSession(s *models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// ClearSession forgets the session without telling the server.
func (c *Client) ClearSession() {
	c.setSession(nil)
}

func (c *Client) tokens() (models.TokenPair, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return models.TokenPair{}, false
	}
	return c.session.Tokens, true
}

func (c *Client) setTokens(p models.TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.Tokens = p
	}
}

// body builds a fresh request body for every attempt.
type body func() (io.Reader, string, error)

func jsonBody(v any) body {
	return func() (io.Reader, string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

type call struct {
	method string
	path   string
	query  url.Values
	body   body
	// auth sends the access token and allows one refresh on 401.
	auth bool
}

// endpoint joins path, already escaped, onto the base URL.
func (c *Client) endpoint(path string, q url.Values) string {
	s := c.baseURL.String() + path
	if len(q) > 0 {
		s += "?" + q.Encode()
	}
	return s
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	err := c.attempt(ctx, cl, out)
	if !cl.auth || !errors.Is(err, common.ErrUnauthorized) {
		return err
	}
	if _, ok := c.tokens(); !ok {
		return err
	}

	if rerr := c.Refresh(ctx); rerr != nil {
		c.logger.Debug(ctx, "refresh failed, dropping session", "error", rerr)
		c.ClearSession()
		return err
	}
	return c.attempt(ctx, cl, out)
}

func (c *Client) attempt(ctx context.Context, cl call, out any) error {
	var (
		reader      io.Reader
		contentType string
	)
	if cl.body != nil {
		var err error
		if reader, contentType, err = cl.body(); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.endpoint(cl.path, cl.query), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cl.auth {
		if p, ok := c.tokens(); ok && p.AccessToken != "" {
			req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+p.AccessToken)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx, "api call", "method", cl.method, "path", cl.path, "status", resp.StatusCode)

	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusSeeOther:
		loc := resp.Header.Get("Location")
		if loc == "" {
			var rr struct {
				Redirect string `json:"redirect"`
			}
			_ = json.Unmarshal(data, &rr)
			loc = rr.Redirect
		}
		return &RedirectError{Location: loc}

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %d response: %w", resp.StatusCode, err)
		}
		return nil

	default:
		var er struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &er)
		return &Error{Status: resp.StatusCode, Message: er.Error, kind: kindFor(resp.StatusCode)}
	}
}

// Ping checks that the server answers its health probe.
func (c *Client) Ping(ctx context.Context) error {
	return c.attempt(ctx, call{method: http.MethodGet, path: "/healthz"}, nil)
}

// Areas returns the fixed list of areas a listing can be placed in.
func (c *Client) Areas(ctx context.Context) ([]string, error) {
	var areas []string
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/areas"}, &areas); err != nil {
		return nil, err
	}
	return areas, nil
}
