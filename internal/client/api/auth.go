package api

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/rentfinder/internal/client/models"
	"github.com/dmitrijs2005/rentfinder/internal/filex"
)

// RegisterInput is a sign-up form. Owners must attach a Photo.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
	Photo    *filex.File
}

type messageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	fields := []formField{
		{"name", in.Name},
		{"email", in.Email},
		{"password", in.Password},
		{"role", string(in.Role)},
	}
	var files []formFile
	if in.Photo != nil {
		files = append(files, formFile{field: "photo", file: *in.Photo})
	}

	var resp struct {
		Account *models.Account `json:"account"`
	}
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/auth/register", body: multipartBody(fields, files)}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Account, nil
}

// Login authenticates and keeps the returned session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	req := map[string]string{"email": email, "password": password}

	var s models.Session
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/auth/login", body: jsonBody(req)}, &s); err != nil {
		return nil, err
	}
	c.setSession(&s)
	return c.Session(), nil
}

// Logout revokes the session on the server. The local session is dropped
// even when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	if _, ok := c.tokens(); !ok {
		return nil
	}
	defer c.ClearSession()
	return c.attempt(ctx, call{method: http.MethodPost, path: "/api/auth/logout", auth: true}, nil)
}

// Refresh rotates the token pair of the current session.
func (c *Client) Refresh(ctx context.Context) error {
	p, ok := c.tokens()
	if !ok || p.RefreshToken == "" {
		return ErrNotLoggedIn
	}

	var next models.TokenPair
	req := map[string]string{"refreshToken": p.RefreshToken}
	if err := c.attempt(ctx, call{method: http.MethodPost, path: "/api/auth/refresh", body: jsonBody(req)}, &next); err != nil {
		return err
	}
	c.setTokens(next)
	return nil
}

// ForgotPassword asks the server to mail a reset link and returns its
// confirmation message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	req := map[string]string{"email": email}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/auth/forgot-password", body: jsonBody(req)}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ResetPassword sets a new password using the token from the reset link.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	var resp messageResponse
	req := map[string]string{"token": token, "password": password}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/auth/reset-password", body: jsonBody(req)}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
