package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rentfinder/internal/client/api"
	"github.com/dmitrijs2005/rentfinder/internal/client/models"
	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/filex"
)

// Register prompts for the sign-up form and creates an account. Owners are
// asked for a profile photo; the server refuses an owner without one.
func (a *App) Register(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	role, err := GetSimpleText(a.reader, "Role (owner/renter)", a.out)
	if err != nil {
		return err
	}

	in := api.RegisterInput{Name: name, Email: email, Password: password, Role: models.Role(role)}

	photoPrompt := "Profile photo path (optional)"
	if strings.EqualFold(strings.TrimSpace(role), string(models.RoleOwner)) {
		photoPrompt = "Profile photo path (required for owners)"
	}
	path, err := GetSimpleText(a.reader, photoPrompt, a.out)
	if err != nil {
		return err
	}
	if path != "" {
		photo, err := filex.ReadFile(path, 0)
		if err != nil {
			return err
		}
		in.Photo = &photo
	}

	account, err := a.api.Register(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account created for %s. Use 'login' to continue.\n", account.Email)
	return nil
}

// Login prompts for credentials and opens the landing view for the role.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Already logged in; use 'logout' first.")
		return nil
	}

	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}

	sess, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", sess.Account.Name)
	if sess.Redirect == "/owner" {
		return a.Mine(ctx)
	}
	return a.Browse(ctx)
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	err := a.api.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	if err != nil {
		a.logger.Warn(ctx, "server logout failed", "error", err)
	}
	return nil
}

// Forgot requests a password reset email.
func (a *App) Forgot(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	msg, err := a.api.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Reset completes a password reset with the token from the emailed link.
func (a *App) Reset(ctx context.Context) error {
	token, err := GetSimpleText(a.reader, "Paste the reset token (or the whole link)", a.out)
	if err != nil {
		return err
	}
	token = tokenFromLink(token)

	password, err := GetPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	confirm, err := GetPassword(a.reader, "Repeat new password", a.out)
	if err != nil {
		return err
	}
	if password != confirm {
		return common.Validationf("passwords do not match")
	}

	msg, err := a.api.ResetPassword(ctx, token, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// tokenFromLink accepts either a bare token or a link carrying ?token=.
func tokenFromLink(s string) string {
	s = strings.TrimSpace(s)
	i := strings.Index(s, "token=")
	if i < 0 {
		return s
	}
	s = s[i+len("token="):]
	if j := strings.IndexAny(s, "&#"); j >= 0 {
		s = s[:j]
	}
	return s
}
