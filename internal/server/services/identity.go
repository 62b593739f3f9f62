// Package services contains server-side business logic. This file implements
// IdentityService, which handles registration, sign-in and sign-out, role
// resolution, refresh token rotation and password resets.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/logging"
	"github.com/dmitrijs2005/rentfinder/internal/server/access"
	"github.com/dmitrijs2005/rentfinder/internal/server/auth"
	"github.com/dmitrijs2005/rentfinder/internal/server/config"
	"github.com/dmitrijs2005/rentfinder/internal/server/mailer"
	"github.com/dmitrijs2005/rentfinder/internal/server/media"
	"github.com/dmitrijs2005/rentfinder/internal/server/metrics"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rentfinder/internal/server/sessions"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SignUpInput is a registration request. Photo is required for owners.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Photo    *media.File
}

// SignInResult is a fresh session and where to send its holder.
type SignInResult struct {
	Account   *models.Account `json:"account"`
	Tokens    TokenPair       `json:"tokens"`
	SessionID string          `json:"sessionId"`
	Redirect  string          `json:"redirect"`
}

// IdentityService owns identities, sessions and the account role lookup.
type IdentityService struct {
	repos    repomanager.RepositoryManager
	registry sessions.Registry
	uploader media.Uploader
	mailer   mailer.Mailer
	metrics  *metrics.Metrics
	log      logging.Logger

	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	resetTokenValidityDuration   time.Duration
	roleCacheDuration            time.Duration
	resetLinkBaseURL             string
	resetRateLimit               int
	resetRateWindow              time.Duration
	signInRateLimit              int
	signInRateWindow             time.Duration

	now func() time.Time
}

// NewIdentityService constructs an IdentityService using repositories,
// collaborators and server config.
func NewIdentityService(m repomanager.RepositoryManager, reg sessions.Registry, u media.Uploader,
	ml mailer.Mailer, mt *metrics.Metrics, log logging.Logger, cfg *config.Config) *IdentityService {
	return &IdentityService{
		repos:                        m,
		registry:                     reg,
		uploader:                     u,
		mailer:                       ml,
		metrics:                      mt,
		log:                          log.With("module", "identity"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		resetTokenValidityDuration:   cfg.ResetTokenValidityDuration,
		roleCacheDuration:            cfg.RoleCacheDuration,
		resetLinkBaseURL:             cfg.ResetLinkBaseURL,
		resetRateLimit:               cfg.ResetRateLimit,
		resetRateWindow:              cfg.ResetRateWindow,
		signInRateLimit:              cfg.SignInRateLimit,
		signInRateWindow:             cfg.SignInRateWindow,
		now:                          time.Now,
	}
}

// SignUp registers an identity and its profile. Everything that can be
// checked locally, the owner photo included, is checked before the identity
// is created. A failure after that point deletes the identity again.
func (s *IdentityService) SignUp(ctx context.Context, in SignUpInput) (*models.Account, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, common.Validationf("name is required")
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, common.Validationf("password must be at least %d characters", auth.MinPasswordLength)
	}
	role := models.NormalizeRole(in.Role)
	if !role.Valid() {
		return nil, common.Validationf("unknown role %q", in.Role)
	}
	if role == models.RoleOwner && in.Photo == nil {
		return nil, common.Validationf("owners must upload a face photo")
	}
	if in.Photo != nil {
		if err := media.Validate(*in.Photo); err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	identity := &models.Identity{Email: email, PasswordHash: hash}
	if err := s.repos.Identities().Create(ctx, identity); err != nil {
		if errors.Is(err, common.ErrEmailInUse) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating identity: %w", err)
	}

	account := &models.Account{ID: identity.ID, Name: name, Email: email, Role: role}

	if in.Photo != nil {
		photoURL, err := s.uploader.UploadOne(ctx, *in.Photo)
		s.metrics.Upload(err == nil)
		if err != nil {
			s.discardIdentity(ctx, identity.ID)
			return nil, err
		}
		account.PhotoURL = photoURL
	}

	if err := s.repos.Accounts().Create(ctx, account); err != nil {
		s.discardIdentity(ctx, identity.ID)
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.log.Info(ctx, "account registered", "account_id", account.ID, "role", account.Role)
	return account, nil
}

func (s *IdentityService) discardIdentity(ctx context.Context, id string) {
	if err := s.repos.Identities().Delete(context.WithoutCancel(ctx), id); err != nil {
		s.log.Error(ctx, "orphaned identity left after failed registration", "identity_id", id, "error", err)
	}
}

// SignIn verifies credentials and opens a session. The redirect target
// follows the stored role: owners land on the dashboard, everyone else on
// search.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	res, err := s.signIn(ctx, email, password)
	s.metrics.SignIn(err == nil)
	return res, err
}

func (s *IdentityService) signIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := s.allow(ctx, "signin:"+email, s.signInRateLimit, s.signInRateWindow); err != nil {
		return nil, err
	}

	identity, err := s.repos.Identities().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error searching identity: %w", err)
	}

	ok, err := auth.CheckPassword(identity.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("error checking password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	account, err := s.repos.Accounts().Get(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error loading account: %w", err)
	}
	account.Role = models.NormalizeRole(string(account.Role))

	sessionID := uuid.NewString()
	pair, err := s.generateTokenPair(ctx, s.repos, identity.ID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.registry.CacheRole(ctx, sessionID, account.Role, s.roleCacheDuration); err != nil {
		s.log.Warn(ctx, "role cache write failed", "session_id", sessionID, "error", err)
	}

	return &SignInResult{
		Account:   account,
		Tokens:    *pair,
		SessionID: sessionID,
		Redirect:  access.Landing(account.Role),
	}, nil
}

// SignOut ends the session: its access tokens stop authenticating and its
// refresh tokens are removed. Signing out twice, or without a session, is
// not an error.
func (s *IdentityService) SignOut(ctx context.Context, sess *sessions.Session) error {
	if !sess.Authenticated() {
		return nil
	}
	if err := s.registry.Revoke(ctx, sess.SessionID, s.accessTokenValidityDuration); err != nil {
		return fmt.Errorf("error revoking session: %w", err)
	}
	if err := s.repos.RefreshTokens().DeleteBySession(ctx, sess.SessionID); err != nil {
		return fmt.Errorf("error deleting refresh tokens: %w", err)
	}
	return nil
}

// Refresh validates a refresh token, rotates it transactionally, and returns
// a fresh TokenPair for the same session.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.repos.RefreshTokens().Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		_ = s.repos.RefreshTokens().Delete(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	revoked, err := s.registry.Revoked(ctx, token.SessionID)
	if err != nil {
		return nil, fmt.Errorf("error checking session: %w", err)
	}
	if revoked {
		return nil, common.ErrUnauthorized
	}

	var pair *TokenPair
	err = s.repos.WithinTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		if err := m.RefreshTokens().Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, m, token.UserID, token.SessionID)
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Authenticate resolves an access token into a session with its current
// role.
func (s *IdentityService) Authenticate(ctx context.Context, accessToken string) (*sessions.Session, error) {
	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	revoked, err := s.registry.Revoked(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("error checking session: %w", err)
	}
	if revoked {
		return nil, common.ErrUnauthorized
	}

	role, err := s.CurrentRole(ctx, claims.UserID, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, common.ErrUnauthorized
	}

	return &sessions.Session{AccountID: claims.UserID, SessionID: claims.SessionID, Role: role}, nil
}

// CurrentRole returns the normalized role of the account behind a session,
// or "" when the account has no profile. The answer is cached per session.
func (s *IdentityService) CurrentRole(ctx context.Context, accountID, sessionID string) (models.Role, error) {
	if sessionID != "" {
		role, ok, err := s.registry.CachedRole(ctx, sessionID)
		if err != nil {
			s.log.Warn(ctx, "role cache read failed", "session_id", sessionID, "error", err)
		} else if ok {
			return models.NormalizeRole(string(role)), nil
		}
	}

	account, err := s.repos.Accounts().Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("error loading account: %w", err)
	}

	role := models.NormalizeRole(string(account.Role))
	if sessionID != "" {
		if err := s.registry.CacheRole(ctx, sessionID, role, s.roleCacheDuration); err != nil {
			s.log.Warn(ctx, "role cache write failed", "session_id", sessionID, "error", err)
		}
	}
	return role, nil
}

// Profile returns the caller's account.
func (s *IdentityService) Profile(ctx context.Context, sess *sessions.Session) (*models.Account, error) {
	if !sess.Authenticated() {
		return nil, common.ErrUnauthorized
	}
	account, err := s.repos.Accounts().Get(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}
	account.Role = models.NormalizeRole(string(account.Role))
	return account, nil
}

// ResetPassword mails a one-time reset link. Requests are rate limited per
// email address.
func (s *IdentityService) ResetPassword(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := s.allow(ctx, "reset:"+email, s.resetRateLimit, s.resetRateWindow); err != nil {
		return err
	}

	identity, err := s.repos.Identities().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrAccountNotFound
		}
		return fmt.Errorf("error searching identity: %w", err)
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}
	now := s.now().UTC()
	rt := &models.ResetToken{
		Token:     token,
		UserID:    identity.ID,
		Expires:   now.Add(s.resetTokenValidityDuration),
		CreatedAt: now,
	}
	if err := s.repos.ResetTokens().Create(ctx, rt); err != nil {
		return fmt.Errorf("error creating reset token: %w", err)
	}

	link, err := resetLink(s.resetLinkBaseURL, token)
	if err != nil {
		return err
	}
	if err := s.mailer.SendPasswordReset(ctx, email, link); err != nil {
		return fmt.Errorf("error sending reset email: %w", err)
	}
	return nil
}

// ConfirmReset consumes a reset token and sets the new password. Every
// session of the account is signed out.
func (s *IdentityService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return common.Validationf("password must be at least %d characters", auth.MinPasswordLength)
	}

	rt, err := s.repos.ResetTokens().Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidToken
		}
		return fmt.Errorf("error searching reset token: %w", err)
	}
	if rt.Expires.Before(s.now()) {
		_ = s.repos.ResetTokens().Delete(ctx, token)
		return common.ErrTokenExpired
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	var sessionIDs []string
	err = s.repos.WithinTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		if err := m.Identities().UpdatePassword(ctx, rt.UserID, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		if err := m.ResetTokens().Delete(ctx, token); err != nil {
			return fmt.Errorf("error deleting reset token: %w", err)
		}
		ids, err := m.RefreshTokens().DeleteByUser(ctx, rt.UserID)
		if err != nil {
			return fmt.Errorf("error deleting refresh tokens: %w", err)
		}
		sessionIDs = ids
		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range sessionIDs {
		if err := s.registry.Revoke(ctx, id, s.accessTokenValidityDuration); err != nil {
			return fmt.Errorf("error revoking session: %w", err)
		}
	}
	return nil
}

// --- helpers below ---

func (s *IdentityService) allow(ctx context.Context, key string, limit int, window time.Duration) error {
	if limit <= 0 {
		return nil
	}
	ok, err := s.registry.Allow(ctx, key, limit, window)
	if err != nil {
		return fmt.Errorf("error checking rate limit: %w", err)
	}
	if !ok {
		return common.ErrRateLimited
	}
	return nil
}

func (s *IdentityService) generateAccessToken(userID, sessionID string) (string, error) {
	return auth.GenerateToken(userID, sessionID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *IdentityService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *IdentityService) generateTokenPair(ctx context.Context, m repomanager.RepositoryManager, userID, sessionID string) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(userID, sessionID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	now := s.now().UTC()
	rt := &models.RefreshToken{
		Token:     refresh,
		UserID:    userID,
		SessionID: sessionID,
		Expires:   now.Add(s.refreshTokenValidityDuration),
		CreatedAt: now,
	}
	if err := m.RefreshTokens().Create(ctx, rt); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refresh}, nil
}

// normalizeEmail trims and lower-cases a bare address, rejecting anything
// that is not one.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", common.ErrInvalidEmail
	}
	return email, nil
}

func resetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("bad reset link base %q: %w", base, err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
