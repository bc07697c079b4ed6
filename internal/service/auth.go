package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskd/internal/cache"
	"taskd/internal/models"
	"taskd/internal/password"
	"taskd/internal/store"
	"taskd/internal/token"
)

// resetTokenValidity bounds how long a forgot-password token stays usable.
const resetTokenValidity = time.Hour

// TokenPair is the access/refresh pair issued on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is the login response payload.
type LoginResult struct {
	User models.UserSummary `json:"user"`
	TokenPair
}

// Auth orchestrates the session-token lifecycle. It is the only writer of
// refresh-token hashes and reset-token fields, and the only component that
// touches the credential store, hasher, token issuer, and cache together.
type Auth struct {
	users      store.UserStore
	cache      cache.Cache
	tokens     *token.Manager
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAuth wires the session service.
func NewAuth(users store.UserStore, c cache.Cache, tokens *token.Manager, accessTTL, refreshTTL time.Duration) *Auth {
	if accessTTL <= 0 {
		accessTTL = token.DefaultLifetime
	}
	if refreshTTL <= 0 {
		refreshTTL = token.DefaultLifetime
	}
	return &Auth{
		users:      users,
		cache:      c,
		tokens:     tokens,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// userTokenKey is the cache key mirroring the current access token per user.
func userTokenKey(id uuid.UUID) string {
	return fmt.Sprintf("user_token:%s", id)
}

// Login verifies email+password and issues a fresh token pair. A missing
// user and a wrong password are indistinguishable to the caller.
func (a *Auth) Login(ctx context.Context, email, pass string) (*LoginResult, error) {
	const op = "service.auth.Login"

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !password.Compare(pass, user.PasswordHash) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := a.issueTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &LoginResult{User: user.Summary(), TokenPair: *pair}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The rotation is
// one-shot: the stored hash is overwritten, so the supplied token dies
// immediately. Every failure cause surfaces as ErrInvalidRefreshToken so
// this path never leaks whether a user exists.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	const op = "service.auth.Refresh"

	claims, err := a.tokens.Verify(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}

	if user.RefreshTokenHash == nil || !password.Compare(refreshToken, *user.RefreshTokenHash) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}

	pair, err := a.issueTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, nil
}

// Logout clears the stored refresh hash and drops the mirrored access token.
// Idempotent: logging out an already logged-out (or deleted) user succeeds.
func (a *Auth) Logout(ctx context.Context, userID uuid.UUID) error {
	const op = "service.auth.Logout"

	err := a.users.UpdateFields(ctx, userID, map[string]any{"refresh_token_hash": nil})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.cache.Delete(ctx, userTokenKey(userID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ForgotPassword issues a one-hour reset token and returns it raw to the
// caller. Returning the token in the response body mirrors the existing API
// contract; delivery out-of-band is the caller's concern.
func (a *Auth) ForgotPassword(ctx context.Context, email string) (string, error) {
	const op = "service.auth.ForgotPassword"

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	resetToken := hex.EncodeToString(raw)
	expiresAt := time.Now().Add(resetTokenValidity)

	err = a.users.UpdateFields(ctx, user.ID, map[string]any{
		"reset_token":            resetToken,
		"reset_token_expires_at": expiresAt,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return resetToken, nil
}

// ResetPassword consumes a live reset token and installs a new password.
// Unknown, expired, and already-consumed tokens fail identically.
func (a *Auth) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	const op = "service.auth.ResetPassword"

	if len(newPassword) < 8 {
		return fmt.Errorf("%s: %w: password must be at least 8 characters", op, ErrInvalidInput)
	}

	user, err := a.users.FindByResetToken(ctx, resetToken, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidResetToken)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Password swap and token consumption happen in one update.
	err = a.users.UpdateFields(ctx, user.ID, map[string]any{
		"password_hash":          hash,
		"reset_token":            nil,
		"reset_token_expires_at": nil,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// issueTokens performs steps 3-5 of the login flow: mint a pair, overwrite
// the stored refresh hash, and mirror the access token into the cache.
func (a *Auth) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := a.tokens.Issue(user.ID, user.Email, a.accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := a.tokens.Issue(user.ID, user.Email, a.refreshTTL)
	if err != nil {
		return nil, err
	}

	refreshHash, err := password.Hash(refreshToken)
	if err != nil {
		return nil, err
	}

	// Last write wins: a concurrent login or refresh for the same user may
	// interleave here, invalidating the other call's refresh token.
	err = a.users.UpdateFields(ctx, user.ID, map[string]any{"refresh_token_hash": refreshHash})
	if err != nil {
		return nil, err
	}

	if err := a.cache.Set(ctx, userTokenKey(user.ID), accessToken, a.accessTTL); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
