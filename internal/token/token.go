// Package token issues and verifies the signed access and refresh tokens
// used by the session lifecycle. Both token kinds carry the same claims and
// differ only in lifetime.
package token

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultLifetime is used when a lifetime string cannot be parsed.
const DefaultLifetime = 15 * time.Minute

var (
	// ErrInvalidToken covers bad signatures, malformed tokens, and
	// unexpected signing methods.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for structurally valid but lapsed tokens.
	ErrExpiredToken = errors.New("token expired")
)

// Claims embeds the registered claim set and carries the user identity.
// Subject holds the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens with a single HS256 secret.
type Manager struct {
	secret []byte
}

// NewManager returns a Manager for the given signing secret. The secret is
// required; configuration resolves it at startup and fails fast when absent.
func NewManager(secret []byte) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: signing secret is required")
	}
	return &Manager{secret: secret}, nil
}

// Issue produces a signed token for the user expiring after lifetime. Each
// token carries a unique jti so two tokens minted in the same second still
// differ; refresh rotation depends on the old and new token never colliding.
func (m *Manager) Issue(userID uuid.UUID, email string, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify checks the signature and expiry of tokenString and returns its
// claims. Expiry surfaces as ErrExpiredToken, everything else as
// ErrInvalidToken; callers in this design collapse both into one outcome.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// UserID resolves the subject claim back to a uuid.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// ParseLifetime converts a lifetime string of the form "<integer><unit>"
// (unit s, m, h, or d) into a duration. Unparsable input falls back to
// DefaultLifetime rather than failing; the same rule sizes cache TTLs.
func ParseLifetime(s string) time.Duration {
	if len(s) < 2 {
		return DefaultLifetime
	}

	value, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || value < 0 {
		return DefaultLifetime
	}

	var unit time.Duration
	switch s[len(s)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	default:
		return DefaultLifetime
	}

	// Clamp values whose multiplication would overflow; a wrapped-around
	// duration would hand negative TTLs to the cache.
	if int64(value) > math.MaxInt64/int64(unit) {
		return DefaultLifetime
	}

	return time.Duration(value) * unit
}
