package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey struct{ name string }

var principalKey = contextKey{"principal"}

// Principal is the identity resolved from a verified bearer token.
type Principal struct {
	ID    uuid.UUID
	Email string
}

// PrincipalFrom extracts the authenticated identity from ctx.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// requireAuth gates a route on a valid bearer token. The check is purely
// stateless: signature and expiry against the configured secret, claims
// resolved straight from the token. Neither the credential store nor the
// token cache is consulted, so a logged-out access token stays accepted
// until its own expiry.
func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, rawToken, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || rawToken == "" {
			respondError(w, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}

		claims, err := a.tokens.Verify(strings.TrimSpace(rawToken))
		if err != nil {
			respondError(w, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}

		id, err := claims.UserID()
		if err != nil {
			respondError(w, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}

		principal := Principal{ID: id, Email: claims.Email}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, principal)))
	})
}

// principal returns the request identity; routes behind requireAuth always
// have one.
func principal(r *http.Request) (Principal, bool) {
	return PrincipalFrom(r.Context())
}
