// Package security translates verified token claims into the request-scoped
// authorization context the rest of the service consumes.
package security

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rblessings/urlradar/internal/identity/domain"
	"github.com/rblessings/urlradar/pkg/httpx"
	"github.com/rblessings/urlradar/pkg/jwtx"
)

// ErrMalformedToken reports claims that verified cryptographically but are
// structurally unusable for authorization, such as a missing subject.
var ErrMalformedToken = errors.New("security: malformed token claims")

type principalCtxKey struct{}

// NewPrincipal derives the authorization context from verified claims. It is
// a pure translation: no I/O, no clock reads, deterministic for the same
// claims. Signature and expiry verification happened upstream.
func NewPrincipal(c jwtx.Claims) (domain.Principal, error) {
	if c.Subject == "" {
		return domain.Principal{}, ErrMalformedToken
	}

	// A token without the permissions claim yields an empty list, not null,
	// so consumers can iterate without a nil check.
	perms := c.Permissions
	if perms == nil {
		perms = []string{}
	}
	scopes := c.ScopeList()
	if scopes == nil {
		scopes = []string{}
	}

	var iat, exp time.Time
	if c.IssuedAt != nil {
		iat = c.IssuedAt.Time.UTC()
	}
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time.UTC()
	}

	return domain.Principal{
		PrincipalID: c.Subject,
		Scopes:      scopes,
		Permissions: perms,
		IssuedAt:    iat,
		ExpiresAt:   exp,
	}, nil
}

// PrincipalMiddleware builds the principal from the claims the authn
// middleware attached and stores it in the request context. It must run
// after httpx.AuthnMiddleware in the chain.
func PrincipalMiddleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := httpx.ClaimsFromContext(r.Context())
			if !ok {
				httpx.WriteBearerError(w, "missing bearer token")
				return
			}

			p, err := NewPrincipal(claims)
			if err != nil {
				httpx.WriteBearerError(w, "token verification failed")
				return
			}

			ctx := context.WithValue(r.Context(), principalCtxKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the principal stored by PrincipalMiddleware.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(domain.Principal)
	return p, ok
}
