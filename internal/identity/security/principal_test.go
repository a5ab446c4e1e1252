package security_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/rblessings/urlradar/internal/identity/domain"
	"github.com/rblessings/urlradar/internal/identity/security"
	"github.com/rblessings/urlradar/pkg/httpx"
	"github.com/rblessings/urlradar/pkg/jwtx"
)

func baseClaims() jwtx.Claims {
	now := time.Now().UTC().Truncate(time.Second)
	return jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "client-abc",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Scope:       "apis openid",
		Permissions: []string{"read", "write"},
	}
}

func TestNewPrincipalTranslatesClaims(t *testing.T) {
	t.Parallel()

	c := baseClaims()
	p, err := security.NewPrincipal(c)
	require.NoError(t, err)

	require.Equal(t, "client-abc", p.PrincipalID)
	require.Equal(t, []string{"apis", "openid"}, p.Scopes)
	require.Equal(t, []string{"read", "write"}, p.Permissions)
	require.Equal(t, c.IssuedAt.Time.UTC(), p.IssuedAt)
	require.Equal(t, c.ExpiresAt.Time.UTC(), p.ExpiresAt)
	require.True(t, p.HasScope("apis"))
	require.False(t, p.HasScope("admin"))
}

func TestNewPrincipalMissingSubject(t *testing.T) {
	t.Parallel()

	c := baseClaims()
	c.Subject = ""
	_, err := security.NewPrincipal(c)
	require.ErrorIs(t, err, security.ErrMalformedToken)
}

func TestNewPrincipalDefaultsAbsentListsToEmpty(t *testing.T) {
	t.Parallel()

	c := baseClaims()
	c.Scope = ""
	c.Permissions = nil

	p, err := security.NewPrincipal(c)
	require.NoError(t, err)
	require.NotNil(t, p.Scopes)
	require.Empty(t, p.Scopes)
	require.NotNil(t, p.Permissions)
	require.Empty(t, p.Permissions)
}

func TestNewPrincipalIsDeterministic(t *testing.T) {
	t.Parallel()

	c := baseClaims()
	a, err := security.NewPrincipal(c)
	require.NoError(t, err)
	b, err := security.NewPrincipal(c)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestPrincipalMiddlewareInjectsPrincipal(t *testing.T) {
	t.Parallel()

	var got domain.Principal
	var found bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = security.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	h := security.PrincipalMiddleware()(inner)

	// Simulate the authn middleware having attached claims already.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/principal", nil)
	ctx := context.WithValue(req.Context(), httpx.CtxKeyClaims, baseClaims())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, found)
	require.Equal(t, "client-abc", got.PrincipalID)
}

func TestPrincipalMiddlewareWithoutClaimsIs401(t *testing.T) {
	t.Parallel()

	h := security.PrincipalMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/principal", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
}
