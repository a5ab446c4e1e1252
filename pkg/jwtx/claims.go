// Package jwtx verifies access tokens issued by the external authorization
// server and exposes their claims to the access gate.
package jwtx

import (
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims this service consumes. The authorization
// server puts OAuth2 scopes in the space-delimited "scope" claim and a
// business-defined permission list in the custom "permissions" claim.
type Claims struct {
	jwt.RegisteredClaims

	// Scope is the raw space-delimited OAuth2 scope claim, e.g. "apis openid".
	Scope string `json:"scope,omitempty"`

	// Permissions is a custom claim carrying business permissions. This is a
	// separate authorization axis from OAuth2 scopes.
	Permissions []string `json:"permissions,omitempty"`
}

// ScopeList splits the scope claim into individual scope values.
// Returns nil for an empty or whitespace-only claim.
func (c *Claims) ScopeList() []string {
	return strings.Fields(c.Scope)
}

// HasScope reports whether the token grants the given scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.ScopeList(), scope)
}

// ValidateIssuer checks the iss claim against the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks that at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry ensures the token is inside its exp/nbf window, allowing a
// small leeway for clock skew between us and the authorization server.
func (c *Claims) ValidateExpiry(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
