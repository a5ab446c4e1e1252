package domain

import "time"

// Principal is the request-scoped authorization context derived from a
// verified access token. It is rebuilt for every request and never persisted
// or cached.
type Principal struct {
	// PrincipalID is the token's subject claim.
	PrincipalID string `json:"principalId"`

	// Scopes granted by the authorization server, parsed from the
	// space-delimited scope claim.
	Scopes []string `json:"scopes"`

	// Permissions from the custom permissions claim. A business-defined
	// authorization axis independent of OAuth2 scopes; order preserved.
	Permissions []string `json:"permissions"`

	// Token timestamps, carried for observability.
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"tokenExpiry"`
}

// HasScope reports whether the principal was granted the scope.
func (p Principal) HasScope(scope string) bool {
	for _, s := range p.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
