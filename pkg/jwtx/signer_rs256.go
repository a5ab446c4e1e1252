package jwtx

import (
	"crypto/rsa"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// RS256Signer mints RS256-signed tokens from an in-memory RSA key. The
// production service never signs tokens (the authorization server does);
// this exists so tests and local tooling can stand in for it.
type RS256Signer struct {
	kid string
	key *rsa.PrivateKey
}

// NewSignerRS256 wraps an RSA private key as a signer with the given kid.
func NewSignerRS256(kid string, key *rsa.PrivateKey) (*RS256Signer, error) {
	if key == nil {
		return nil, errors.New("jwtx: nil RSA key")
	}
	return &RS256Signer{kid: kid, key: key}, nil
}

// Sign turns the claims into a signed JWT string carrying the signer's kid.
func (s *RS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// PublicJWK returns the JWK to publish so others can verify our tokens.
func (s *RS256Signer) PublicJWK() JWK {
	return NewRSAJWK(s.kid, &s.key.PublicKey)
}
