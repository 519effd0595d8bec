// Package auth verifies bearer tokens presented at the HTTP and websocket
// boundaries. Verification is pure: same token, secret and clock always give
// the same result. It runs once per connection attempt; the resulting identity
// is cached on the connection, never re-verified per message.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"github.com/nayonf/inkline/backend/internal/common"
	"github.com/nayonf/inkline/backend/internal/models"
)

// Verifier validates HMAC-signed JWTs against a configured secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the given signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks the token's signature and expiry and returns the embedded
// identity claims. A missing token fails with ErrUnauthenticated; a malformed,
// forged or expired one with ErrInvalidToken.
func (v *Verifier) Verify(tokenString string) (*models.JwtCustomClaims, error) {
	if tokenString == "" {
		return nil, common.ErrUnauthenticated
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
