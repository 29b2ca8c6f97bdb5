// Package auth implements the authentication core: the two interchangeable
// strategies (local and delegated), the session token service, and the
// route guard.
//
// SESSION FLOW:
//  1. A strategy authenticates the user and writes the identity into the
//     session store.
//  2. The HTTP handler issues a signed session token in an HttpOnly cookie
//     so the browser session survives reloads.
//  3. The route guard reads the session store on each protected navigation
//     and checks the cookie corroborates the stored identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long an issued session token stays valid.
const SessionTTL = 24 * time.Hour

const tokenIssuer = "connecther"

// TokenService signs and validates session tokens.
//
// It holds the HMAC secret used for both operations; the same secret must
// sign and verify.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds jwt.RegisteredClaims; the identity key travels in "sub".
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates a signed session token for the given identity key,
// valid for SessionTTL.
func (s *TokenService) Generate(identityKey string) (string, error) {
	return s.GenerateWithDuration(identityKey, SessionTTL)
}

// GenerateWithDuration creates a token with a custom expiry. Used by tests
// to exercise expiry handling.
func (s *TokenService) GenerateWithDuration(identityKey string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityKey,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token string and returns the
// identity key from its subject claim.
//
// Restricting the accepted algorithms to HS256 prevents algorithm
// confusion attacks; requiring the issuer rejects tokens minted by other
// applications sharing the secret.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
