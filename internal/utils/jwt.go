package utils

import (
	"errors" // Error wrapping
	"fmt"    // Error formatting
	"time"   // Token expiration

	"kodbank/internal/domain" // Error taxonomy

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// ErrInvalidToken covers every verification failure: malformed input, bad
// signature, unexpected algorithm and expiry. Callers cannot tell them apart.
var ErrInvalidToken = fmt.Errorf("%w: invalid or expired token", domain.ErrInvalidCredentials)

// Identity is what a session token asserts about its holder
type Identity struct {
	Username  string // Subject
	AccountID uint   // Account primary key
	Role      string // Account role at issuance
}

// JWT Claims
type Claims struct {
	AccountID            uint   `json:"uid"`  // Account ID
	Role                 string `json:"role"` // Account role
	jwt.RegisteredClaims                      // sub, iat, exp
}

// Identity strips the registered claims
func (c *Claims) Identity() Identity {
	return Identity{Username: c.Subject, AccountID: c.AccountID, Role: c.Role}
}

// TokenIssuer signs and verifies HS256 session tokens with one process-wide secret
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer creates an issuer for secret
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for id that expires ttl from now
func (i *TokenIssuer) Issue(id Identity, ttl time.Duration) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, errors.New("jwt: empty signing secret")
	}
	issuedAt := i.now()
	expiresAt := issuedAt.Add(ttl)
	claims := Claims{
		AccountID: id.AccountID,
		Role:      id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	signed, err := token.SignedString(i.secret)                // Sign the token with the secret
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses tokenStr and returns its claims when the signature and expiry hold
func (i *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return i.secret, nil // Return the secret key for validation
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(), // Reject non-canonical base64 so any edited character fails
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
