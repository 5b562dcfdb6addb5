// Package token encodes and decodes the signed claims carried by access and
// refresh tokens. Both token kinds are HS256 JWTs over one shared secret;
// the "type" claim is what keeps them apart, so a refresh token can never be
// accepted where an access token is expected even though both parse.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Type discriminates access tokens from refresh tokens.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

var ErrMalformed = errors.New("token malformed")
var ErrExpired = errors.New("token expired")
var ErrSignature = errors.New("token signature invalid")

// Claims is the payload carried by every issued token. Role is only set on
// access tokens; refresh tokens never carry one because the role is re-read
// from storage at rotation time.
type Claims struct {
	TokenType Type   `json:"type"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Codec issues and verifies tokens with a single shared secret. Swapping the
// secret is a configuration change; the codec itself never rotates keys.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// IssueAccess signs a short-lived access token carrying the account's role
// at issuance.
func (c *Codec) IssueAccess(accountID, role string, ttl time.Duration) (string, error) {
	return c.sign(Claims{
		TokenType:        TypeAccess,
		Role:             role,
		RegisteredClaims: registered(accountID, ttl),
	})
}

// IssueRefresh signs a long-lived refresh token.
func (c *Codec) IssueRefresh(accountID string, ttl time.Duration) (string, error) {
	return c.sign(Claims{
		TokenType:        TypeRefresh,
		RegisteredClaims: registered(accountID, ttl),
	})
}

// Decode verifies the signature and expiry of raw and returns its claims.
// Failures collapse into ErrExpired, ErrSignature, or ErrMalformed; callers
// must treat all three as unauthenticated and never echo the distinction to
// the client.
func (c *Codec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignature
		default:
			return nil, ErrMalformed
		}
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

func (c *Codec) sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

func registered(accountID string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now().UTC()
	return jwt.RegisteredClaims{
		Subject:   accountID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
