package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretLen = 32

// AccessClaims is the claim set carried by issued tokens: the registered
// subject/issuer/audience/expiry fields plus the username and one entry per
// bound role.
type AccessClaims struct {
	jwt.RegisteredClaims
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// JWTIssuer signs access tokens with a symmetric HS256 key held by the
// server. The key, issuer and audience are process-wide configuration loaded
// once at startup; rotating the key invalidates all outstanding tokens.
type JWTIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewJWTIssuer validates the signing configuration up front so a missing or
// weak secret fails at startup rather than on the first login.
func NewJWTIssuer(secret, issuer, audience string, ttl time.Duration) (*JWTIssuer, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", minSecretLen)
	}
	if issuer == "" || audience == "" {
		return nil, fmt.Errorf("jwt issuer and audience must be configured")
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &JWTIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Issue builds and signs a token for the given identity and role set.
func (i *JWTIssuer) Issue(accountID, username string, roles []string) (string, error) {
	now := i.now().UTC()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Username: username,
		Roles:    roles,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}
