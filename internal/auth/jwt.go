// Package auth issues and validates the bearer tokens that guard the
// admin cache endpoints.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role Validate accepts.
const RoleAdmin = "admin"

var (
	ErrNoSecret      = errors.New("auth: empty signing secret")
	ErrInvalidToken  = errors.New("auth: invalid token")
	errSigningMethod = errors.New("auth: unexpected signing method")
)

// Claims are the JWT claims of an admin token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and checks HS256 tokens for one issuer/audience pair.
type Issuer struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration // zero => 24h

	// now is replaced in tests.
	now func() time.Time
}

func (i *Issuer) clock() time.Time {
	if i.now != nil {
		return i.now()
	}
	return time.Now()
}

// Generate returns a signed admin token for subject.
func (i *Issuer) Generate(subject string) (string, error) {
	if len(i.Secret) == 0 {
		return "", ErrNoSecret
	}
	ttl := i.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := i.clock()
	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.Issuer,
			Audience:  jwt.ClaimStrings{i.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
}

// Validate parses token and checks signature, algorithm, expiry, issuer,
// audience and role. Every failure wraps ErrInvalidToken.
func (i *Issuer) Validate(token string) (*Claims, error) {
	if len(i.Secret) == 0 {
		return nil, ErrNoSecret
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errSigningMethod
			}
			return i.Secret, nil
		},
		jwt.WithIssuer(i.Issuer),
		jwt.WithAudience(i.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Role != RoleAdmin {
		return nil, fmt.Errorf("%w: role %q is not allowed", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}
