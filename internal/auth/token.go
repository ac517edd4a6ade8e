package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meridianbank/meridian/internal/shared"
)

// TokenIssuer signs and verifies the bearer tokens carrying the acting
// user. Tokens are stateless; revocation happens by deactivating the user.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (t *TokenIssuer) WithNow(now func() time.Time) {
	if now != nil {
		t.now = now
	}
}

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a token for the identity.
func (t *TokenIssuer) Issue(id shared.Identity) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the identity it carries.
func (t *TokenIssuer) Verify(raw string) (shared.Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now() }))
	if err != nil || !token.Valid {
		return shared.Identity{}, shared.ErrUnauthorized
	}
	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return shared.Identity{}, shared.ErrUnauthorized
	}
	return shared.Identity{UserID: userID, Email: c.Email, Role: c.Role}, nil
}
