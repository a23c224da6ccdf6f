package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService mints and parses the signed tokens that carry a scope across
// invocations (the anonymous-session "cookie" of the product). Tokens are
// HS256 over a shared secret; verifying third-party credentials is not this
// package's job.
type TokenService struct {
	hmac []byte
	ttl  time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &TokenService{hmac: []byte(secret), ttl: ttl}
}

type claims struct {
	Sub       string `json:"sub"`
	Anonymous bool   `json:"anon"`
	jwt.RegisteredClaims
}

// Issue signs a token for the given scope.
func (t *TokenService) Issue(s Scope) (string, error) {
	if s.Zero() {
		return "", errors.New("empty scope")
	}
	now := time.Now()
	c := &claims{
		Sub:       s.Key(),
		Anonymous: !s.Authenticated(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "revisehub",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(t.hmac)
}

// Parse validates a token and returns the scope it carries.
func (t *TokenService) Parse(tokenStr string) (Scope, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(*jwt.Token) (interface{}, error) {
		return t.hmac, nil
	})
	if err != nil {
		return Scope{}, err
	}
	if !token.Valid {
		return Scope{}, errors.New("invalid token")
	}
	c, ok := token.Claims.(*claims)
	if !ok || c.Sub == "" {
		return Scope{}, errors.New("invalid claims")
	}
	if c.Anonymous {
		return SessionScope(c.Sub), nil
	}
	return UserScope(c.Sub), nil
}
