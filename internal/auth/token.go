package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenManager signs and validates the hydration handle carried in the portal's
// session cookie. The handle only points at cached UI data; it grants nothing.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// HandleClaims describes the handle payload.
type HandleClaims struct {
	CacheKey string `json:"ck"`
	Username string `json:"usr,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a handle for the given cache key.
func (tm *TokenManager) Issue(cacheKey, username string) (string, time.Time, error) {
	if cacheKey == "" {
		return "", time.Time{}, errors.New("cache key required")
	}
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &HandleClaims{
		CacheKey: cacheKey,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates a handle and returns its claims.
func (tm *TokenManager) Parse(tokenStr string) (*HandleClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &HandleClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*HandleClaims)
	if !ok || !parsed.Valid || claims.CacheKey == "" {
		return nil, errors.New("invalid handle claims")
	}
	return claims, nil
}
