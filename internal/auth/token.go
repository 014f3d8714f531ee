package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/ticketdesk/internal/clock"
	"github.com/spec-kit/ticketdesk/internal/domain"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokenManager builds a new manager. A nil clock uses wall time.
func NewTokenManager(secret string, ttl time.Duration, clk clock.Clock) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, clock: clk}
}

// Claims describes JWT payload.
type Claims struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Token converts the claims into token metadata.
func (c *Claims) Token() domain.Token {
	token := domain.Token{ID: c.ID, Username: c.Username, Role: c.Role}
	if c.ExpiresAt != nil {
		token.ExpiresAt = c.ExpiresAt.Time
	}
	if c.IssuedAt != nil {
		token.IssuedAt = c.IssuedAt.Time
	}
	return token
}

// GenerateToken builds and signs a JWT for the actor. Every token carries a
// fresh jti so it can be revoked on its own.
func (tm *TokenManager) GenerateToken(actor domain.Actor) (string, domain.Token, error) {
	now := tm.clock.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		Username: actor.Username,
		Role:     actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   actor.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", domain.Token{}, err
	}
	return tokenString, claims.Token(), nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Username == "" || claims.ID == "" {
		return nil, errors.New("token is missing identity claims")
	}
	return claims, nil
}
