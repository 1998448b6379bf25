package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rtCamp/next-crm/pkg/constants"
	"github.com/rtCamp/next-crm/pkg/utils"
)

// UserSession represents the user session data stored in JWT
type UserSession struct {
	Name     string   `json:"name"` // login id, e.g. jane@example.com
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// IsSystemManager reports whether the session bypasses permission checks
func (u UserSession) IsSystemManager() bool {
	if u.Name == constants.UserAdministrator {
		return true
	}
	for _, r := range u.Roles {
		if r == constants.RoleSystemManager {
			return true
		}
	}
	return false
}

// Claims represents JWT claims
type Claims struct {
	User UserSession `json:"user"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates session tokens with a shared HMAC secret
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager; ttl defaults to 24h
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// GenerateToken creates a JWT token for a user session
func (m *TokenManager) GenerateToken(session UserSession) (string, error) {
	now := time.Now()
	claims := &Claims{
		User: session,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Name,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        utils.GenerateID(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken validates and parses a JWT token
func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.User.Name == "" {
			return nil, errors.New("token has no user")
		}
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
