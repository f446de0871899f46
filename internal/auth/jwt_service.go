package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionExpiry is used when no session TTL is configured.
const DefaultSessionExpiry = 12 * time.Hour

// Claims represents session token claims. The registered ID carries the
// session id that keys the server-side session state.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionID returns the session id carried by the token.
func (c *Claims) SessionID() string {
	return c.ID
}

// JWTService handles session token generation and validation.
type JWTService struct {
	secret []byte
	expiry time.Duration
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string, expiry time.Duration) *JWTService {
	if expiry <= 0 {
		expiry = DefaultSessionExpiry
	}
	return &JWTService{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Expiry returns how long issued tokens stay valid.
func (s *JWTService) Expiry() time.Duration {
	return s.expiry
}

// Secret returns the signing key, for use by token-checking middleware.
func (s *JWTService) Secret() []byte {
	return s.secret
}

// GenerateSessionToken signs a token binding username to sessionID until expiresAt.
func (s *JWTService) GenerateSessionToken(sessionID, username string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID == "" {
		return nil, errors.New("token ID not found")
	}
	return claims, nil
}
