package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrEmptySecret  = errors.New("jwt secret must not be empty")
)

// Claims represents JWT claims.
// Guest tokens carry no UserID.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"user_id,omitempty"`
	Name    string `json:"name"`
	IsGuest bool   `json:"is_guest"`
}

// Manager signs and validates session tokens.
type Manager struct {
	secret   []byte
	duration time.Duration
	issuer   string
	now      func() time.Time
}

// NewManager creates a new JWT manager using an HMAC secret.
func NewManager(secret string, duration time.Duration, issuer string) (*Manager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Manager{
		secret:   []byte(secret),
		duration: duration,
		issuer:   issuer,
		now:      time.Now,
	}, nil
}

// Duration returns the lifetime of issued tokens.
func (m *Manager) Duration() time.Duration {
	return m.duration
}

// GenerateToken creates a signed token for a registered user.
func (m *Manager) GenerateToken(userID, name string) (token string, expiresAt time.Time, err error) {
	return m.generate(userID, name, false)
}

// GenerateGuestToken creates a signed token for the shared guest identity.
func (m *Manager) GenerateGuestToken(name string) (token string, expiresAt time.Time, err error) {
	return m.generate("", name, true)
}

func (m *Manager) generate(userID, name string, isGuest bool) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.duration)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:  userID,
		Name:    name,
		IsGuest: isGuest,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ValidateToken validates a token and returns claims.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// A non-guest token must identify a user.
	if !claims.IsGuest && claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
