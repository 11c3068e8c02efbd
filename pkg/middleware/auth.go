package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-events/pkg/jwt"
	"github.com/weiawesome/wes-events/pkg/response"
)

const (
	UserIDKey     = "user_id"
	UsernameKey   = "username"
	IsGuestKey    = "is_guest"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "

	DefaultCookieName = "token"
)

// TokenValidator validates session tokens.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware validates session tokens carried in a cookie or bearer header.
type AuthMiddleware struct {
	validator  TokenValidator
	cookieName string
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(validator TokenValidator, cookieName string) *AuthMiddleware {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &AuthMiddleware{
		validator:  validator,
		cookieName: cookieName,
	}
}

// CookieName returns the name of the session cookie.
func (m *AuthMiddleware) CookieName() string {
	return m.cookieName
}

// RequireAuth returns a Gin middleware that rejects requests without a valid token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		claims, err := m.validator.ValidateToken(token)
		if err != nil {
			response.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the caller identity when a valid token is present
// and lets anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := m.extractToken(c); token != "" {
			if claims, err := m.validator.ValidateToken(token); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// RequireMember rejects guest sessions. It must run after RequireAuth.
func (m *AuthMiddleware) RequireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" || IsGuest(c) {
			response.Forbidden(c, "LOGIN_REQUIRED", "a registered account is required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader(AuthHeaderKey)
	if strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimPrefix(authHeader, BearerPrefix)
	}
	return ""
}

func setIdentity(c *gin.Context, claims *jwt.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UsernameKey, claims.Name)
	c.Set(IsGuestKey, claims.IsGuest)
}

// GetUserID extracts user ID from Gin context.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetUsername extracts username from Gin context.
func GetUsername(c *gin.Context) string {
	return c.GetString(UsernameKey)
}

// IsGuest reports whether the caller is using the shared guest session.
func IsGuest(c *gin.Context) bool {
	return c.GetBool(IsGuestKey)
}

// IsAuthenticated reports whether any identity was attached to the request.
func IsAuthenticated(c *gin.Context) bool {
	_, ok := c.Get(UsernameKey)
	return ok
}

// IsMember reports whether the caller is a registered, non-guest user.
func IsMember(c *gin.Context) bool {
	return GetUserID(c) != "" && !IsGuest(c)
}
