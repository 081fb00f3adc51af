package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raline/core/internal/pkg/identity"
	"github.com/raline/core/internal/pkg/jwt"
	"github.com/raline/core/internal/pkg/response"
)

const (
	// ContextKeyIdentity holds the *identity.Identity for the request.
	ContextKeyIdentity = "identity"
	// ContextKeyRequestID holds the request correlation id.
	ContextKeyRequestID = "request_id"
)

// OptionalAuth attaches the caller's identity when a valid token is present
// but never blocks the request. Most comment routes are login-aware rather
// than login-gated, so this runs on the whole API group.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := identityFromToken(extractToken(c)); err == nil && id != nil {
			c.Set(ContextKeyIdentity, id)
		}
		c.Next()
	}
}

// Auth enforces a valid token and attaches the caller's identity.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := identityFromToken(extractToken(c))
		if err != nil || id == nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyIdentity, id)
		c.Next()
	}
}

// CurrentIdentity extracts the caller's identity from context.
// Returns nil for anonymous requests.
func CurrentIdentity(c *gin.Context) *identity.Identity {
	v, _ := c.Get(ContextKeyIdentity)
	id, _ := v.(*identity.Identity)
	return id
}

func identityFromToken(token string) (*identity.Identity, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := jwt.Parse(token)
	if err != nil {
		return nil, err
	}
	role := identity.RoleNormal
	if claims.UserType == string(identity.RoleAdmin) {
		role = identity.RoleAdmin
	}
	return &identity.Identity{UID: claims.UID, Role: role, Email: claims.Email}, nil
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
