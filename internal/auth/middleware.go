package auth

import (
	"errors"
	"net/http"
	"strings"

	"gymops/internal/api"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxUserRole  = "user_role"
)

var (
	errUnauthenticated = api.Unauthorized("UNAUTHENTICATED", "authentication required")
	errForbidden       = api.Forbidden("FORBIDDEN", "insufficient permissions")
)

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: message, Code: "UNAUTHENTICATED"})
}

// AuthMiddleware resolves the bearer token into an Identity on the context.
func AuthMiddleware(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			unauthorized(c, "Token is empty")
			return
		}

		claims, err := ValidateToken(tokenString, accessTokenSecret)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				unauthorized(c, "Token expired")
			default:
				unauthorized(c, "Invalid or malformed token")
			}
			return
		}

		if claims.TokenType != tokenTypeAccess {
			unauthorized(c, "Access token required")
			return
		}

		SetIdentity(c, claims.Identity())
		c.Set(ctxUserEmail, claims.Email)

		c.Next()
	}
}

// RequireCapability aborts with 403 unless the caller's role holds capability.
func RequireCapability(capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			api.RespondError(c, errUnauthenticated)
			return
		}

		if !Allowed(id.Role, capability) {
			api.RespondError(c, errForbidden)
			return
		}

		c.Next()
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}

	id, ok := userID.(int)
	if !ok {
		return 0, false
	}

	return id, true
}

func GetRole(c *gin.Context) (Role, bool) {
	v, exists := c.Get(ctxUserRole)
	if !exists {
		return "", false
	}

	role, ok := v.(Role)
	if !ok || !role.Valid() {
		return "", false
	}
	return role, true
}

// IdentityFrom returns the caller set by AuthMiddleware.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return Identity{}, false
	}
	role, ok := GetRole(c)
	if !ok {
		return Identity{}, false
	}
	return Identity{UserID: userID, Role: role}, true
}

// MustIdentity is IdentityFrom for handlers mounted behind AuthMiddleware; it
// writes a 401 and returns false when no identity is present.
func MustIdentity(c *gin.Context) (Identity, bool) {
	id, ok := IdentityFrom(c)
	if !ok {
		api.RespondError(c, errUnauthenticated)
	}
	return id, ok
}

// SetIdentity stores id on the context the same way AuthMiddleware does.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(ctxUserID, id.UserID)
	c.Set(ctxUserRole, id.Role)
}
