package auth

import (
	"context"
	"net/http"
	"strings"

	dom "Sweetshop/internal/domain"

	"github.com/gin-gonic/gin"
)

const contextKeyUser = "current_user"

// UserResolver resolves a token subject to a user record.
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (dom.User, error)
}

// CurrentUser returns the user set by RequireAuth. Zero value if not set.
func CurrentUser(c *gin.Context) dom.User {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return dom.User{}
	}
	u, ok := v.(dom.User)
	if !ok {
		return dom.User{}
	}
	return u
}

// RequireAuth returns a middleware that validates the bearer token and sets
// the resolved user in context. Missing/invalid token or a subject that no
// longer exists responds with 401.
func RequireAuth(tokens *Manager, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		username, err := tokens.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		user, err := users.GetByUsername(c.Request.Context(), username)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(contextKeyUser, user)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth; rejects non-admin users with 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentUser(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
