// auth.go validates session tokens issued by the sign-in flow. Protected
// routes use SessionAuth; handlers read the authenticated identity from the
// gin.Context keys below.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/workspace-platform/workspace-sso/internal/auth"
)

const (
	// ContextUserID is the gin.Context key holding the authenticated user id.
	ContextUserID = "user_id"
	// ContextOrganizationID is the gin.Context key holding the session's organization id.
	ContextOrganizationID = "organization_id"
	// ContextEmail is the gin.Context key holding the authenticated email.
	ContextEmail = "email"
)

// SessionAuth validates the Bearer session token and stores the claims in the
// request context. Requests without a valid token are rejected with 401.
func SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			return
		}

		claims, err := auth.ValidateSessionToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session token"})
			return
		}

		c.Set(ContextUserID, claims.Username)
		c.Set(ContextOrganizationID, claims.OrganizationID)
		c.Set(ContextEmail, claims.Subject)
		c.Next()
	}
}
