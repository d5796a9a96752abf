package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workspace-platform/workspace-sso/internal/db/models"
	"github.com/workspace-platform/workspace-sso/internal/middleware"
)

// UserGetter loads the user record behind an authenticated session
type UserGetter interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// SessionHandler returns the profile of the authenticated session. The token
// only proves who signed in; the current record is loaded fresh so an archived
// or deleted user stops resolving as soon as the row changes.
//
//	GET /api/v1/session
func SessionHandler(users UserGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.GetUserByID(c.Request.Context(), c.GetString(middleware.ContextUserID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if user == nil || user.IsArchived() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session user is no longer active"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user_id":         user.ID,
			"email":           user.Email,
			"first_name":      user.FirstName,
			"last_name":       user.LastName,
			"super_admin":     user.SuperAdmin,
			"organization_id": c.GetString(middleware.ContextOrganizationID),
		})
	}
}
