package oauth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workspace-platform/workspace-sso/internal/db/models"
)

// ConfigLister exposes the enabled SSO configs of an organization
type ConfigLister interface {
	GetConfigsForOrganization(ctx context.Context, organizationID string) ([]models.SSOConfig, error)
}

// signInOption is one provider button the login page can render. ConfigID
// feeds the direct sign-in route; the secret never leaves the server.
type signInOption struct {
	ConfigID string `json:"config_id"`
	SSOType  string `json:"sso_type"`
	Name     string `json:"name"`
}

// SignInOptionsHandler lists the sign-in methods available to an organization.
//
//	GET /api/v1/oauth/sign-in-options?organizationId=<id>
func SignInOptionsHandler(configs ConfigLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Query("organizationId")
		if orgID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "organizationId is required"})
			return
		}

		list, err := configs.GetConfigsForOrganization(c.Request.Context(), orgID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		options := make([]signInOption, 0, len(list))
		for _, cfg := range list {
			options = append(options, signInOption{ConfigID: cfg.ID, SSOType: cfg.SSO, Name: cfg.Configs.Name})
		}
		c.JSON(http.StatusOK, gin.H{"options": options})
	}
}
