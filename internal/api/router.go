// Package api wires together the HTTP routes for the workspace SSO service.
//
// The sign-in endpoints are unauthenticated by nature — they are how a session
// is obtained. Everything registered under the authenticated group requires a
// valid session token issued by the sign-in flow.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/workspace-platform/workspace-sso/internal/api/oauth"
	"github.com/workspace-platform/workspace-sso/internal/auth"
	"github.com/workspace-platform/workspace-sso/internal/auth/git"
	"github.com/workspace-platform/workspace-sso/internal/auth/google"
	"github.com/workspace-platform/workspace-sso/internal/auth/openid"
	"github.com/workspace-platform/workspace-sso/internal/config"
	"github.com/workspace-platform/workspace-sso/internal/db/models"
	"github.com/workspace-platform/workspace-sso/internal/db/repositories"
	"github.com/workspace-platform/workspace-sso/internal/license"
	"github.com/workspace-platform/workspace-sso/internal/middleware"
	"github.com/workspace-platform/workspace-sso/internal/signin"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sqlx.DB) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig()))

	normalizers := auth.NewRegistry()
	normalizers.Register(models.SSOTypeGoogle, google.NewNormalizer())
	normalizers.Register(models.SSOTypeGit, git.NewNormalizer())
	normalizers.Register(models.SSOTypeOpenID, openid.NewNormalizer())

	service := signin.NewService(
		cfg,
		signin.NewSQLStore(db),
		normalizers,
		license.NewGate(cfg.License),
		signin.NewJWTSigner(cfg.Auth.JWT.ExpiresIn),
	)
	handlers := oauth.NewHandlers(service)

	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/oauth/sign-in", handlers.SignInHandler())
		v1.POST("/oauth/sign-in/:configId", handlers.SignInHandler())
		v1.GET("/oauth/sign-in-options", oauth.SignInOptionsHandler(repositories.NewSSOConfigRepository(db)))

		authed := v1.Group("/")
		authed.Use(middleware.SessionAuth())
		authed.GET("/session", SessionHandler(repositories.NewUserRepository(db)))
	}

	return router
}
