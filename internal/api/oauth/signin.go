// Package oauth implements the HTTP surface of the federated sign-in flow.
package oauth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workspace-platform/workspace-sso/internal/signin"
	"github.com/workspace-platform/workspace-sso/internal/telemetry"
)

// codeVerifierCookie is the cookie carrying the PKCE code verifier set when
// the client was redirected to an OpenID authorization endpoint.
const codeVerifierCookie = "oidc_code_verifier"

// Service is the sign-in capability the handlers consume
type Service interface {
	SignIn(ctx context.Context, req *signin.Request) (*signin.Result, error)
}

// Handlers serves the sign-in endpoints
type Handlers struct {
	service Service
}

// NewHandlers creates the sign-in handlers
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// signInRequest is the JSON body of a sign-in call
type signInRequest struct {
	Token          string `json:"token"`
	OrganizationID string `json:"organizationId"`
	SSOType        string `json:"ssoType"`
}

// SignInHandler handles federated sign-in.
//
//	POST /api/v1/oauth/sign-in            — instance SSO (ssoType, optional organizationId)
//	POST /api/v1/oauth/sign-in/:configId  — stored tenant-scoped SSO config
func (h *Handlers) SignInHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body signInRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		req := &signin.Request{
			Token:          body.Token,
			ConfigID:       c.Param("configId"),
			OrganizationID: body.OrganizationID,
			SSOType:        body.SSOType,
		}

		// The PKCE verifier travels in a cookie set during the authorize
		// redirect; its absence is fine for providers that do not use PKCE.
		if verifier, err := c.Cookie(codeVerifierCookie); err == nil {
			req.CodeVerifier = verifier
		}

		result, err := h.service.SignIn(c.Request.Context(), req)
		if err != nil {
			h.renderError(c, providerLabel(req), err)
			return
		}

		// The verifier is single-use.
		c.SetCookie(codeVerifierCookie, "", -1, "/", "", false, true)

		telemetry.SignInsTotal.WithLabelValues(providerLabel(req), "success").Inc()
		c.JSON(http.StatusOK, result)
	}
}

func (h *Handlers) renderError(c *gin.Context, provider string, err error) {
	var se *signin.Error
	reason := "Internal server error"
	status := http.StatusInternalServerError
	outcome := "error"

	switch signin.KindOf(err) {
	case signin.KindUnauthorized:
		status = http.StatusUnauthorized
		outcome = "unauthorized"
	case signin.KindNotAcceptable:
		status = http.StatusNotAcceptable
		outcome = "not_acceptable"
	}

	// Internal failure details stay out of the response body.
	if errors.As(err, &se) && se.Kind != signin.KindInternal {
		reason = se.Reason
	}

	telemetry.SignInsTotal.WithLabelValues(provider, outcome).Inc()
	c.JSON(status, gin.H{"error": reason})
}

// providerLabel keeps the metric label bounded: the provider tag when
// present, "config" for explicit stored-config sign-ins.
func providerLabel(req *signin.Request) string {
	if req.SSOType != "" {
		return req.SSOType
	}
	return "config"
}
