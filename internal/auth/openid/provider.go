// Package openid implements the OpenID Connect identity normalizer for generic
// IdPs (Okta, Keycloak, Azure AD, ...). It handles OIDC service discovery, the
// PKCE authorization-code exchange, and ID-token claims extraction. The feature
// is license-gated; the gate is enforced by the orchestrator, not here.
package openid

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/workspace-platform/workspace-sso/internal/auth"
	"github.com/workspace-platform/workspace-sso/internal/db/models"
	"golang.org/x/oauth2"
)

const wellKnownSuffix = "/.well-known/openid-configuration"

// Normalizer exchanges OIDC authorization codes for normalized identities.
// Discovery documents are cached per issuer because different organizations
// may point at different IdPs.
type Normalizer struct {
	mu        sync.Mutex
	providers map[string]*oidc.Provider
}

// NewNormalizer creates an OpenID Connect identity normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{providers: make(map[string]*oidc.Provider)}
}

// issuerFromWellKnown strips the discovery suffix so operators can configure
// either the issuer URL or the full well-known URL.
func issuerFromWellKnown(wellKnownURL string) string {
	return strings.TrimSuffix(strings.TrimRight(wellKnownURL, "/"), wellKnownSuffix)
}

func (n *Normalizer) discover(ctx context.Context, issuer string) (*oidc.Provider, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if p, ok := n.providers[issuer]; ok {
		return p, nil
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("OIDC discovery failed for %s: %w", issuer, err)
	}
	n.providers[issuer] = provider
	return provider, nil
}

// SignIn exchanges the authorization code (with the PKCE verifier from the
// caller's session cookie), verifies the returned ID token, and extracts the
// normalized identity.
func (n *Normalizer) SignIn(ctx context.Context, creds auth.Credentials, cfg *models.SSOConfig) (*auth.NormalizedIdentity, error) {
	if cfg.Configs.WellKnownURL == "" {
		return nil, fmt.Errorf("OpenID well-known URL is not configured")
	}
	if cfg.Configs.ClientID == "" || cfg.Configs.ClientSecret == "" {
		return nil, fmt.Errorf("OpenID client credentials are not configured")
	}

	issuer := issuerFromWellKnown(cfg.Configs.WellKnownURL)
	provider, err := n.discover(ctx, issuer)
	if err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.Configs.ClientID,
		ClientSecret: cfg.Configs.ClientSecret,
		RedirectURL:  cfg.Configs.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
	}

	opts := []oauth2.AuthCodeOption{}
	if creds.CodeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(creds.CodeVerifier))
	}

	token, err := oauthCfg.Exchange(ctx, creds.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("identity provider did not return an ID token")
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.Configs.ClientID})
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Name       string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse ID token claims: %w", err)
	}

	firstName, lastName := claims.GivenName, claims.FamilyName
	if firstName == "" && claims.Name != "" {
		parts := strings.SplitN(claims.Name, " ", 2)
		firstName = parts[0]
		if len(parts) == 2 {
			lastName = parts[1]
		}
	}

	return &auth.NormalizedIdentity{
		ProviderUserID: claims.Sub,
		Email:          claims.Email,
		FirstName:      firstName,
		LastName:       lastName,
	}, nil
}
