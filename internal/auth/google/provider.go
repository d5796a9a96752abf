// Package google implements the Google identity normalizer. Google sign-in hands
// the backend an ID token issued by Google's OIDC endpoint; the normalizer
// verifies it against the organization's client id and extracts the profile claims.
package google

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/workspace-platform/workspace-sso/internal/auth"
	"github.com/workspace-platform/workspace-sso/internal/db/models"
)

// Issuer is Google's fixed OIDC issuer URL
const Issuer = "https://accounts.google.com"

// Normalizer verifies Google ID tokens. The discovery document is fetched once
// and cached; verifiers are cheap and built per call because the audience
// (client id) varies per organization.
type Normalizer struct {
	mu       sync.Mutex
	provider *oidc.Provider
}

// NewNormalizer creates a Google identity normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) discover(ctx context.Context) (*oidc.Provider, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.provider != nil {
		return n.provider, nil
	}
	provider, err := oidc.NewProvider(ctx, Issuer)
	if err != nil {
		return nil, fmt.Errorf("google OIDC discovery failed: %w", err)
	}
	n.provider = provider
	return provider, nil
}

// SignIn verifies the supplied Google ID token and returns the normalized identity.
func (n *Normalizer) SignIn(ctx context.Context, creds auth.Credentials, cfg *models.SSOConfig) (*auth.NormalizedIdentity, error) {
	if cfg.Configs.ClientID == "" {
		return nil, fmt.Errorf("google sign-in is not configured")
	}

	provider, err := n.discover(ctx)
	if err != nil {
		return nil, err
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.Configs.ClientID})
	idToken, err := verifier.Verify(ctx, creds.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to verify Google ID token: %w", err)
	}

	var claims struct {
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse Google ID token claims: %w", err)
	}

	return &auth.NormalizedIdentity{
		ProviderUserID: claims.Sub,
		Email:          claims.Email,
		FirstName:      claims.GivenName,
		LastName:       claims.FamilyName,
	}, nil
}
