// normalizer.go defines the provider-agnostic identity contract. Each supported
// SSO provider (google, git, openid) implements IdentityNormalizer; the sign-in
// orchestrator selects an implementation by provider tag and never sees
// provider-specific token formats.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/workspace-platform/workspace-sso/internal/db/models"
)

// NormalizedIdentity is the provider-agnostic result of a token exchange.
// It is transient: never persisted as-is.
type NormalizedIdentity struct {
	ProviderUserID string
	Email          string
	FirstName      string
	LastName       string
}

// Viable reports whether the identity meets the minimum bar for sign-in:
// a provider subject id and an email.
func (id *NormalizedIdentity) Viable() bool {
	return id != nil && id.ProviderUserID != "" && id.Email != ""
}

// Credentials carries the caller-supplied assertion handed to a provider.
// CodeVerifier is only meaningful for the openid provider (PKCE).
type Credentials struct {
	Token        string
	CodeVerifier string
}

// IdentityNormalizer exchanges a provider credential for a normalized identity.
// Implementations return an error on any exchange or verification failure; the
// orchestrator maps those to its unauthorized taxonomy.
type IdentityNormalizer interface {
	SignIn(ctx context.Context, creds Credentials, cfg *models.SSOConfig) (*NormalizedIdentity, error)
}

// Registry maps provider tags to their normalizer implementations.
type Registry struct {
	mu          sync.RWMutex
	normalizers map[string]IdentityNormalizer
}

// NewRegistry creates an empty normalizer registry
func NewRegistry() *Registry {
	return &Registry{normalizers: make(map[string]IdentityNormalizer)}
}

// Register adds or replaces the normalizer for a provider tag
func (r *Registry) Register(tag string, n IdentityNormalizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalizers[tag] = n
}

// Get returns the normalizer for a provider tag
func (r *Registry) Get(tag string) (IdentityNormalizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.normalizers[tag]
	if !ok {
		return nil, fmt.Errorf("unsupported SSO provider: %s", tag)
	}
	return n, nil
}
