// Package license gates licensed features and seat counts. The workspace SSO
// core consults it in two places: the openid provider is only usable when the
// "oidc" feature is licensed, and every provisioning transaction validates the
// seat count before commit so an over-limit sign-up rolls back entirely.
package license

import (
	"fmt"

	"github.com/workspace-platform/workspace-sso/internal/config"
)

// FeatureOpenID is the feature flag gating OpenID Connect sign-in
const FeatureOpenID = "oidc"

// Gate evaluates license feature flags and seat limits
type Gate struct {
	features map[string]bool
	maxUsers int
}

// NewGate creates a license gate from configuration
func NewGate(cfg config.LicenseConfig) *Gate {
	return &Gate{
		features: cfg.Features,
		maxUsers: cfg.MaxUsers,
	}
}

// FeatureEnabled reports whether the named feature is licensed
func (g *Gate) FeatureEnabled(name string) bool {
	return g.features[name]
}

// ValidateSeats checks the user count against the licensed seat limit.
// A limit of zero means unlimited. The count passed in must include any users
// created earlier in the same transaction so the check sees the final state.
func (g *Gate) ValidateSeats(userCount int) error {
	if g.maxUsers > 0 && userCount > g.maxUsers {
		return fmt.Errorf("license seat limit exceeded: %d users, limit %d", userCount, g.maxUsers)
	}
	return nil
}
