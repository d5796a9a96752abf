// resolver.go determines which organization and SSO configuration a sign-in
// request targets. Exactly one of three resolution modes applies per request,
// tried in strict priority order:
//
//  1. Explicit config id — the tenant-scoped SSO login page names a stored config.
//  2. Instance SSO with a known organization — multi-tenant mode, provider tag
//     and organization id both present (tenant login page using instance SSO).
//  3. Instance SSO from the common page — multi-tenant mode, provider tag only;
//     the config is synthesized from instance-level settings and the
//     organization carries the instance-wide sign-up and domain policy.
//
// Anything else — including single-tenant mode with no explicit config — is
// Unauthorized. A resolution that somehow yields neither organization nor
// config is also Unauthorized rather than silently proceeding.
package signin

import (
	"context"

	"github.com/workspace-platform/workspace-sso/internal/db/models"
)

// resolvedTenant is the outcome of tenant resolution. instanceLevel marks mode
// 3, where no stored organization is bound yet and provisioning may create one.
type resolvedTenant struct {
	organization  *models.Organization
	config        *models.SSOConfig
	instanceLevel bool
}

func (s *Service) resolveTenant(ctx context.Context, req *Request) (*resolvedTenant, error) {
	stores := s.store.Stores()

	// Mode 1: explicit config id from a tenant-scoped login page.
	if req.ConfigID != "" {
		cfg, err := stores.Configs.GetConfigByID(ctx, req.ConfigID)
		if err != nil {
			return nil, Internal("failed to load SSO config", err)
		}
		if cfg == nil || cfg.OrganizationID == nil {
			return nil, Unauthorized(ReasonUnresolvedTenant)
		}
		org, err := stores.Organizations.GetOrganizationByID(ctx, *cfg.OrganizationID)
		if err != nil {
			return nil, Internal("failed to load organization", err)
		}
		if org == nil {
			return nil, Unauthorized(ReasonUnresolvedTenant)
		}
		return &resolvedTenant{organization: org, config: cfg}, nil
	}

	// Modes 2 and 3 require multi-tenant mode and a provider tag.
	if !s.cfg.MultiTenancy.Enabled || req.SSOType == "" {
		return nil, Unauthorized(ReasonUnresolvedTenant)
	}

	// Mode 2: instance SSO initiated from a known tenant's login page.
	if req.OrganizationID != "" {
		org, err := stores.Organizations.GetOrganizationByID(ctx, req.OrganizationID)
		if err != nil {
			return nil, Internal("failed to load organization", err)
		}
		if org == nil {
			return nil, Unauthorized(ReasonUnresolvedTenant)
		}
		cfg, err := stores.Configs.GetConfigByOrganization(ctx, org.ID, req.SSOType)
		if err != nil {
			return nil, Internal("failed to load SSO config", err)
		}
		if cfg == nil {
			return nil, Unauthorized(ReasonUnresolvedTenant)
		}
		return &resolvedTenant{organization: org, config: cfg}, nil
	}

	// Mode 3: common-page login; synthesize the config from instance settings.
	cfg := s.instanceConfig(req.SSOType)
	if cfg == nil {
		return nil, Unauthorized(ReasonUnresolvedTenant)
	}
	org := &models.Organization{
		EnableSignUp: s.cfg.Instance.SignUpEnabled,
		Domain:       s.cfg.Instance.AcceptedDomains,
	}
	return &resolvedTenant{organization: org, config: cfg, instanceLevel: true}, nil
}

// instanceConfig synthesizes an SSOConfig from instance-level application
// settings. It is built fresh per resolution call so config reloads and tests
// never observe stale global state. Returns nil when the provider is not
// enabled at the instance level.
func (s *Service) instanceConfig(ssoType string) *models.SSOConfig {
	switch ssoType {
	case models.SSOTypeGoogle:
		if !s.cfg.Auth.Google.Enabled {
			return nil
		}
		return &models.SSOConfig{
			SSO:     models.SSOTypeGoogle,
			Enabled: true,
			Configs: models.ProviderSettings{
				ClientID:     s.cfg.Auth.Google.ClientID,
				ClientSecret: s.cfg.Auth.Google.ClientSecret,
			},
		}
	case models.SSOTypeGit:
		if !s.cfg.Auth.Git.Enabled {
			return nil
		}
		return &models.SSOConfig{
			SSO:     models.SSOTypeGit,
			Enabled: true,
			Configs: models.ProviderSettings{
				ClientID:     s.cfg.Auth.Git.ClientID,
				ClientSecret: s.cfg.Auth.Git.ClientSecret,
				Host:         s.cfg.Auth.Git.Host,
			},
		}
	case models.SSOTypeOpenID:
		if !s.cfg.Auth.OpenID.Enabled {
			return nil
		}
		return &models.SSOConfig{
			SSO:     models.SSOTypeOpenID,
			Enabled: true,
			Configs: models.ProviderSettings{
				ClientID:     s.cfg.Auth.OpenID.ClientID,
				ClientSecret: s.cfg.Auth.OpenID.ClientSecret,
				WellKnownURL: s.cfg.Auth.OpenID.WellKnownURL,
				RedirectURL:  s.cfg.Auth.OpenID.RedirectURL,
				Name:         s.cfg.Auth.OpenID.Name,
			},
		}
	default:
		return nil
	}
}
