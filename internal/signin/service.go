// Package signin implements federated SSO sign-in: tenant resolution, identity
// exchange, eligibility checks, transactional provisioning, and session
// issuance. Service.SignIn is the single entry point; everything else in the
// package is a stage of that pipeline.
package signin

import (
	"context"
	"log/slog"

	"github.com/workspace-platform/workspace-sso/internal/auth"
	"github.com/workspace-platform/workspace-sso/internal/config"
	"github.com/workspace-platform/workspace-sso/internal/db/models"
	"github.com/workspace-platform/workspace-sso/internal/license"
	"github.com/workspace-platform/workspace-sso/internal/telemetry"
)

// Licensor gates licensed features and seat counts
type Licensor interface {
	FeatureEnabled(name string) bool
	ValidateSeats(userCount int) error
}

// Request carries one sign-in attempt. Token is the provider credential;
// exactly one tenant resolution mode applies depending on which of ConfigID,
// OrganizationID, and SSOType are set.
type Request struct {
	Token          string
	ConfigID       string
	OrganizationID string
	SSOType        string
	CodeVerifier   string
}

// Service orchestrates the sign-in pipeline
type Service struct {
	cfg         *config.Config
	store       Store
	normalizers *auth.Registry
	license     Licensor
	signer      TokenSigner
}

// NewService creates the sign-in orchestrator
func NewService(cfg *config.Config, store Store, normalizers *auth.Registry, lic Licensor, signer TokenSigner) *Service {
	return &Service{
		cfg:         cfg,
		store:       store,
		normalizers: normalizers,
		license:     lic,
		signer:      signer,
	}
}

// SignIn runs the full pipeline for one sign-in attempt. On success the
// returned Result carries the session token and the organization the session
// is scoped to; on failure the error is a *Error classified for transport
// mapping, and no partial state survives (provisioning is transactional).
func (s *Service) SignIn(ctx context.Context, req *Request) (*Result, error) {
	tenant, err := s.resolveTenant(ctx, req)
	if err != nil {
		return nil, err
	}

	provider := tenant.config.SSO

	// OpenID is a licensed feature. This is checked before the exchange so a
	// valid OIDC assertion against an unlicensed instance fails closed with a
	// distinct reason rather than a credential error.
	if provider == models.SSOTypeOpenID && !s.license.FeatureEnabled(license.FeatureOpenID) {
		return nil, Unauthorized(ReasonOpenIDDisabled)
	}

	normalizer, err := s.normalizers.Get(provider)
	if err != nil {
		return nil, Unauthorized(ReasonUnresolvedTenant)
	}

	creds := auth.Credentials{Token: req.Token, CodeVerifier: req.CodeVerifier}
	identity, err := normalizer.SignIn(ctx, creds, tenant.config)
	if err != nil {
		slog.Debug("identity exchange failed", "provider", provider, "error", err)
		return nil, Unauthorized(ReasonInvalidCredentials)
	}
	if !identity.Viable() {
		return nil, Unauthorized(ReasonInvalidCredentials)
	}

	// Eligibility checks run against the current user record, before any write.
	existing, err := s.store.Stores().Users.GetUserByEmail(ctx, identity.Email)
	if err != nil {
		return nil, Internal("failed to look up user", err)
	}
	if existing != nil && existing.IsArchived() {
		return nil, NotAcceptable(ReasonUserArchived)
	}

	// Super-admins bypass the domain policy, as does a user completing a
	// pending invitation on the common page: the invite itself is the
	// authorization. A direct config-id login gets no such bypass, since the
	// invite was issued for the user's own workspace, not the one named in
	// the request.
	superAdmin := existing != nil && existing.SuperAdmin
	invited := tenant.instanceLevel && existing != nil && existing.HasPendingInvitation()
	if !superAdmin && !invited && !IsValidDomain(identity.Email, tenant.organization.Domain) {
		return nil, Unauthorized(ReasonDomainNotAllowed)
	}

	if identity.FirstName == "" {
		identity.FirstName = emailLocalPart(identity.Email)
	}

	var provisioned *ProvisionResult
	err = s.store.InTx(ctx, func(st Stores) error {
		pr, err := s.provision(ctx, st, tenant, identity)
		if err != nil {
			return err
		}
		provisioned = pr
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Only committed workspaces count; a rollback above never reaches here.
	if provisioned.WorkspaceCreated {
		telemetry.WorkspacesProvisionedTotal.Inc()
	}

	result, err := s.buildSession(ctx, s.store.Stores(), provisioned)
	if err != nil {
		return nil, err
	}

	slog.Info("sign-in succeeded",
		"provider", provider,
		"user_id", provisioned.User.ID,
		"organization_id", provisioned.Organization.ID,
		"outcome", provisioned.Outcome,
	)
	return result, nil
}
