// provision.go finds or creates the user and membership backing a sign-in. It
// always runs inside the single transaction opened by the orchestrator, so any
// failure — including the seat validation at the end — rolls back every write.
//
// Two top-level paths exist: direct-to-organization login (a tenant is already
// bound) and the instance-wide common-page login (no tenant bound yet, may
// create one just-in-time). Each branch returns an explicit ProvisionResult
// instead of mutating shared locals, so the decision structure stays auditable.
package signin

import (
	"context"

	"github.com/workspace-platform/workspace-sso/internal/auth"
	"github.com/workspace-platform/workspace-sso/internal/db/models"
	"github.com/workspace-platform/workspace-sso/internal/db/repositories"
)

// Outcome discriminates how provisioning satisfied the sign-in.
type Outcome int

const (
	// OutcomeFound means user and active membership already existed.
	OutcomeFound Outcome = iota
	// OutcomeReactivated means an invited membership (or pending invitation) was activated.
	OutcomeReactivated
	// OutcomeCreated means a user, membership, or workspace was created.
	OutcomeCreated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReactivated:
		return "reactivated"
	case OutcomeCreated:
		return "created"
	default:
		return "found"
	}
}

// ProvisionResult is the committed state a session is issued against.
type ProvisionResult struct {
	Outcome      Outcome
	User         *models.User
	Organization *models.Organization
	Membership   *models.OrganizationUser
	// WorkspaceCreated is set when a new organization was written in this
	// transaction. The orchestrator records metrics from it only after the
	// commit succeeds, so a rolled-back workspace is never counted.
	WorkspaceCreated bool
}

// provision dispatches to the direct or common-page path and runs the license
// seat validation before returning. The caller wraps it in Store.InTx.
func (s *Service) provision(ctx context.Context, st Stores, tenant *resolvedTenant, identity *auth.NormalizedIdentity) (*ProvisionResult, error) {
	var result *ProvisionResult
	var err error

	if tenant.instanceLevel {
		result, err = s.provisionCommonPage(ctx, st, tenant, identity)
	} else {
		result, err = s.provisionDirect(ctx, st, tenant, identity)
	}
	if err != nil {
		return nil, err
	}

	// Seat validation runs last, inside the same transaction, so an over-limit
	// sign-up rolls back the user/organization/membership it just created.
	count, err := st.Users.CountUsers(ctx)
	if err != nil {
		return nil, Internal("failed to count users", err)
	}
	if err := s.license.ValidateSeats(count); err != nil {
		return nil, &Error{Kind: KindUnauthorized, Reason: ReasonSeatLimitExceeded, Err: err}
	}

	return result, nil
}

// provisionDirect handles logins already bound to a stored organization
// (explicit config, or instance SSO from a tenant's own login page).
func (s *Service) provisionDirect(ctx context.Context, st Stores, tenant *resolvedTenant, identity *auth.NormalizedIdentity) (*ProvisionResult, error) {
	org := tenant.organization
	statuses := []string{models.MembershipStatusActive, models.MembershipStatusInvited}

	if !org.EnableSignUp {
		// Sign-up disabled: only users with a pre-existing membership get in.
		user, membership, err := st.Memberships.FindUserWithMembership(ctx, org.ID, identity.Email, statuses)
		if err != nil {
			return nil, Internal("failed to look up membership", err)
		}
		if user == nil {
			return nil, Unauthorized(ReasonUserNotInWorkspace)
		}
		if !membership.IsActive() {
			if err := st.Memberships.ActivateMembership(ctx, membership.ID); err != nil {
				return nil, Internal("failed to activate membership", err)
			}
			membership.Status = models.MembershipStatusActive
			return &ProvisionResult{Outcome: OutcomeReactivated, User: user, Organization: org, Membership: membership}, nil
		}
		return &ProvisionResult{Outcome: OutcomeFound, User: user, Organization: org, Membership: membership}, nil
	}

	// Sign-up allowed: find or create.
	user, membership, err := st.Memberships.FindUserWithMembership(ctx, org.ID, identity.Email, statuses)
	if err != nil {
		return nil, Internal("failed to look up membership", err)
	}

	if user == nil {
		// The user may already exist without a membership in this organization.
		user, err = st.Users.GetUserByEmail(ctx, identity.Email)
		if err != nil {
			return nil, Internal("failed to look up user", err)
		}
		if user == nil {
			user = &models.User{
				Email:     identity.Email,
				FirstName: identity.FirstName,
				LastName:  identity.LastName,
				Status:    models.UserStatusActive,
			}
			if err := st.Users.CreateUser(ctx, user); err != nil {
				return nil, Internal("failed to create user", err)
			}
		}

		// The fresh membership is deliberately left in the invited state; it is
		// activated by the invite flow, not by this sign-in.
		membership = &models.OrganizationUser{
			OrganizationID: org.ID,
			UserID:         user.ID,
		}
		if err := st.Memberships.CreateMembership(ctx, membership); err != nil {
			return nil, Internal("failed to create membership", err)
		}
		return &ProvisionResult{Outcome: OutcomeCreated, User: user, Organization: org, Membership: membership}, nil
	}

	if !membership.IsActive() {
		if err := st.Memberships.ActivateMembership(ctx, membership.ID); err != nil {
			return nil, Internal("failed to activate membership", err)
		}
		membership.Status = models.MembershipStatusActive
		return &ProvisionResult{Outcome: OutcomeReactivated, User: user, Organization: org, Membership: membership}, nil
	}

	return &ProvisionResult{Outcome: OutcomeFound, User: user, Organization: org, Membership: membership}, nil
}

// provisionCommonPage handles instance-wide logins from the platform's common
// page, where no target organization is bound yet.
func (s *Service) provisionCommonPage(ctx context.Context, st Stores, tenant *resolvedTenant, identity *auth.NormalizedIdentity) (*ProvisionResult, error) {
	user, err := st.Users.GetUserByEmail(ctx, identity.Email)
	if err != nil {
		return nil, Internal("failed to look up user", err)
	}

	if user == nil {
		return s.provisionFirstTime(ctx, st, tenant, identity)
	}

	if user.HasPendingInvitation() {
		return s.completeInvitation(ctx, st, user)
	}

	return s.selectWorkspace(ctx, st, user, tenant)
}

// provisionFirstTime creates a brand-new user plus a just-in-time workspace,
// provided instance sign-up and personal-workspace policy allow it. The very
// first user in the system always qualifies (bootstrap).
func (s *Service) provisionFirstTime(ctx context.Context, st Stores, tenant *resolvedTenant, identity *auth.NormalizedIdentity) (*ProvisionResult, error) {
	count, err := st.Users.CountUsers(ctx)
	if err != nil {
		return nil, Internal("failed to count users", err)
	}

	allowed, err := s.personalWorkspaceAllowed(ctx, st, false)
	if err != nil {
		return nil, err
	}
	if !tenant.organization.EnableSignUp || (!allowed && count > 0) {
		return nil, Unauthorized(ReasonNoEligibleWorkspace)
	}

	org, err := st.Organizations.CreateOrganization(ctx, models.DefaultWorkspaceName)
	if err != nil {
		return nil, Internal("failed to create workspace", err)
	}

	user := &models.User{
		Email:                 identity.Email,
		FirstName:             identity.FirstName,
		LastName:              identity.LastName,
		Status:                models.UserStatusActive,
		DefaultOrganizationID: &org.ID,
	}
	if err := st.Users.CreateUser(ctx, user); err != nil {
		return nil, Internal("failed to create user", err)
	}

	membership := &models.OrganizationUser{
		OrganizationID: org.ID,
		UserID:         user.ID,
	}
	if err := st.Memberships.CreateMembership(ctx, membership); err != nil {
		return nil, Internal("failed to create membership", err)
	}

	if err := st.Users.AddToGroups(ctx, user.ID, org.ID, []string{models.GroupAllUsers, models.GroupAdmin}); err != nil {
		return nil, Internal("failed to assign default groups", err)
	}

	return &ProvisionResult{Outcome: OutcomeCreated, User: user, Organization: org, Membership: membership, WorkspaceCreated: true}, nil
}

// completeInvitation finishes a pending invite: the token is cleared and the
// membership in the user's default organization is activated.
func (s *Service) completeInvitation(ctx context.Context, st Stores, user *models.User) (*ProvisionResult, error) {
	if user.DefaultOrganizationID == nil {
		return nil, Unauthorized(ReasonNoEligibleWorkspace)
	}

	org, err := st.Organizations.GetOrganizationByID(ctx, *user.DefaultOrganizationID)
	if err != nil {
		return nil, Internal("failed to load organization", err)
	}
	if org == nil {
		return nil, Unauthorized(ReasonNoEligibleWorkspace)
	}

	membership, err := st.Memberships.GetMembership(ctx, org.ID, user.ID)
	if err != nil {
		return nil, Internal("failed to load membership", err)
	}
	if membership == nil {
		return nil, Unauthorized(ReasonNoEligibleWorkspace)
	}

	if err := st.Users.ClearInvitation(ctx, user.ID); err != nil {
		return nil, Internal("failed to clear invitation", err)
	}
	user.InvitationToken = nil
	user.Status = models.UserStatusActive

	if err := st.Memberships.ActivateMembership(ctx, membership.ID); err != nil {
		return nil, Internal("failed to activate membership", err)
	}
	membership.Status = models.MembershipStatusActive

	return &ProvisionResult{Outcome: OutcomeReactivated, User: user, Organization: org, Membership: membership}, nil
}

// selectWorkspace picks the session organization for an existing user signing
// in from the common page: the default organization when eligible, else the
// first candidate, else a just-in-time personal workspace when policy allows.
func (s *Service) selectWorkspace(ctx context.Context, st Stores, user *models.User, tenant *resolvedTenant) (*ProvisionResult, error) {
	var candidates []models.Organization
	var err error

	if user.SuperAdmin {
		// Super-admins are not limited to organizations with SSO login rights:
		// their default organization wins, else the sole organization on a
		// single-workspace instance.
		if user.DefaultOrganizationID != nil {
			org, err := st.Organizations.GetOrganizationByID(ctx, *user.DefaultOrganizationID)
			if err != nil {
				return nil, Internal("failed to load organization", err)
			}
			if org != nil {
				candidates = []models.Organization{*org}
			}
		}
		if len(candidates) == 0 {
			org, err := st.Organizations.GetSingleOrganization(ctx)
			if err != nil {
				return nil, Internal("failed to load organization", err)
			}
			if org != nil {
				candidates = []models.Organization{*org}
			}
		}
	} else {
		candidates, err = st.Organizations.OrganizationsWithLoginSupport(ctx, user.ID, tenant.config.SSO)
		if err != nil {
			return nil, Internal("failed to list eligible workspaces", err)
		}
	}

	target := pickOrganization(candidates, user.DefaultOrganizationID)
	if target == nil {
		allowed, err := s.personalWorkspaceAllowed(ctx, st, user.SuperAdmin)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, Unauthorized(ReasonNoEligibleWorkspace)
		}
		return s.createPersonalWorkspace(ctx, st, user)
	}

	membership, err := st.Memberships.GetMembership(ctx, target.ID, user.ID)
	if err != nil {
		return nil, Internal("failed to load membership", err)
	}
	if membership == nil {
		// Only a super-admin can reach a candidate without a membership row.
		if !user.SuperAdmin {
			return nil, Unauthorized(ReasonNoEligibleWorkspace)
		}
		membership = &models.OrganizationUser{
			OrganizationID: target.ID,
			UserID:         user.ID,
			Status:         models.MembershipStatusActive,
		}
		if err := st.Memberships.CreateMembership(ctx, membership); err != nil {
			return nil, Internal("failed to create membership", err)
		}
		return &ProvisionResult{Outcome: OutcomeCreated, User: user, Organization: target, Membership: membership}, nil
	}

	if !membership.IsActive() {
		if err := st.Memberships.ActivateMembership(ctx, membership.ID); err != nil {
			return nil, Internal("failed to activate membership", err)
		}
		membership.Status = models.MembershipStatusActive
		return &ProvisionResult{Outcome: OutcomeReactivated, User: user, Organization: target, Membership: membership}, nil
	}

	return &ProvisionResult{Outcome: OutcomeFound, User: user, Organization: target, Membership: membership}, nil
}

// createPersonalWorkspace provisions a fresh workspace for an existing user
// with no eligible organization and makes it their default.
func (s *Service) createPersonalWorkspace(ctx context.Context, st Stores, user *models.User) (*ProvisionResult, error) {
	org, err := st.Organizations.CreateOrganization(ctx, models.DefaultWorkspaceName)
	if err != nil {
		return nil, Internal("failed to create workspace", err)
	}

	membership := &models.OrganizationUser{
		OrganizationID: org.ID,
		UserID:         user.ID,
	}
	if err := st.Memberships.CreateMembership(ctx, membership); err != nil {
		return nil, Internal("failed to create membership", err)
	}

	if err := st.Users.AddToGroups(ctx, user.ID, org.ID, []string{models.GroupAllUsers, models.GroupAdmin}); err != nil {
		return nil, Internal("failed to assign default groups", err)
	}

	user.DefaultOrganizationID = &org.ID
	if err := st.Users.UpdateUser(ctx, user); err != nil {
		return nil, Internal("failed to update user", err)
	}

	return &ProvisionResult{Outcome: OutcomeCreated, User: user, Organization: org, Membership: membership, WorkspaceCreated: true}, nil
}

// pickOrganization prefers the user's default organization among candidates,
// falling back to the first candidate.
func pickOrganization(candidates []models.Organization, defaultID *string) *models.Organization {
	if defaultID != nil {
		for i := range candidates {
			if candidates[i].ID == *defaultID {
				return &candidates[i]
			}
		}
	}
	if len(candidates) > 0 {
		return &candidates[0]
	}
	return nil
}

// personalWorkspaceAllowed evaluates the personal-workspace gate: super-admins
// always qualify; otherwise the instance_settings row wins over the config default.
func (s *Service) personalWorkspaceAllowed(ctx context.Context, st Stores, superAdmin bool) (bool, error) {
	if superAdmin {
		return true, nil
	}
	value, err := st.Settings.GetSetting(ctx, repositories.SettingAllowPersonalWorkspace)
	if err != nil {
		return false, Internal("failed to read instance settings", err)
	}
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return s.cfg.Instance.AllowPersonalWorkspace, nil
	}
}
