// session.go turns a committed ProvisionResult into the session payload the
// HTTP layer returns: a signed JWT plus the user's profile, workspace, and
// permission sets.
package signin

import (
	"context"
	"time"

	"github.com/workspace-platform/workspace-sso/internal/auth"
	"github.com/workspace-platform/workspace-sso/internal/db/models"
)

// TokenSigner issues session tokens for a signed-in user
type TokenSigner interface {
	IssueSession(userID, email, organizationID string) (string, error)
}

// JWTSigner issues HS256 session tokens
type JWTSigner struct {
	expiresIn time.Duration
}

// NewJWTSigner creates a signer with the given token lifetime
func NewJWTSigner(expiresIn time.Duration) *JWTSigner {
	return &JWTSigner{expiresIn: expiresIn}
}

// IssueSession signs a session token scoped to one organization
func (j *JWTSigner) IssueSession(userID, email, organizationID string) (string, error) {
	return auth.GenerateSessionToken(userID, email, organizationID, j.expiresIn)
}

// Result is the successful sign-in payload returned to the client.
type Result struct {
	ID                  string   `json:"id"`
	AuthToken           string   `json:"auth_token"`
	Email               string   `json:"email"`
	FirstName           string   `json:"first_name"`
	LastName            string   `json:"last_name"`
	OrganizationID      string   `json:"organization_id"`
	Organization        string   `json:"organization"`
	SuperAdmin          bool     `json:"super_admin"`
	Admin               bool     `json:"admin"`
	GroupPermissions    []string `json:"group_permissions"`
	AppGroupPermissions []string `json:"app_group_permissions"`
}

// buildSession issues the token and assembles the session payload from the
// provisioned user, organization, and group permissions.
func (s *Service) buildSession(ctx context.Context, st Stores, pr *ProvisionResult) (*Result, error) {
	token, err := s.signer.IssueSession(pr.User.ID, pr.User.Email, pr.Organization.ID)
	if err != nil {
		return nil, Internal("failed to issue session token", err)
	}

	admin, err := st.Users.HasGroup(ctx, pr.User.ID, pr.Organization.ID, models.GroupAdmin)
	if err != nil {
		return nil, Internal("failed to load group membership", err)
	}

	groupPerms, err := st.Users.GroupPermissions(ctx, pr.User.ID, pr.Organization.ID)
	if err != nil {
		return nil, Internal("failed to load group permissions", err)
	}

	appPerms, err := st.Users.AppGroupPermissions(ctx, pr.User.ID, pr.Organization.ID)
	if err != nil {
		return nil, Internal("failed to load app group permissions", err)
	}

	return &Result{
		ID:                  pr.User.ID,
		AuthToken:           token,
		Email:               pr.User.Email,
		FirstName:           pr.User.FirstName,
		LastName:            pr.User.LastName,
		OrganizationID:      pr.Organization.ID,
		Organization:        pr.Organization.Name,
		SuperAdmin:          pr.User.SuperAdmin,
		Admin:               admin,
		GroupPermissions:    groupPerms,
		AppGroupPermissions: appPerms,
	}, nil
}
