// organization_repository.go implements OrganizationRepository, providing database
// queries for tenant workspaces: lookup, just-in-time creation, and the candidate
// set of organizations a user can log into through an SSO provider.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/workspace-platform/workspace-sso/internal/db/models"
)

// OrganizationRepository handles organization database operations
type OrganizationRepository struct {
	q sqlx.ExtContext
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *sqlx.DB) *OrganizationRepository {
	return &OrganizationRepository{q: db}
}

// WithTx returns a copy of the repository that runs all queries inside tx.
func (r *OrganizationRepository) WithTx(tx *sqlx.Tx) *OrganizationRepository {
	return &OrganizationRepository{q: tx}
}

const organizationColumns = `id, name, enable_sign_up, domain, created_at, updated_at`

// GetOrganizationByID retrieves an organization by ID; returns nil when no row matches.
func (r *OrganizationRepository) GetOrganizationByID(ctx context.Context, id string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`

	org := &models.Organization{}
	err := sqlx.GetContext(ctx, r.q, org, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return org, nil
}

// CreateOrganization creates a new organization with the given name.
// Just-in-time provisioning uses models.DefaultWorkspaceName.
func (r *OrganizationRepository) CreateOrganization(ctx context.Context, name string) (*models.Organization, error) {
	org := &models.Organization{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO organizations (id, name, enable_sign_up, domain, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		org.ID, org.Name, org.EnableSignUp, org.Domain, org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return org, nil
}

// OrganizationsWithLoginSupport returns the organizations the user holds a
// membership in where the given SSO provider is usable for login. An org with
// no config row for the provider inherits the instance-level provider; a
// disabled org-level row opts the org out. These are the candidate targets
// for an instance-wide common-page login.
func (r *OrganizationRepository) OrganizationsWithLoginSupport(ctx context.Context, userID, provider string) ([]models.Organization, error) {
	orgs := []models.Organization{}
	query := `
		SELECT o.id, o.name, o.enable_sign_up, o.domain, o.created_at, o.updated_at
		FROM organizations o
		JOIN organization_users ou ON ou.organization_id = o.id
		LEFT JOIN sso_configs sc ON sc.organization_id = o.id AND sc.sso = $2
		WHERE ou.user_id = $1
		  AND (sc.id IS NULL OR sc.enabled = true)
		ORDER BY o.created_at
	`
	err := sqlx.SelectContext(ctx, r.q, &orgs, query, userID, provider)
	return orgs, err
}

// GetSingleOrganization returns the only organization in the instance, or nil
// when there are zero or more than one. Used for super-admin logins without a
// resolvable default organization.
func (r *OrganizationRepository) GetSingleOrganization(ctx context.Context) (*models.Organization, error) {
	orgs := []models.Organization{}
	query := `SELECT ` + organizationColumns + ` FROM organizations LIMIT 2`
	if err := sqlx.SelectContext(ctx, r.q, &orgs, query); err != nil {
		return nil, err
	}
	if len(orgs) != 1 {
		return nil, nil
	}
	return &orgs[0], nil
}
