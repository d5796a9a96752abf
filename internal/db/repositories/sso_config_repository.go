// sso_config_repository.go implements SSOConfigRepository, providing database
// queries for per-organization SSO provider configurations. Instance-level
// configs are synthesized in the signin package and never hit this repository.
package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/workspace-platform/workspace-sso/internal/db/models"
)

// SSOConfigRepository handles SSO configuration database operations
type SSOConfigRepository struct {
	q sqlx.ExtContext
}

// NewSSOConfigRepository creates a new SSOConfigRepository
func NewSSOConfigRepository(db *sqlx.DB) *SSOConfigRepository {
	return &SSOConfigRepository{q: db}
}

// WithTx returns a copy of the repository that runs all queries inside tx.
func (r *SSOConfigRepository) WithTx(tx *sqlx.Tx) *SSOConfigRepository {
	return &SSOConfigRepository{q: tx}
}

const ssoConfigColumns = `id, organization_id, sso, enabled, configs, created_at, updated_at`

// GetConfigByID retrieves an SSO config by its identifier; returns nil when no
// row matches. Only enabled configs are returned — a disabled config must not
// resolve a tenant.
func (r *SSOConfigRepository) GetConfigByID(ctx context.Context, id string) (*models.SSOConfig, error) {
	query := `SELECT ` + ssoConfigColumns + ` FROM sso_configs WHERE id = $1 AND enabled = true`

	cfg := &models.SSOConfig{}
	err := sqlx.GetContext(ctx, r.q, cfg, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetConfigByOrganization retrieves the enabled config for a provider within an
// organization; returns nil when the organization has not configured the provider.
func (r *SSOConfigRepository) GetConfigByOrganization(ctx context.Context, organizationID, provider string) (*models.SSOConfig, error) {
	query := `SELECT ` + ssoConfigColumns + ` FROM sso_configs
		WHERE organization_id = $1 AND sso = $2 AND enabled = true`

	cfg := &models.SSOConfig{}
	err := sqlx.GetContext(ctx, r.q, cfg, query, organizationID, provider)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetConfigsForOrganization lists every enabled provider config for an organization.
func (r *SSOConfigRepository) GetConfigsForOrganization(ctx context.Context, organizationID string) ([]models.SSOConfig, error) {
	configs := []models.SSOConfig{}
	query := `SELECT ` + ssoConfigColumns + ` FROM sso_configs
		WHERE organization_id = $1 AND enabled = true ORDER BY sso`
	err := sqlx.SelectContext(ctx, r.q, &configs, query, organizationID)
	return configs, err
}
