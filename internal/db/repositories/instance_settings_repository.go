// instance_settings_repository.go implements a small key/value store for
// instance-wide runtime settings that administrators can change without a
// redeploy, such as ALLOW_PERSONAL_WORKSPACE.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// SettingAllowPersonalWorkspace gates just-in-time workspace creation for users
// who are not part of any eligible organization.
const SettingAllowPersonalWorkspace = "ALLOW_PERSONAL_WORKSPACE"

// InstanceSettingsRepository handles instance setting database operations
type InstanceSettingsRepository struct {
	q sqlx.ExtContext
}

// NewInstanceSettingsRepository creates a new InstanceSettingsRepository
func NewInstanceSettingsRepository(db *sqlx.DB) *InstanceSettingsRepository {
	return &InstanceSettingsRepository{q: db}
}

// WithTx returns a copy of the repository that runs all queries inside tx.
func (r *InstanceSettingsRepository) WithTx(tx *sqlx.Tx) *InstanceSettingsRepository {
	return &InstanceSettingsRepository{q: tx}
}

// GetSetting returns the value stored for key, or "" when the key is absent.
// Callers fall back to config-file defaults on the empty string.
func (r *InstanceSettingsRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := sqlx.GetContext(ctx, r.q, &value, `SELECT value FROM instance_settings WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting upserts a setting value.
func (r *InstanceSettingsRepository) SetSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO instance_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	_, err := r.q.ExecContext(ctx, query, key, value, time.Now())
	return err
}
