// Package repositories implements the data access layer (repository pattern) for the
// workspace SSO service. Each repository type encapsulates all database queries for a
// domain entity. The sign-in orchestration never issues SQL directly — all database
// access goes through this layer, which keeps query logic testable in isolation.
//
// Every repository holds an sqlx.ExtContext so the same query methods run against
// either the connection pool or an open transaction. WithTx returns a copy bound to
// a transaction; the provisioning engine uses this to make its multi-step writes
// atomic (see the signin package).
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

// UserRepository handles user database operations
type UserRepository struct {
	q sqlx.ExtContext
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{q: db}
}

// WithTx returns a copy of the repository that runs all queries inside tx.
func (r *UserRepository) WithTx(tx *sqlx.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `id, email, first_name, last_name, status, invitation_token,
	super_admin, default_organization_id, created_at, updated_at`

// CreateUser creates a new user. The caller sets Email, FirstName, LastName,
// Status and optionally DefaultOrganizationID; ID and timestamps are assigned here.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	query := `
		INSERT INTO users (id, email, first_name, last_name, status, invitation_token,
			super_admin, default_organization_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Status,
		user.InvitationToken,
		user.SuperAdmin,
		user.DefaultOrganizationID,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return err
}

// GetUserByID retrieves a user by ID; returns nil when no row matches.
func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user := &models.User{}
	err := sqlx.GetContext(ctx, r.q, user, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email; returns nil when no row matches.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user := &models.User{}
	err := sqlx.GetContext(ctx, r.q, user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUser persists mutable user fields (name, status, invitation token,
// default organization).
func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET
			first_name = $1,
			last_name = $2,
			status = $3,
			invitation_token = $4,
			default_organization_id = $5,
			updated_at = $6
		WHERE id = $7
	`

	_, err := r.q.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Status,
		user.InvitationToken,
		user.DefaultOrganizationID,
		user.UpdatedAt,
		user.ID,
	)

	return err
}

// ClearInvitation removes a pending invitation token and marks the user active.
func (r *UserRepository) ClearInvitation(ctx context.Context, userID string) error {
	query := `
		UPDATE users SET
			invitation_token = NULL,
			status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.q.ExecContext(ctx, query, models.UserStatusActive, time.Now(), userID)
	return err
}

// CountUsers returns the total number of users in the instance. A count of zero
// identifies the bootstrap case where the very first sign-in may create a workspace.
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.q, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

// AddToGroups inserts group membership rows for a user in an organization.
// Existing rows are left untouched so repeated provisioning stays idempotent.
func (r *UserRepository) AddToGroups(ctx context.Context, userID, organizationID string, groups []string) error {
	query := `
		INSERT INTO user_groups (id, user_id, organization_id, "group", created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, organization_id, "group") DO NOTHING
	`
	for _, group := range groups {
		if _, err := r.q.ExecContext(ctx, query, uuid.New().String(), userID, organizationID, group, time.Now()); err != nil {
			return err
		}
	}
	return nil
}

// HasGroup reports whether the user belongs to the named group within the organization.
func (r *UserRepository) HasGroup(ctx context.Context, userID, organizationID, group string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_groups
			WHERE user_id = $1 AND organization_id = $2 AND "group" = $3
		)
	`
	err := sqlx.GetContext(ctx, r.q, &exists, query, userID, organizationID, group)
	return exists, err
}

// GroupPermissions returns the distinct permission strings granted to the user
// through their group memberships in the organization.
func (r *UserRepository) GroupPermissions(ctx context.Context, userID, organizationID string) ([]string, error) {
	permissions := []string{}
	query := `
		SELECT DISTINCT gp.permission
		FROM group_permissions gp
		JOIN user_groups ug
			ON ug.organization_id = gp.organization_id AND ug."group" = gp."group"
		WHERE ug.user_id = $1 AND ug.organization_id = $2
		ORDER BY gp.permission
	`
	err := sqlx.SelectContext(ctx, r.q, &permissions, query, userID, organizationID)
	return permissions, err
}

// AppGroupPermissions returns the distinct app-scoped permission strings granted
// to the user through their group memberships in the organization.
func (r *UserRepository) AppGroupPermissions(ctx context.Context, userID, organizationID string) ([]string, error) {
	permissions := []string{}
	query := `
		SELECT DISTINCT agp.permission
		FROM app_group_permissions agp
		JOIN user_groups ug
			ON ug.organization_id = agp.organization_id AND ug."group" = agp."group"
		WHERE ug.user_id = $1 AND ug.organization_id = $2
		ORDER BY agp.permission
	`
	err := sqlx.SelectContext(ctx, r.q, &permissions, query, userID, organizationID)
	return permissions, err
}
