// membership_repository.go implements MembershipRepository for organization_users
// rows. Memberships are never deleted by the sign-in flow; status only moves
// invited → active.
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

// MembershipRepository handles organization membership database operations
type MembershipRepository struct {
	q sqlx.ExtContext
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *sqlx.DB) *MembershipRepository {
	return &MembershipRepository{q: db}
}

// WithTx returns a copy of the repository that runs all queries inside tx.
func (r *MembershipRepository) WithTx(tx *sqlx.Tx) *MembershipRepository {
	return &MembershipRepository{q: tx}
}

const membershipColumns = `id, organization_id, user_id, status, is_admin, created_at, updated_at`

// CreateMembership inserts a membership row. New memberships always start in
// the invited state; activation is a separate, explicit step.
func (r *MembershipRepository) CreateMembership(ctx context.Context, m *models.OrganizationUser) error {
	m.ID = uuid.New().String()
	if m.Status == "" {
		m.Status = models.MembershipStatusInvited
	}
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()

	query := `
		INSERT INTO organization_users (id, organization_id, user_id, status, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.ExecContext(ctx, query,
		m.ID, m.OrganizationID, m.UserID, m.Status, m.IsAdmin, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

// ActivateMembership transitions a membership to active. Activating an already
// active membership is a no-op, which keeps repeated sign-ins idempotent.
func (r *MembershipRepository) ActivateMembership(ctx context.Context, membershipID string) error {
	query := `
		UPDATE organization_users SET status = $1, updated_at = $2
		WHERE id = $3
	`
	_, err := r.q.ExecContext(ctx, query, models.MembershipStatusActive, time.Now(), membershipID)
	return err
}

// GetMembership retrieves the membership for a (organization, user) pair;
// returns nil when none exists.
func (r *MembershipRepository) GetMembership(ctx context.Context, organizationID, userID string) (*models.OrganizationUser, error) {
	query := `SELECT ` + membershipColumns + ` FROM organization_users
		WHERE organization_id = $1 AND user_id = $2`

	m := &models.OrganizationUser{}
	err := sqlx.GetContext(ctx, r.q, m, query, organizationID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return m, nil
}

// FindUserWithMembership looks up a user by email scoped to an organization,
// restricted to the given membership statuses. Returns (nil, nil, nil) when no
// matching membership exists.
func (r *MembershipRepository) FindUserWithMembership(ctx context.Context, organizationID, email string, statuses []string) (*models.User, *models.OrganizationUser, error) {
	query := `
		SELECT
			u.id AS user_id_col, u.email, u.first_name, u.last_name, u.status AS user_status,
			u.invitation_token, u.super_admin, u.default_organization_id,
			ou.id AS membership_id, ou.organization_id, ou.status AS membership_status, ou.is_admin
		FROM users u
		JOIN organization_users ou ON ou.user_id = u.id
		WHERE ou.organization_id = ? AND u.email = ? AND ou.status IN (?)
	`

	query, args, err := sqlx.In(query, organizationID, email, statuses)
	if err != nil {
		return nil, nil, err
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	row := struct {
		UserID                string  `db:"user_id_col"`
		Email                 string  `db:"email"`
		FirstName             string  `db:"first_name"`
		LastName              string  `db:"last_name"`
		UserStatus            string  `db:"user_status"`
		InvitationToken       *string `db:"invitation_token"`
		SuperAdmin            bool    `db:"super_admin"`
		DefaultOrganizationID *string `db:"default_organization_id"`
		MembershipID          string  `db:"membership_id"`
		OrganizationID        string  `db:"organization_id"`
		MembershipStatus      string  `db:"membership_status"`
		IsAdmin               bool    `db:"is_admin"`
	}{}

	err = sqlx.GetContext(ctx, r.q, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		ID:                    row.UserID,
		Email:                 row.Email,
		FirstName:             row.FirstName,
		LastName:              row.LastName,
		Status:                row.UserStatus,
		InvitationToken:       row.InvitationToken,
		SuperAdmin:            row.SuperAdmin,
		DefaultOrganizationID: row.DefaultOrganizationID,
	}
	membership := &models.OrganizationUser{
		ID:             row.MembershipID,
		OrganizationID: row.OrganizationID,
		UserID:         row.UserID,
		Status:         row.MembershipStatus,
		IsAdmin:        row.IsAdmin,
	}

	return user, membership, nil
}
