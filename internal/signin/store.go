// store.go declares the persistence capabilities the sign-in flow consumes and
// the sqlx-backed implementation used in production. The orchestrator only sees
// the interfaces; tests substitute in-memory fakes. InTx is the transactional
// boundary the provisioning engine runs inside — every write made through the
// transaction-bound stores commits or rolls back as one unit.
package signin

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/workspace-platform/workspace-sso/internal/db/models"
	"github.com/workspace-platform/workspace-sso/internal/db/repositories"
)

// UserStore provides user persistence
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	ClearInvitation(ctx context.Context, userID string) error
	CountUsers(ctx context.Context) (int, error)
	AddToGroups(ctx context.Context, userID, organizationID string, groups []string) error
	HasGroup(ctx context.Context, userID, organizationID, group string) (bool, error)
	GroupPermissions(ctx context.Context, userID, organizationID string) ([]string, error)
	AppGroupPermissions(ctx context.Context, userID, organizationID string) ([]string, error)
}

// OrganizationStore provides organization persistence
type OrganizationStore interface {
	GetOrganizationByID(ctx context.Context, id string) (*models.Organization, error)
	CreateOrganization(ctx context.Context, name string) (*models.Organization, error)
	OrganizationsWithLoginSupport(ctx context.Context, userID, provider string) ([]models.Organization, error)
	GetSingleOrganization(ctx context.Context) (*models.Organization, error)
}

// MembershipStore provides organization membership persistence
type MembershipStore interface {
	CreateMembership(ctx context.Context, m *models.OrganizationUser) error
	ActivateMembership(ctx context.Context, membershipID string) error
	GetMembership(ctx context.Context, organizationID, userID string) (*models.OrganizationUser, error)
	FindUserWithMembership(ctx context.Context, organizationID, email string, statuses []string) (*models.User, *models.OrganizationUser, error)
}

// SSOConfigStore provides stored SSO configuration lookups
type SSOConfigStore interface {
	GetConfigByID(ctx context.Context, id string) (*models.SSOConfig, error)
	GetConfigByOrganization(ctx context.Context, organizationID, provider string) (*models.SSOConfig, error)
}

// SettingsStore provides instance-level runtime settings
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// Stores bundles every persistence capability the sign-in flow touches.
// A Stores value is bound either to the connection pool or to one transaction.
type Stores struct {
	Users         UserStore
	Organizations OrganizationStore
	Memberships   MembershipStore
	Configs       SSOConfigStore
	Settings      SettingsStore
}

// Store exposes pool-bound stores plus the transactional boundary.
type Store interface {
	// Stores returns stores bound to the connection pool, for reads outside
	// the provisioning transaction.
	Stores() Stores
	// InTx runs fn with transaction-bound stores. fn returning an error (or
	// panicking) rolls back every write; otherwise the transaction commits.
	InTx(ctx context.Context, fn func(Stores) error) error
}

// SQLStore is the sqlx-backed Store used in production
type SQLStore struct {
	db           *sqlx.DB
	users        *repositories.UserRepository
	orgs         *repositories.OrganizationRepository
	memberships  *repositories.MembershipRepository
	configs      *repositories.SSOConfigRepository
	settings     *repositories.InstanceSettingsRepository
}

// NewSQLStore creates a Store over the given database pool
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{
		db:          db,
		users:       repositories.NewUserRepository(db),
		orgs:        repositories.NewOrganizationRepository(db),
		memberships: repositories.NewMembershipRepository(db),
		configs:     repositories.NewSSOConfigRepository(db),
		settings:    repositories.NewInstanceSettingsRepository(db),
	}
}

// Stores returns pool-bound stores
func (s *SQLStore) Stores() Stores {
	return Stores{
		Users:         s.users,
		Organizations: s.orgs,
		Memberships:   s.memberships,
		Configs:       s.configs,
		Settings:      s.settings,
	}
}

// InTx runs fn inside a single database transaction
func (s *SQLStore) InTx(ctx context.Context, fn func(Stores) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	txStores := Stores{
		Users:         s.users.WithTx(tx),
		Organizations: s.orgs.WithTx(tx),
		Memberships:   s.memberships.WithTx(tx),
		Configs:       s.configs.WithTx(tx),
		Settings:      s.settings.WithTx(tx),
	}

	if err := fn(txStores); err != nil {
		return err
	}

	return tx.Commit()
}
