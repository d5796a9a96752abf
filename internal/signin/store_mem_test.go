package signin

import (
	"context"
	"fmt"
	"strings"

	"github.com/workspace-platform/workspace-sso/internal/db/models"
)

// memStore is an in-memory Store used by the service tests. InTx snapshots
// the state before running fn and restores it on error, mirroring the
// rollback behaviour of the SQL implementation.
type memStore struct {
	users       map[string]*models.User         // by id
	orgs        map[string]*models.Organization // by id
	memberships map[string]*models.OrganizationUser
	configs     map[string]*models.SSOConfig
	settings    map[string]string
	groups      map[string][]string // orgID/userID -> group names
	nextID      int
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]*models.User),
		orgs:        make(map[string]*models.Organization),
		memberships: make(map[string]*models.OrganizationUser),
		configs:     make(map[string]*models.SSOConfig),
		settings:    make(map[string]string),
		groups:      make(map[string][]string),
	}
}

func (m *memStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *memStore) Stores() Stores {
	return Stores{Users: m, Organizations: m, Memberships: m, Configs: m, Settings: m}
}

func (m *memStore) InTx(ctx context.Context, fn func(Stores) error) error {
	snapshot := m.clone()
	if err := fn(m.Stores()); err != nil {
		*m = *snapshot
		return err
	}
	return nil
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	c.nextID = m.nextID
	for k, v := range m.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range m.orgs {
		o := *v
		c.orgs[k] = &o
	}
	for k, v := range m.memberships {
		om := *v
		c.memberships[k] = &om
	}
	for k, v := range m.configs {
		cfg := *v
		c.configs[k] = &cfg
	}
	for k, v := range m.settings {
		c.settings[k] = v
	}
	for k, v := range m.groups {
		c.groups[k] = append([]string(nil), v...)
	}
	return c
}

// --- UserStore ---

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = m.id("user")
	}
	m.users[user.ID] = user
	return nil
}

func (m *memStore) UpdateUser(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memStore) ClearInvitation(ctx context.Context, userID string) error {
	u := m.users[userID]
	u.InvitationToken = nil
	u.Status = models.UserStatusActive
	return nil
}

func (m *memStore) CountUsers(ctx context.Context) (int, error) {
	return len(m.users), nil
}

func (m *memStore) AddToGroups(ctx context.Context, userID, organizationID string, groups []string) error {
	key := organizationID + "/" + userID
	m.groups[key] = append(m.groups[key], groups...)
	return nil
}

func (m *memStore) HasGroup(ctx context.Context, userID, organizationID, group string) (bool, error) {
	for _, g := range m.groups[organizationID+"/"+userID] {
		if g == group {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GroupPermissions(ctx context.Context, userID, organizationID string) ([]string, error) {
	return nil, nil
}

func (m *memStore) AppGroupPermissions(ctx context.Context, userID, organizationID string) ([]string, error) {
	return nil, nil
}

// --- OrganizationStore ---

func (m *memStore) GetOrganizationByID(ctx context.Context, id string) (*models.Organization, error) {
	return m.orgs[id], nil
}

func (m *memStore) CreateOrganization(ctx context.Context, name string) (*models.Organization, error) {
	org := &models.Organization{ID: m.id("org"), Name: name, EnableSignUp: true}
	m.orgs[org.ID] = org
	return org, nil
}

// OrganizationsWithLoginSupport mirrors the SQL semantics: an org with no
// config row for the provider inherits the instance-level provider, a
// disabled row opts it out.
func (m *memStore) OrganizationsWithLoginSupport(ctx context.Context, userID, provider string) ([]models.Organization, error) {
	var out []models.Organization
	for _, om := range m.memberships {
		if om.UserID != userID {
			continue
		}
		supported := true
		for _, cfg := range m.configs {
			if cfg.OrganizationID != nil && *cfg.OrganizationID == om.OrganizationID && cfg.SSO == provider {
				supported = cfg.Enabled
			}
		}
		if supported {
			out = append(out, *m.orgs[om.OrganizationID])
		}
	}
	return out, nil
}

func (m *memStore) GetSingleOrganization(ctx context.Context) (*models.Organization, error) {
	if len(m.orgs) != 1 {
		return nil, nil
	}
	for _, org := range m.orgs {
		return org, nil
	}
	return nil, nil
}

// --- MembershipStore ---

func (m *memStore) CreateMembership(ctx context.Context, om *models.OrganizationUser) error {
	if om.ID == "" {
		om.ID = m.id("member")
	}
	if om.Status == "" {
		om.Status = models.MembershipStatusInvited
	}
	m.memberships[om.ID] = om
	return nil
}

func (m *memStore) ActivateMembership(ctx context.Context, membershipID string) error {
	m.memberships[membershipID].Status = models.MembershipStatusActive
	return nil
}

func (m *memStore) GetMembership(ctx context.Context, organizationID, userID string) (*models.OrganizationUser, error) {
	for _, om := range m.memberships {
		if om.OrganizationID == organizationID && om.UserID == userID {
			return om, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindUserWithMembership(ctx context.Context, organizationID, email string, statuses []string) (*models.User, *models.OrganizationUser, error) {
	for _, u := range m.users {
		if u.Email != email {
			continue
		}
		for _, om := range m.memberships {
			if om.OrganizationID == organizationID && om.UserID == u.ID && contains(statuses, om.Status) {
				return u, om, nil
			}
		}
	}
	return nil, nil, nil
}

// --- SSOConfigStore ---

func (m *memStore) GetConfigByID(ctx context.Context, id string) (*models.SSOConfig, error) {
	cfg := m.configs[id]
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	return cfg, nil
}

func (m *memStore) GetConfigByOrganization(ctx context.Context, organizationID, provider string) (*models.SSOConfig, error) {
	for _, cfg := range m.configs {
		if cfg.OrganizationID != nil && *cfg.OrganizationID == organizationID &&
			strings.EqualFold(cfg.SSO, provider) && cfg.Enabled {
			return cfg, nil
		}
	}
	return nil, nil
}

// --- SettingsStore ---

func (m *memStore) GetSetting(ctx context.Context, key string) (string, error) {
	return m.settings[key], nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
