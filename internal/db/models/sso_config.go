// Package models - sso_config.go defines per-organization SSO provider configuration.
// An organization holds at most one config per provider. Instance-level configs
// (used by the platform-wide login page) are synthesized from application config
// and never persisted, so OrganizationID is nullable.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Supported SSO provider tags.
const (
	SSOTypeGoogle = "google"
	SSOTypeGit    = "git"
	SSOTypeOpenID = "openid"
)

// ProviderSettings carries the provider-specific credentials stored as JSONB.
// Only the fields relevant to the provider are populated: Google and Git use
// client id/secret (Git optionally a host for GitHub Enterprise); OpenID adds
// the discovery well-known URL and redirect URL.
type ProviderSettings struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Host         string `json:"host,omitempty"`
	WellKnownURL string `json:"well_known_url,omitempty"`
	RedirectURL  string `json:"redirect_url,omitempty"`
	Name         string `json:"name,omitempty"`
}

// Value implements driver.Valuer so ProviderSettings round-trips through a JSONB column.
func (s ProviderSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB columns.
func (s *ProviderSettings) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = ProviderSettings{}
		return nil
	default:
		return fmt.Errorf("unsupported type for ProviderSettings: %T", src)
	}
}

// SSOConfig represents one provider's SSO configuration for an organization.
// A nil OrganizationID marks an instance-level config synthesized from
// application settings rather than loaded from the database.
type SSOConfig struct {
	ID             string           `db:"id"`
	OrganizationID *string          `db:"organization_id"`
	SSO            string           `db:"sso"` // provider tag: google, git, openid
	Enabled        bool             `db:"enabled"`
	Configs        ProviderSettings `db:"configs"`
	CreatedAt      time.Time        `db:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at"`
}

// IsInstanceLevel reports whether the config was synthesized from instance-wide
// settings instead of belonging to a stored organization.
func (c *SSOConfig) IsInstanceLevel() bool {
	return c.OrganizationID == nil
}
