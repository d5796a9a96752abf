// Package models - organization.go defines the Organization model representing a tenant
// workspace with its sign-up policy and email domain allow-list.
package models

import "time"

// DefaultWorkspaceName is the name given to organizations created just-in-time
// during sign-in, before the owner has named them.
const DefaultWorkspaceName = "Untitled workspace"

// Organization represents a tenant workspace
type Organization struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	// EnableSignUp lets users without an existing membership join via SSO
	EnableSignUp bool `db:"enable_sign_up"`
	// Domain is a comma-separated email domain allow-list; empty = unrestricted
	Domain    string    `db:"domain"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
