// Package models - user.go defines the User model for platform accounts with email,
// name, lifecycle status, and pending-invitation state.
package models

import "time"

// User lifecycle statuses. Archived is terminal: an archived user can never
// sign in again and no flow reactivates them.
const (
	UserStatusActive   = "active"
	UserStatusInvited  = "invited"
	UserStatusArchived = "archived"
)

// Default groups assigned to a user who creates a workspace.
const (
	GroupAllUsers = "all_users"
	GroupAdmin    = "admin"
)

// User represents a platform account. Email is unique across the whole
// instance regardless of how many organizations the user belongs to.
type User struct {
	ID                    string    `db:"id"`
	Email                 string    `db:"email"`
	FirstName             string    `db:"first_name"`
	LastName              string    `db:"last_name"`
	Status                string    `db:"status"`
	InvitationToken       *string   `db:"invitation_token"` // set while an invite is pending; cleared on acceptance
	SuperAdmin            bool      `db:"super_admin"`
	DefaultOrganizationID *string   `db:"default_organization_id"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

// IsArchived reports whether the account has been archived by an administrator.
func (u *User) IsArchived() bool {
	return u.Status == UserStatusArchived
}

// HasPendingInvitation reports whether the user still carries an unaccepted invite.
func (u *User) HasPendingInvitation() bool {
	return u.InvitationToken != nil && *u.InvitationToken != ""
}
