// Package models - organization_user.go defines the membership model linking users
// to organizations. Exactly one membership exists per (user, organization) pair,
// enforced by a unique constraint at the storage layer.
package models

import "time"

// Membership statuses. Transitions only move invited → active, never back.
const (
	MembershipStatusInvited = "invited"
	MembershipStatusActive  = "active"
)

// OrganizationUser represents a user's membership in an organization
type OrganizationUser struct {
	ID             string    `db:"id"`
	OrganizationID string    `db:"organization_id"`
	UserID         string    `db:"user_id"`
	Status         string    `db:"status"`
	IsAdmin        bool      `db:"is_admin"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// IsActive reports whether the membership grants sign-in access right now.
func (m *OrganizationUser) IsActive() bool {
	return m.Status == MembershipStatusActive
}
