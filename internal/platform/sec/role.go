// Copyright (c) 2026 Nomik. All rights reserved.

package sec

// # Account Roles

// AccountRole represents the kind of account on the Nomik marketplace.
//
// A role is mutually exclusive with the others, fixed at account creation,
// and never changed afterwards.
type AccountRole string

const (
	// Provisioned out-of-band; never via self-registration
	RoleAdmin AccountRole = "admin"

	// Verified legal practitioner offering services
	RoleAdvocate AccountRole = "advocate"

	// Default role for people seeking legal services
	RoleClient AccountRole = "client"
)

// ParseRole converts a raw string into a known [AccountRole].
// It returns false for anything outside the closed role set.
func ParseRole(raw string) (AccountRole, bool) {
	switch AccountRole(raw) {
	case RoleAdmin, RoleAdvocate, RoleClient:
		return AccountRole(raw), true
	default:
		return "", false
	}
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r AccountRole) AtLeast(target AccountRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r AccountRole) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleAdvocate:
		return 20
	case RoleClient:
		return 10
	default:
		return 0
	}
}
