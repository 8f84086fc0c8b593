package permission

import "strings"

// Role is a lower-cased back-office role name as carried in the token's role claim.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManagement Role = "management"
	RoleFinance    Role = "finance"
	RoleMarketing  Role = "marketing"
	RolePurchasing Role = "purchasing"
	RoleHR         Role = "hr"
	RoleStaff      Role = "staff"
	RoleFreelancer Role = "freelancer"
	RoleGuest      Role = "guest"
)

// KnownRoles lists every role the back office ships with.
var KnownRoles = []Role{
	RoleAdmin,
	RoleManagement,
	RoleFinance,
	RoleMarketing,
	RolePurchasing,
	RoleHR,
	RoleStaff,
	RoleFreelancer,
	RoleGuest,
}

// ParseRole normalizes a raw role claim. Role names compare case-insensitively, so
// "Finance" and " FINANCE " both parse to [RoleFinance]. Unknown names are kept as-is
// (lower-cased); they simply have no allow-list.
func ParseRole(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

// Known reports whether r is one of [KnownRoles].
func (r Role) Known() bool {
	for _, k := range KnownRoles {
		if r == k {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }
