// Package permission defines the role enumeration and the navigation policy that maps
// roles to the path prefixes they may open.
//
// # Policy
//
// A [Policy] is the single source of truth for role-based navigation: the login path,
// the default landing page, the public (unauthenticated) paths, the privileged roles
// that bypass prefix checks, and the per-role allow-lists. It can be built in code
// ([DefaultPolicy]) or loaded from YAML ([LoadPolicyFile]). A validated policy is
// compiled into an immutable [Table].
//
// # Role sets
//
// A [Table] addresses roles through a [RoleIndex] and keeps the privileged roles as a
// [RoleSet] bitmask. A policy may name at most [MaxRoles] distinct roles.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O beyond policy loading.
// It does not know about sessions, tokens, or HTTP.
//
// # What this package must NOT do
//
//   - Read session state or persisted snapshots.
//   - Import backoffice, session, guard, or stores.
//   - Allow the compiled [Table] to change after construction.
package permission
