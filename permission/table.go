package permission

import (
	"fmt"
	"path"
	"strings"
)

// Table is the compiled, immutable form of a [Policy]. It is safe for concurrent use.
type Table struct {
	loginPath      string
	defaultLanding string
	public         []string
	roles          *RoleIndex
	privileged     RoleSet
	allowed        map[Role][]string
}

// NewTable validates p and compiles it. Role keys are normalized with [ParseRole] so
// lookups are case-insensitive.
func NewTable(p Policy) (*Table, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	t := &Table{
		loginPath:      CleanPath(p.LoginPath),
		defaultLanding: CleanPath(p.DefaultLanding),
		public:         make([]string, 0, len(p.PublicPaths)),
		roles:          NewRoleIndex(),
		allowed:        make(map[Role][]string, len(p.Allowed)),
	}
	for _, public := range p.PublicPaths {
		t.public = append(t.public, CleanPath(public))
	}
	for _, role := range p.Privileged {
		bit, err := t.roles.Register(role)
		if err != nil {
			return nil, fmt.Errorf("%w: privileged role %q: %v", ErrInvalidPolicy, role, err)
		}
		t.privileged.Add(bit)
	}
	for role, prefixes := range p.Allowed {
		if _, err := t.roles.Register(role); err != nil {
			return nil, fmt.Errorf("%w: role %q: %v", ErrInvalidPolicy, role, err)
		}
		key := ParseRole(string(role))
		list := make([]string, 0, len(prefixes))
		for _, prefix := range prefixes {
			list = append(list, CleanPath(prefix))
		}
		t.allowed[key] = append(t.allowed[key], list...)
	}
	t.roles.Freeze()

	return t, nil
}

// LoginPath is where unauthenticated callers are sent.
func (t *Table) LoginPath() string { return t.loginPath }

// DefaultLanding is where authenticated callers are sent when nothing better applies.
func (t *Table) DefaultLanding() string { return t.defaultLanding }

// IsPublic reports whether p is reachable without a session.
func (t *Table) IsPublic(p string) bool {
	p = CleanPath(p)
	for _, public := range t.public {
		if HasPathPrefix(p, public) {
			return true
		}
	}
	return false
}

// IsPrivileged reports whether role bypasses the allow-list.
func (t *Table) IsPrivileged(role Role) bool {
	bit, ok := t.roles.Bit(role)
	return ok && t.privileged.Has(bit)
}

// Privileged lists the privileged roles, known roles first.
func (t *Table) Privileged() []Role { return t.roles.Roles(t.privileged) }

// Roles lists every role the table knows: [KnownRoles] followed by any role only
// the policy names.
func (t *Table) Roles() []Role {
	out := make([]Role, t.roles.Len())
	for bit := range out {
		out[bit], _ = t.roles.Name(bit)
	}
	return out
}

// Allowed returns a copy of the allow-list for role. Unknown roles get an empty list.
func (t *Table) Allowed(role Role) []string {
	list := t.allowed[ParseRole(string(role))]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Landing returns the role's own landing page, the first entry of its allow-list.
func (t *Table) Landing(role Role) (string, bool) {
	list := t.allowed[ParseRole(string(role))]
	if len(list) == 0 {
		return "", false
	}
	return list[0], true
}

// Permits reports whether p falls under one of role's allowed prefixes.
func (t *Table) Permits(role Role, p string) bool {
	p = CleanPath(p)
	for _, prefix := range t.allowed[ParseRole(string(role))] {
		if HasPathPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// HasPathPrefix matches whole path segments: "/finance" covers "/finance" and
// "/finance/report" but not "/financial". The root prefix "/" covers only "/".
func HasPathPrefix(p, prefix string) bool {
	if prefix == "/" {
		return p == "/"
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// CleanPath normalizes a navigation target. Query strings and fragments are dropped
// and dot segments resolved, so "/dashboard/../finance" is checked as "/finance".
func CleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
