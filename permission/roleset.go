package permission

import (
	"errors"
	"math/bits"
)

// MaxRoles is how many distinct roles one [Table] can address.
const MaxRoles = 64

var errTooManyRoles = errors.New("role limit exceeded")

// RoleSet is a set of roles addressed by the bit a [RoleIndex] assigns them.
type RoleSet uint64

func (s RoleSet) Has(bit int) bool {
	if bit < 0 || bit >= MaxRoles {
		return false
	}
	return s&(1<<bit) != 0
}

func (s *RoleSet) Add(bit int) {
	if bit < 0 || bit >= MaxRoles {
		return
	}
	*s |= 1 << bit
}

func (s *RoleSet) Remove(bit int) {
	if bit < 0 || bit >= MaxRoles {
		return
	}
	*s &^= 1 << bit
}

// Len returns the number of roles in the set.
func (s RoleSet) Len() int { return bits.OnesCount64(uint64(s)) }

// RoleIndex maps role names to bit positions. [KnownRoles] take the first bits in
// declaration order; roles only a policy names are appended as they are seen.
// Once frozen the index is read-only and safe for concurrent use.
type RoleIndex struct {
	bits   map[Role]int
	names  []Role
	frozen bool
}

// NewRoleIndex returns an index holding [KnownRoles].
func NewRoleIndex() *RoleIndex {
	x := &RoleIndex{bits: make(map[Role]int, len(KnownRoles))}
	for _, r := range KnownRoles {
		_, _ = x.Register(r)
	}
	return x
}

// Register returns the bit of r, assigning the next free one if r is new.
func (x *RoleIndex) Register(r Role) (int, error) {
	r = ParseRole(string(r))
	if r == "" {
		return -1, errors.New("role name cannot be empty")
	}
	if bit, ok := x.bits[r]; ok {
		return bit, nil
	}
	if x.frozen {
		return -1, errors.New("role index frozen")
	}
	if len(x.names) >= MaxRoles {
		return -1, errTooManyRoles
	}
	bit := len(x.names)
	x.bits[r] = bit
	x.names = append(x.names, r)
	return bit, nil
}

// Bit returns the bit of r, or false if r was never registered.
func (x *RoleIndex) Bit(r Role) (int, bool) {
	bit, ok := x.bits[ParseRole(string(r))]
	return bit, ok
}

// Name returns the role at bit.
func (x *RoleIndex) Name(bit int) (Role, bool) {
	if bit < 0 || bit >= len(x.names) {
		return "", false
	}
	return x.names[bit], true
}

func (x *RoleIndex) Freeze() { x.frozen = true }

func (x *RoleIndex) Len() int { return len(x.names) }

// Roles lists the members of s in bit order.
func (x *RoleIndex) Roles(s RoleSet) []Role {
	out := make([]Role, 0, s.Len())
	for bit, r := range x.names {
		if s.Has(bit) {
			out = append(out, r)
		}
	}
	return out
}
