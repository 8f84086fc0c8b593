package permission

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidPolicy is returned when a policy fails validation.
	ErrInvalidPolicy = errors.New("invalid navigation policy")
)

// Policy is the navigation permission matrix.
type Policy struct {
	LoginPath      string            `yaml:"login_path"`
	DefaultLanding string            `yaml:"default_landing"`
	PublicPaths    []string          `yaml:"public_paths"`
	Privileged     []Role            `yaml:"privileged"`
	Allowed        map[Role][]string `yaml:"allowed"`
}

// DefaultPolicy returns the policy the back office ships with.
//
// The privileged set follows the latest guard revision (administrator, management,
// finance, marketing, purchasing). Deployments that want the finance, marketing and
// purchasing roles confined to their own modules remove them from Privileged; their
// allow-lists are kept here for that case.
func DefaultPolicy() Policy {
	return Policy{
		LoginPath:      "/login",
		DefaultLanding: "/dashboard",
		PublicPaths:    []string{"/login", "/freelancer/register", "/component"},
		Privileged: []Role{
			RoleAdmin,
			RoleManagement,
			RoleFinance,
			RoleMarketing,
			RolePurchasing,
		},
		Allowed: map[Role][]string{
			RoleFinance:    {"/finance", "/dashboard"},
			RoleMarketing:  {"/marketing", "/dashboard"},
			RolePurchasing: {"/purchasing", "/dashboard"},
			RoleHR:         {"/staff-freelancer", "/dashboard"},
			RoleStaff:      {"/dashboard", "/inventory"},
			RoleFreelancer: {"/freelancer/profile", "/dashboard"},
			RoleGuest:      {"/dashboard"},
		},
	}
}

// Validate checks the policy for shapes that would make the guard redirect forever.
func (p Policy) Validate() error {
	if !validPath(p.LoginPath) {
		return fmt.Errorf("%w: login path %q", ErrInvalidPolicy, p.LoginPath)
	}
	if !validPath(p.DefaultLanding) {
		return fmt.Errorf("%w: default landing %q", ErrInvalidPolicy, p.DefaultLanding)
	}

	loginPublic := false
	for _, public := range p.PublicPaths {
		if !validPath(public) {
			return fmt.Errorf("%w: public path %q", ErrInvalidPolicy, public)
		}
		if HasPathPrefix(p.LoginPath, public) {
			loginPublic = true
		}
		if HasPathPrefix(p.DefaultLanding, public) {
			return fmt.Errorf("%w: default landing %q is public", ErrInvalidPolicy, p.DefaultLanding)
		}
	}
	if !loginPublic {
		return fmt.Errorf("%w: login path %q is not public", ErrInvalidPolicy, p.LoginPath)
	}

	for _, role := range p.Privileged {
		if ParseRole(string(role)) == "" {
			return fmt.Errorf("%w: empty privileged role", ErrInvalidPolicy)
		}
	}

	for role, prefixes := range p.Allowed {
		if ParseRole(string(role)) == "" {
			return fmt.Errorf("%w: empty role in allow-list", ErrInvalidPolicy)
		}
		reachable := false
		for _, prefix := range prefixes {
			if !validPath(prefix) {
				return fmt.Errorf("%w: role %q prefix %q", ErrInvalidPolicy, role, prefix)
			}
			if HasPathPrefix(p.DefaultLanding, prefix) {
				reachable = true
			}
		}
		if len(prefixes) > 0 && !reachable {
			return fmt.Errorf("%w: default landing %q not reachable by role %q", ErrInvalidPolicy, p.DefaultLanding, role)
		}
	}

	return nil
}

// LoadPolicy decodes a YAML policy. Fields absent from the document keep the values
// of [DefaultPolicy]; the allow-list, when present, replaces the default one.
func LoadPolicy(r io.Reader) (Policy, error) {
	p := DefaultPolicy()
	var doc Policy
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return p, nil
		}
		return Policy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}

	if doc.LoginPath != "" {
		p.LoginPath = doc.LoginPath
	}
	if doc.DefaultLanding != "" {
		p.DefaultLanding = doc.DefaultLanding
	}
	if doc.PublicPaths != nil {
		p.PublicPaths = doc.PublicPaths
	}
	if doc.Privileged != nil {
		p.Privileged = doc.Privileged
	}
	if doc.Allowed != nil {
		p.Allowed = doc.Allowed
	}

	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// LoadPolicyFile reads a YAML policy from path.
func LoadPolicyFile(path string) (Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return Policy{}, fmt.Errorf("open policy: %w", err)
	}
	defer f.Close()
	return LoadPolicy(f)
}

func validPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.ContainsAny(p, "?# \t\n")
}
