package permission

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPolicyValid(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Policy)
		wantValid bool
	}{
		{
			name:      "default",
			mutate:    func(*Policy) {},
			wantValid: true,
		},
		{
			name: "relative login path",
			mutate: func(p *Policy) {
				p.LoginPath = "login"
			},
			wantValid: false,
		},
		{
			name: "login path not public",
			mutate: func(p *Policy) {
				p.PublicPaths = []string{"/component"}
			},
			wantValid: false,
		},
		{
			name: "default landing public",
			mutate: func(p *Policy) {
				p.PublicPaths = append(p.PublicPaths, "/dashboard")
			},
			wantValid: false,
		},
		{
			name: "landing unreachable for role",
			mutate: func(p *Policy) {
				p.Allowed[RoleStaff] = []string{"/inventory"}
			},
			wantValid: false,
		},
		{
			name: "empty allow-list is fine",
			mutate: func(p *Policy) {
				p.Allowed[RoleGuest] = nil
			},
			wantValid: true,
		},
		{
			name: "prefix with query",
			mutate: func(p *Policy) {
				p.Allowed[RoleStaff] = []string{"/dashboard?x=1"}
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.wantValid {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, ErrInvalidPolicy) {
					t.Fatalf("expected ErrInvalidPolicy, got %v", err)
				}
			}
		})
	}
}

func TestLoadPolicyOverridesDefaults(t *testing.T) {
	doc := `
privileged: [Admin, management]
allowed:
  finance: [/finance, /dashboard]
  Staff: [/dashboard]
`
	p, err := LoadPolicy(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	if p.LoginPath != "/login" {
		t.Fatalf("expected default login path, got %q", p.LoginPath)
	}
	if len(p.Privileged) != 2 {
		t.Fatalf("expected 2 privileged roles, got %v", p.Privileged)
	}

	table, err := NewTable(p)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	if !table.IsPrivileged("ADMIN") {
		t.Fatal("expected admin privileged regardless of case")
	}
	if table.IsPrivileged(RoleFinance) {
		t.Fatal("finance should not be privileged under the loaded policy")
	}
	if !table.Permits(RoleStaff, "/dashboard/overview") {
		t.Fatal("expected staff key to be normalized")
	}
	if table.Permits(RoleStaff, "/inventory") {
		t.Fatal("loaded allow-list should replace the default one")
	}
}

func TestLoadPolicyRejectsUnknownFields(t *testing.T) {
	_, err := LoadPolicy(strings.NewReader("landing: /home\n"))
	if !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
}

func TestLoadPolicyEmptyDocument(t *testing.T) {
	p, err := LoadPolicy(strings.NewReader(""))
	if err != nil {
		t.Fatalf("load empty policy: %v", err)
	}
	if p.DefaultLanding != DefaultPolicy().DefaultLanding {
		t.Fatalf("expected default landing, got %q", p.DefaultLanding)
	}
}

func TestLoadPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("default_landing: /home\nallowed:\n  guest: [/home]\n"), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	p, err := LoadPolicyFile(path)
	if err != nil {
		t.Fatalf("load policy file: %v", err)
	}
	if p.DefaultLanding != "/home" {
		t.Fatalf("expected /home, got %q", p.DefaultLanding)
	}

	if _, err := LoadPolicyFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
