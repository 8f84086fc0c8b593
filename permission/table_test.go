package permission

import "testing"

func defaultTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(DefaultPolicy())
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	return table
}

func TestParseRole(t *testing.T) {
	if got := ParseRole("  Marketing "); got != RoleMarketing {
		t.Fatalf("expected marketing, got %q", got)
	}
	if ParseRole("intern").Known() {
		t.Fatal("intern should not be a known role")
	}
	if !ParseRole("GUEST").Known() {
		t.Fatal("guest should be known")
	}
}

func TestTableUnknownRoleHasEmptyAllowList(t *testing.T) {
	table := defaultTable(t)
	if got := table.Allowed("intern"); len(got) != 0 {
		t.Fatalf("expected empty allow-list, got %v", got)
	}
	if _, ok := table.Landing("intern"); ok {
		t.Fatal("unknown role should have no landing page")
	}
	if table.Permits("intern", "/dashboard") {
		t.Fatal("unknown role should permit nothing")
	}
}

func TestTableAllowedReturnsCopy(t *testing.T) {
	table := defaultTable(t)
	list := table.Allowed(RoleStaff)
	list[0] = "/tampered"
	if table.Allowed(RoleStaff)[0] == "/tampered" {
		t.Fatal("Allowed must not expose internal slice")
	}
}

func TestTablePublicPaths(t *testing.T) {
	table := defaultTable(t)
	for _, p := range []string{"/login", "/login?next=/finance", "/freelancer/register", "/freelancer/register/step-2", "/component"} {
		if !table.IsPublic(p) {
			t.Fatalf("expected %q public", p)
		}
	}
	for _, p := range []string{"/", "/dashboard", "/freelancer", "/loginx", "/freelancer/profile"} {
		if table.IsPublic(p) {
			t.Fatalf("expected %q not public", p)
		}
	}
}

func TestHasPathPrefix(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
		want   bool
	}{
		{"/finance", "/finance", true},
		{"/finance/report", "/finance", true},
		{"/financial", "/finance", false},
		{"/finance", "/finance/", true},
		{"/", "/", true},
		{"/dashboard", "/", false},
	}
	for _, tt := range tests {
		if got := HasPathPrefix(tt.path, tt.prefix); got != tt.want {
			t.Fatalf("HasPathPrefix(%q, %q) = %v, want %v", tt.path, tt.prefix, got, tt.want)
		}
	}
}

func TestCleanPathResolvesDotSegments(t *testing.T) {
	table := defaultTable(t)
	if table.Permits(RoleStaff, "/dashboard/../finance") {
		t.Fatal("dot segments must not escape the allowed prefix")
	}
	if got := CleanPath(""); got != "/" {
		t.Fatalf("expected /, got %q", got)
	}
	if got := CleanPath("inventory/items#top"); got != "/inventory/items" {
		t.Fatalf("unexpected clean path %q", got)
	}
}

func TestTableLanding(t *testing.T) {
	table := defaultTable(t)
	landing, ok := table.Landing(RoleFreelancer)
	if !ok || landing != "/freelancer/profile" {
		t.Fatalf("unexpected freelancer landing %q %v", landing, ok)
	}
	for _, role := range []Role{RoleAdmin, RoleManagement, RoleFinance, RoleMarketing, RolePurchasing} {
		if !table.IsPrivileged(role) {
			t.Fatalf("expected %q privileged", role)
		}
	}
	if table.IsPrivileged(RoleGuest) {
		t.Fatal("guest must not be privileged")
	}
}
