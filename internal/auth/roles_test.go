package auth

import "testing"

func TestRoleIsValid(t *testing.T) {
	for _, role := range AllRoles() {
		if !role.IsValid() {
			t.Fatalf("expected %s to be valid", role)
		}
	}
	for _, raw := range []string{"", "admin", "Admin", "ROOT", "USER "} {
		if Role(raw).IsValid() {
			t.Fatalf("expected %q to be invalid", raw)
		}
	}
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("MANAGER")
	if !ok || role != RoleManager {
		t.Fatalf("ParseRole(MANAGER)=(%s,%v)", role, ok)
	}
	if _, ok := ParseRole("manager"); ok {
		t.Fatal("role matching must be case-sensitive")
	}
}

func TestRoleIn(t *testing.T) {
	if !RoleAdmin.In(RoleAdmin, RoleManager) {
		t.Fatal("expected membership")
	}
	if RoleUser.In(RoleAdmin, RoleManager) {
		t.Fatal("unexpected membership")
	}
	if RoleUser.In() {
		t.Fatal("empty allowed set must never match")
	}
}
