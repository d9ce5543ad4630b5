package permissions_test

import (
	"testing"

	"github.com/goliatone/go-backoffice/internal/permissions"
)

func TestRegistryUnknownRolesGrantNothing(t *testing.T) {
	registry := permissions.DefaultRegistry()

	perms := registry.PermissionsFor("ghost_role", "another_unknown")
	if len(perms) != 0 {
		t.Fatalf("expected empty permission set for unknown roles, got %d entries", len(perms))
	}

	sections := registry.SectionsFor("ghost_role")
	if len(sections) != 0 {
		t.Fatalf("expected empty section set for unknown roles, got %d entries", len(sections))
	}
}

func TestRegistryEmptyRoleSet(t *testing.T) {
	registry := permissions.DefaultRegistry()

	if perms := registry.PermissionsFor(); len(perms) != 0 {
		t.Fatalf("expected empty set for empty role list, got %d", len(perms))
	}
	if sections := registry.SectionsFor(); len(sections) != 0 {
		t.Fatalf("expected empty section set for empty role list, got %d", len(sections))
	}
}

func TestRegistryUnionAcrossRoles(t *testing.T) {
	registry := permissions.DefaultRegistry()

	perms := registry.PermissionsFor("content_author", "auditor")
	if !perms.Allowed(permissions.Join(permissions.ResourceArticles, permissions.ActionCreate)) {
		t.Fatalf("expected articles:create from content_author")
	}
	if !perms.Allowed(permissions.AuditRead) {
		t.Fatalf("expected audit:read from auditor")
	}
	if perms.Allowed(permissions.Join(permissions.ResourceBranches, permissions.ActionDelete)) {
		t.Fatalf("branches:delete must not be granted to author+auditor")
	}

	sections := registry.SectionsFor("content_author", "auditor", "not_a_role")
	if !sections.Allowed(permissions.SectionCMS) || !sections.Allowed(permissions.SectionAudit) {
		t.Fatalf("expected cms and audit sections, got %v", sections)
	}
}

func TestRegistryAdminWildcard(t *testing.T) {
	registry := permissions.DefaultRegistry()

	perms := registry.PermissionsFor("admin")
	for _, resource := range permissions.ContentResources() {
		if !perms.Allowed(permissions.Join(resource, permissions.ActionDelete)) {
			t.Fatalf("admin should hold %s:delete", resource)
		}
	}
	if !perms.Allowed(permissions.UsersManage) {
		t.Fatalf("admin should hold users:manage")
	}
}

func TestRegistryEditorLacksUserManagement(t *testing.T) {
	registry := permissions.DefaultRegistry()

	perms := registry.PermissionsFor("content_editor")
	if !perms.Allowed(permissions.Join(permissions.ResourceFAQs, permissions.ActionUpdate)) {
		t.Fatalf("content_editor should hold faqs:update")
	}
	if perms.Allowed(permissions.UsersManage) {
		t.Fatalf("content_editor must not hold users:manage")
	}
}

func TestRegistryCaseInsensitiveLookup(t *testing.T) {
	registry := permissions.NewRegistry(permissions.Role{
		ID:          "Editor",
		Label:       "Editor",
		Permissions: []string{"articles:read"},
		Sections:    []string{"CMS"},
	})

	perms := registry.PermissionsFor("  EDITOR ")
	if !perms.Allowed("articles:read") {
		t.Fatalf("expected case-insensitive role resolution")
	}
}
