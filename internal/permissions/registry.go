package permissions

import "strings"

// Sections are coarse-grained application areas gated by role.
const (
	SectionCMS          = "cms"
	SectionUsers        = "users"
	SectionAudit        = "audit"
	SectionAccounting   = "accounting"
	SectionAppointments = "appointments"
)

// Role binds an identifier to its permission grants and accessible sections.
type Role struct {
	ID          string
	Label       string
	Permissions []string
	Sections    []string
}

// Registry is the static role table. It is data, not logic: the access gate
// never special-cases a role, it only consumes the derived permission and
// section sets. The registry is immutable after construction; authorization
// policy changes require a redeploy.
type Registry struct {
	roles map[string]Role
}

// NewRegistry builds a registry from the supplied roles. Duplicate role
// identifiers keep the last definition.
func NewRegistry(roles ...Role) *Registry {
	table := make(map[string]Role, len(roles))
	for _, role := range roles {
		id := normalizeToken(role.ID)
		if id == "" {
			continue
		}
		role.ID = id
		table[id] = role
	}
	return &Registry{roles: table}
}

// PermissionsFor returns the union of permissions granted by the supplied
// roles. Unknown role identifiers contribute nothing (fail-closed).
func (r *Registry) PermissionsFor(roleIDs ...string) Set {
	set := Set{}
	if r == nil {
		return set
	}
	for _, id := range roleIDs {
		role, ok := r.roles[normalizeToken(id)]
		if !ok {
			continue
		}
		for _, perm := range role.Permissions {
			if normalized := normalizePermission(perm); normalized != "" {
				set[normalized] = struct{}{}
			}
		}
	}
	return set
}

// SectionsFor returns the union of sections accessible to the supplied roles.
// Unknown role identifiers contribute nothing (fail-closed).
func (r *Registry) SectionsFor(roleIDs ...string) Set {
	set := Set{}
	if r == nil {
		return set
	}
	for _, id := range roleIDs {
		role, ok := r.roles[normalizeToken(id)]
		if !ok {
			continue
		}
		for _, section := range role.Sections {
			if normalized := normalizeToken(section); normalized != "" {
				set[normalized] = struct{}{}
			}
		}
	}
	return set
}

// Lookup resolves a role definition by identifier.
func (r *Registry) Lookup(roleID string) (Role, bool) {
	if r == nil {
		return Role{}, false
	}
	role, ok := r.roles[normalizeToken(roleID)]
	return role, ok
}

// Roles returns the registered role identifiers.
func (r *Registry) Roles() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.roles))
	for id := range r.roles {
		out = append(out, id)
	}
	return out
}

// ContentResources lists every content type resource managed by the module.
func ContentResources() []string {
	return []string{
		ResourceArticles,
		ResourceFAQs,
		ResourceBranches,
		ResourceServices,
		ResourceInsurances,
		ResourceForms,
		ResourceHeroSlides,
		ResourcePages,
	}
}

// DefaultRegistry returns the stock clinic back-office role table.
func DefaultRegistry() *Registry {
	editorPerms := make([]string, 0, len(ContentResources())*5)
	for _, resource := range ContentResources() {
		editorPerms = append(editorPerms, ContentTypePermissions(resource).List()...)
	}

	return NewRegistry(
		Role{
			ID:          "admin",
			Label:       "Administrator",
			Permissions: []string{"*"},
			Sections: []string{
				SectionCMS,
				SectionUsers,
				SectionAudit,
				SectionAccounting,
				SectionAppointments,
			},
		},
		Role{
			ID:          "content_editor",
			Label:       "Content Editor",
			Permissions: editorPerms,
			Sections:    []string{SectionCMS},
		},
		Role{
			ID:    "content_author",
			Label: "Content Author",
			Permissions: []string{
				Join(ResourceArticles, ActionRead),
				Join(ResourceArticles, ActionCreate),
				Join(ResourceArticles, ActionUpdate),
				Join(ResourceFAQs, ActionRead),
				Join(ResourceFAQs, ActionCreate),
				Join(ResourceFAQs, ActionUpdate),
			},
			Sections: []string{SectionCMS},
		},
		Role{
			ID:          "accountant",
			Label:       "Accountant",
			Permissions: []string{},
			Sections:    []string{SectionAccounting},
		},
		Role{
			ID:          "receptionist",
			Label:       "Receptionist",
			Permissions: []string{},
			Sections:    []string{SectionAppointments},
		},
		Role{
			ID:          "auditor",
			Label:       "Auditor",
			Permissions: []string{AuditRead},
			Sections:    []string{SectionAudit},
		},
	)
}

// SectionToken normalizes a section name for set lookups.
func SectionToken(section string) string {
	return strings.ToLower(strings.TrimSpace(section))
}
