package content

import (
	"strings"
	"time"

	"github.com/goliatone/go-backoffice/internal/permissions"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Entry is the generic record shared by every clinic content type. Concrete
// types differ only in which metadata fields they carry, never in lifecycle
// semantics.
type Entry struct {
	bun.BaseModel `bun:"table:entries,alias:e"`

	ID          uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	EntryType   string         `bun:"entry_type,notnull" json:"entry_type"`
	Title       string         `bun:"title,notnull" json:"title"`
	Slug        string         `bun:"slug,notnull" json:"slug"`
	Body        string         `bun:"body" json:"body,omitempty"`
	Status      string         `bun:"status,notnull,default:'draft'" json:"status"`
	PublishedAt *time.Time     `bun:"published_at,nullzero" json:"published_at,omitempty"`
	Metadata    map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	AuthorID    uuid.UUID      `bun:"author_id,notnull,type:uuid" json:"author_id"`
	UpdatedBy   uuid.UUID      `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	DeletedAt   *time.Time     `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Tags        []*EntryTag        `bun:"rel:has-many,join:id=entry_id" json:"tags,omitempty"`
	Categories  []*EntryCategory   `bun:"rel:has-many,join:id=entry_id" json:"categories,omitempty"`
	Attachments []*EntryAttachment `bun:"rel:has-many,join:id=entry_id" json:"attachments,omitempty"`
}

// EntryTag is a tag association with an explicit display order.
type EntryTag struct {
	bun.BaseModel `bun:"table:entry_tags,alias:et"`

	ID       uuid.UUID `bun:",pk,type:uuid" json:"id"`
	EntryID  uuid.UUID `bun:"entry_id,notnull,type:uuid" json:"entry_id"`
	Label    string    `bun:"label,notnull" json:"label"`
	Position int       `bun:"position,notnull,default:0" json:"position"`
}

// EntryCategory is a category association with an explicit display order.
type EntryCategory struct {
	bun.BaseModel `bun:"table:entry_categories,alias:ec"`

	ID       uuid.UUID `bun:",pk,type:uuid" json:"id"`
	EntryID  uuid.UUID `bun:"entry_id,notnull,type:uuid" json:"entry_id"`
	Label    string    `bun:"label,notnull" json:"label"`
	Position int       `bun:"position,notnull,default:0" json:"position"`
}

// EntryAttachment references gallery media in display order.
type EntryAttachment struct {
	bun.BaseModel `bun:"table:entry_attachments,alias:ea"`

	ID       uuid.UUID `bun:",pk,type:uuid" json:"id"`
	EntryID  uuid.UUID `bun:"entry_id,notnull,type:uuid" json:"entry_id"`
	MediaRef string    `bun:"media_ref,notnull" json:"media_ref"`
	Position int       `bun:"position,notnull,default:0" json:"position"`
}

// DefaultMaxBodyWords caps rich-text bodies unless a type overrides it.
const DefaultMaxBodyWords = 3000

// TypeDescriptor declares a concrete content type: its permission resource,
// the cache tags its mutations dirty, and optional metadata constraints.
type TypeDescriptor struct {
	Name           string
	Resource       string
	CacheTags      []string
	MetadataSchema map[string]any
	MaxBodyWords   int
}

// Permissions returns the CRUD+publish permission set for the type.
func (d TypeDescriptor) Permissions() permissions.PermissionSet {
	return permissions.ContentTypePermissions(d.Resource)
}

// WordLimit returns the effective body word cap.
func (d TypeDescriptor) WordLimit() int {
	if d.MaxBodyWords > 0 {
		return d.MaxBodyWords
	}
	return DefaultMaxBodyWords
}

// TypeRegistry is the static table of content types. Like the role registry
// it is immutable after construction.
type TypeRegistry struct {
	types map[string]TypeDescriptor
	order []string
}

// NewTypeRegistry builds a registry from the supplied descriptors.
func NewTypeRegistry(descriptors ...TypeDescriptor) *TypeRegistry {
	registry := &TypeRegistry{
		types: make(map[string]TypeDescriptor, len(descriptors)),
	}
	for _, descriptor := range descriptors {
		name := strings.ToLower(strings.TrimSpace(descriptor.Name))
		if name == "" {
			continue
		}
		descriptor.Name = name
		if descriptor.Resource == "" {
			descriptor.Resource = name + "s"
		}
		if _, exists := registry.types[name]; !exists {
			registry.order = append(registry.order, name)
		}
		registry.types[name] = descriptor
	}
	return registry
}

// Lookup resolves a type descriptor by name.
func (r *TypeRegistry) Lookup(name string) (TypeDescriptor, bool) {
	if r == nil {
		return TypeDescriptor{}, false
	}
	descriptor, ok := r.types[strings.ToLower(strings.TrimSpace(name))]
	return descriptor, ok
}

// Names returns the registered type names in registration order.
func (r *TypeRegistry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// DefaultTypes returns the stock clinic content type table.
func DefaultTypes() *TypeRegistry {
	return NewTypeRegistry(
		TypeDescriptor{
			Name:      "article",
			Resource:  permissions.ResourceArticles,
			CacheTags: []string{"articles", "home-articles"},
		},
		TypeDescriptor{
			Name:      "faq",
			Resource:  permissions.ResourceFAQs,
			CacheTags: []string{"faqs"},
		},
		TypeDescriptor{
			Name:      "branch",
			Resource:  permissions.ResourceBranches,
			CacheTags: []string{"branches"},
			MetadataSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"address": map[string]any{"type": "string"},
					"phone":   map[string]any{"type": "string"},
					"lat":     map[string]any{"type": "number"},
					"lng":     map[string]any{"type": "number"},
				},
				"additionalProperties": true,
			},
		},
		TypeDescriptor{
			Name:      "service",
			Resource:  permissions.ResourceServices,
			CacheTags: []string{"services"},
		},
		TypeDescriptor{
			Name:      "insurance",
			Resource:  permissions.ResourceInsurances,
			CacheTags: []string{"insurances"},
		},
		TypeDescriptor{
			Name:      "form",
			Resource:  permissions.ResourceForms,
			CacheTags: []string{"forms"},
		},
		TypeDescriptor{
			Name:      "hero_slide",
			Resource:  permissions.ResourceHeroSlides,
			CacheTags: []string{"home-hero"},
			MetadataSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"image":    map[string]any{"type": "string"},
					"link":     map[string]any{"type": "string"},
					"headline": map[string]any{"type": "string"},
				},
				"additionalProperties": true,
			},
		},
		TypeDescriptor{
			Name:      "page",
			Resource:  permissions.ResourcePages,
			CacheTags: []string{"pages"},
		},
	)
}
