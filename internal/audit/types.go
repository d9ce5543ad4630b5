package audit

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Verbs form the fixed action taxonomy recorded for content mutations.
const (
	VerbCreate  = "CREATE"
	VerbUpdate  = "UPDATE"
	VerbDelete  = "DELETE"
	VerbPublish = "PUBLISH"
	VerbArchive = "ARCHIVE"
)

// Entry is one immutable audit record. No update or delete path exists on
// this model during normal operation; the retention purge is the only
// sanctioned mutation.
type Entry struct {
	bun.BaseModel `bun:"table:audit_entries,alias:ae"`

	ID         uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	ActorID    uuid.UUID      `bun:"actor_id,notnull,type:uuid" json:"actor_id"`
	Action     string         `bun:"action,notnull" json:"action"`
	TargetType string         `bun:"target_type,notnull" json:"target_type"`
	TargetID   string         `bun:"target_id,notnull" json:"target_id"`
	Metadata   map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Action builds a taxonomy string such as CMS_FAQ_UPDATE from an entry type
// identifier and a verb.
func Action(entryType, verb string) string {
	normalized := strings.ToUpper(strings.TrimSpace(entryType))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	v := strings.ToUpper(strings.TrimSpace(verb))
	if normalized == "" || v == "" {
		return ""
	}
	return "CMS_" + normalized + "_" + v
}
