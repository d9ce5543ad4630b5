package audit

import (
	"context"
	"strings"

	"github.com/goliatone/go-backoffice/pkg/interfaces"
)

// SinkHook forwards recorded audit entries to a go-users activity sink so
// host applications can surface back-office mutations in their activity
// feeds. Forwarding is best-effort: a sink failure never fails the caller.
type SinkHook struct {
	Sink    interfaces.ActivitySink
	Channel string
}

// Notify maps the entry onto the go-users record contract and logs it.
func (h SinkHook) Notify(ctx context.Context, entry Entry) error {
	if h.Sink == nil {
		return nil
	}
	verb := verbFromAction(entry.Action)
	if verb == "" {
		return nil
	}

	channel := h.Channel
	if channel == "" {
		channel = "backoffice"
	}

	data := make(map[string]any, len(entry.Metadata)+1)
	for k, v := range entry.Metadata {
		data[k] = v
	}
	data["action"] = entry.Action

	return h.Sink.Log(ctx, interfaces.ActivityRecord{
		ActorID:    entry.ActorID,
		Verb:       verb,
		ObjectType: entry.TargetType,
		ObjectID:   entry.TargetID,
		Channel:    channel,
		OccurredAt: entry.CreatedAt,
		Data:       data,
	})
}

func verbFromAction(action string) string {
	trimmed := strings.TrimSpace(action)
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "_")
	return strings.ToLower(parts[len(parts)-1])
}
