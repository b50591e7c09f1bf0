// Package usersink forwards roster activity to a go-users ActivitySink so
// roster edits land in the same audit trail as account activity.
package usersink

import (
	"context"
	"strings"
	"time"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-roster/pkg/activity"
)

// Hook adapts activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
// Non-UUID identifiers are kept under Data["actor"] and friends since the
// record fields only accept UUIDs.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if !normalized.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	record := usertypes.ActivityRecord{
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       cloneMap(normalized.Metadata),
		OccurredAt: normalized.OccurredAt,
	}
	record.ActorID, record.Data = mapID(record.Data, "actor", normalized.ActorID)
	record.UserID, record.Data = mapID(record.Data, "user", normalized.UserID)
	record.TenantID, record.Data = mapID(record.Data, "tenant", normalized.TenantID)
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}

	return h.Sink.Log(ctx, record)
}

func mapID(data map[string]any, label, input string) (uuid.UUID, map[string]any) {
	value := strings.TrimSpace(input)
	if value == "" {
		return uuid.Nil, data
	}
	id, err := uuid.Parse(value)
	if err == nil {
		return id, data
	}
	if data == nil {
		data = map[string]any{}
	}
	data[label] = value
	return uuid.Nil, data
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
