package activity

import (
	"strings"
	"time"
)

// ObjectTypeRoster is the object type of every roster event.
const ObjectTypeRoster = "roster"

// Roster verbs.
const (
	VerbPersonAssigned    = "roster.person.assigned"
	VerbPersonRemoved     = "roster.person.removed"
	VerbPersonSwapped     = "roster.person.swapped"
	VerbPersonSubstituted = "roster.person.substituted"
	VerbRowAdded          = "roster.row.added"
	VerbRowRemoved        = "roster.row.removed"
	VerbDatesShifted      = "roster.dates.shifted"
	VerbRoleAdded         = "roster.role.added"
	VerbRoleRenamed       = "roster.role.renamed"
	VerbRoleDeleted       = "roster.role.deleted"
	VerbRoleInfoToggled   = "roster.role.info_toggled"
	VerbRolesReordered    = "roster.roles.reordered"
	VerbImported          = "roster.imported"
	VerbHistoryUndone     = "roster.history.undone"
	VerbHistoryRedone     = "roster.history.redone"
	VerbDisplayUpdated    = "roster.display.updated"
)

// RosterEventInput describes the common fields for roster mutation events.
type RosterEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	SourceID   string
	Channel    string
	Dates      []string
	Roles      []string
	Person     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildRosterEvent constructs an activity event for a roster mutation. The
// roster source id is the object id.
func BuildRosterEvent(verb string, input RosterEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if len(input.Dates) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["dates"] = append([]string{}, input.Dates...)
	}
	if len(input.Roles) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["roles"] = append([]string{}, input.Roles...)
	}
	if person := strings.TrimSpace(input.Person); person != "" {
		metadata = ensureMetadata(metadata)
		metadata["person"] = person
	}

	objectID := strings.TrimSpace(input.SourceID)
	if objectID == "" {
		objectID = ObjectTypeRoster
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeRoster,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
