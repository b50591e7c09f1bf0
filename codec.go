package roster

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-roster/internal/hydrate"
	"github.com/goliatone/go-roster/pkg/store"
)

// metadataDocument is the stored shape of store.MetadataKey.
type metadataDocument struct {
	RoleList        []string       `json:"roleList"`
	InfoColumnNames []string       `json:"infoColumnNames"`
	DisplayConfig   *DisplayConfig `json:"displayConfig,omitempty"`
}

// legacyMetadataFields maps the field names written by older clients.
var legacyMetadataFields = map[string]string{
	"serviceItems":   "roleList",
	"nonUserColumns": "infoColumnNames",
}

func migrateLegacyMetadata(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	for legacy, current := range legacyMetadataFields {
		value, ok := payload[legacy]
		if !ok {
			continue
		}
		if _, exists := payload[current]; !exists {
			payload[current] = value
		}
		delete(payload, legacy)
	}
	return payload, nil
}

func normalizeMetadata(_ hydrate.Context, doc *metadataDocument) error {
	roles := make([]string, 0, len(doc.RoleList))
	for _, role := range doc.RoleList {
		role = strings.TrimSpace(role)
		if role != "" && indexOf(roles, role) < 0 {
			roles = append(roles, role)
		}
	}
	doc.RoleList = roles

	info := make([]string, 0, len(doc.InfoColumnNames))
	for _, name := range doc.InfoColumnNames {
		if indexOf(roles, name) >= 0 && indexOf(info, name) < 0 {
			info = append(info, name)
		}
	}
	doc.InfoColumnNames = info
	return nil
}

var metadataDecoder = hydrate.NewDecoder[metadataDocument](
	hydrate.WithPreHook[metadataDocument](migrateLegacyMetadata),
	hydrate.WithPostHook[metadataDocument](normalizeMetadata),
)

func decodeMetadata(source string, fields store.Fields) (metadataDocument, error) {
	return metadataDecoder.Decode(hydrateContext(source, store.MetadataKey), fields)
}

func encodeMetadata(roles, info []string, display DisplayConfig) (store.Fields, error) {
	display = display.Clone()
	payload, err := hydrate.Encode(metadataDocument{
		RoleList:        append([]string{}, roles...),
		InfoColumnNames: append([]string{}, info...),
		DisplayConfig:   &display,
	})
	if err != nil {
		return nil, err
	}
	return store.Fields(payload), nil
}

// rowDecoder builds a decoder that keeps the entries of roles, filling absent
// ones with empty lists. Fields of unknown roles are dropped.
func rowDecoder(roles []string) *hydrate.Decoder[Row] {
	return hydrate.NewDecoder[Row](hydrate.WithCustomDecoder[Row](func(ctx hydrate.Context, payload map[string]any) (Row, error) {
		date, err := ParseDateKey(ctx.Key)
		if err != nil {
			return Row{}, err
		}
		cells := make(map[string][]string, len(roles))
		for _, role := range roles {
			people, err := hydrate.Strings(payload[role])
			if err != nil {
				return Row{}, fmt.Errorf("role %q: %w", role, err)
			}
			cells[role] = people
		}
		return Row{Date: date, Cells: cells}, nil
	}))
}

func encodeRow(row Row, roles []string) store.Fields {
	fields := make(store.Fields, len(roles))
	for _, role := range roles {
		fields[role] = append([]string{}, row.Cells[role]...)
	}
	return fields
}

func encodeAudit(record AuditRecord) (store.Fields, error) {
	payload, err := hydrate.Encode(record)
	if err != nil {
		return nil, err
	}
	return store.Fields(payload), nil
}

func hydrateContext(source, key string) hydrate.Context {
	return hydrate.Context{Key: key, Source: source}
}

var auditDecoder = hydrate.NewDecoder[AuditRecord]()

func decodeAudit(source, key string, fields store.Fields) (AuditRecord, error) {
	return auditDecoder.Decode(hydrateContext(source, key), fields)
}
