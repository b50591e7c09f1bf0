package roster

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-roster/pkg/store"
)

// AuditKeyPrefix prefixes audit records kept in the roster store itself.
const AuditKeyPrefix = "_edit_log."

// Differ compares the live roster against the snapshot pinned at session
// start. The diff always reflects current-vs-original, never a change log.
type Differ struct {
	pinned Snapshot
	cells  map[DateKey]map[string][]string
	diff   Diff
}

// NewDiffer pins original. It never changes afterwards.
func NewDiffer(original Snapshot) *Differ {
	pinned := original.Clone()
	cells := make(map[DateKey]map[string][]string, len(pinned.Rows))
	for _, row := range pinned.Rows {
		cells[row.Date] = row.Cells
	}
	return &Differ{pinned: pinned, cells: cells, diff: Diff{}}
}

// Recompute rebuilds the diff over every row and role. Lists compare by
// ordered content; a cell missing from the pin counts as empty.
func (d *Differ) Recompute(rows []Row, roles []string) Diff {
	diff := Diff{}
	for _, row := range rows {
		original := d.cells[row.Date]
		for _, role := range roles {
			current := row.Cells[role]
			if equalPeople(current, original[role]) {
				continue
			}
			if diff[row.Date] == nil {
				diff[row.Date] = map[string][]string{}
			}
			diff[row.Date][role] = append([]string{}, current...)
		}
	}
	d.diff = diff
	return diff.Clone()
}

// Diff returns a copy of the last computed diff.
func (d *Differ) Diff() Diff {
	return d.diff.Clone()
}

// Empty reports whether the roster matches the pin.
func (d *Differ) Empty() bool {
	return len(d.diff) == 0
}

// Record renders the audit document. The original snapshot carries the
// pinned role list under store.MetadataKey.
func (d *Differ) Record(sourceID, editedAt string) AuditRecord {
	original := make(map[string]map[string][]string, len(d.pinned.Rows)+1)
	for _, row := range d.pinned.Rows {
		cells := make(map[string][]string, len(row.Cells))
		for role, people := range row.Cells {
			cells[role] = append([]string{}, people...)
		}
		original[row.Date.String()] = cells
	}
	original[store.MetadataKey] = map[string][]string{"roleList": append([]string{}, d.pinned.Roles...)}

	difference := make(map[string]map[string][]string, len(d.diff))
	for date, cells := range d.diff.Clone() {
		difference[date.String()] = cells
	}
	return AuditRecord{
		SourceID:         sourceID,
		OriginalSnapshot: original,
		Difference:       difference,
		LastEditedTime:   editedAt,
	}
}

// auditTarget returns the store and key the session's audit record goes to.
func (s *Session) auditTarget() (store.Store, string) {
	if s.cfg.auditStore != nil {
		return s.cfg.auditStore, s.sessionKey
	}
	return s.store, AuditKeyPrefix + s.sessionKey
}

// persistAudit writes the audit record when the diff is non-empty.
func (s *Session) persistAudit(ctx context.Context, op string) error {
	if s.differ.Empty() {
		return nil
	}
	start := time.Now()
	target, key := s.auditTarget()
	record := s.differ.Record(s.cfg.sourceID, FormatTimestamp(s.cfg.clock.Now(), s.cfg.location))
	fields, err := encodeAudit(record)
	if err != nil {
		err = &StoreError{Op: op, Keys: []string{key}, Err: err}
		s.logOp(op, 1, start, err)
		return err
	}
	return s.apply(ctx, target, op, []write{putWrite(key, fields)})
}

// AuditRecord returns the record the session would write now.
func (s *Session) AuditRecord() AuditRecord {
	s.mu.Lock()
	defer s.unlock()
	return s.differ.Record(s.cfg.sourceID, FormatTimestamp(s.cfg.clock.Now(), s.cfg.location))
}

// End makes a last best-effort attempt to store the audit record. Failures
// are logged, never returned.
func (s *Session) End(ctx context.Context) {
	s.mu.Lock()
	defer s.unlock()
	_ = s.persistAudit(ctx, "audit.end")
}

// AuditEntry is a stored audit record and the session key it was written
// under.
type AuditEntry struct {
	SessionKey string
	Record     AuditRecord
}

// ReadAuditRecords lists the audit records in st by session key. When
// dedicated is false st is a roster store and only AuditKeyPrefix keys are
// read.
func ReadAuditRecords(ctx context.Context, st store.Store, dedicated bool) ([]AuditEntry, error) {
	r := store.Range{From: AuditKeyPrefix, To: AuditKeyPrefix[:len(AuditKeyPrefix)-1] + "/"}
	if dedicated {
		r = store.Range{}
	}
	docs, err := st.Query(ctx, r)
	if err != nil {
		return nil, &StoreError{Op: "audit.read", Err: err}
	}
	entries := make([]AuditEntry, 0, len(docs))
	for _, doc := range docs {
		record, err := decodeAudit("audit", doc.Key, doc.Fields)
		if err != nil {
			return nil, &StoreError{Op: "audit.read", Keys: []string{doc.Key}, Err: err}
		}
		entries = append(entries, AuditEntry{
			SessionKey: strings.TrimPrefix(doc.Key, AuditKeyPrefix),
			Record:     record,
		})
	}
	return entries, nil
}
