package roster_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	roster "github.com/goliatone/go-roster"
	"github.com/goliatone/go-roster/pkg/activity"
	"github.com/goliatone/go-roster/pkg/store"
)

func TestOpenSeedsEmptyRoster(t *testing.T) {
	st := store.NewMemoryStore()
	s := openSession(t, st)

	if got := dates(s.Rows()); !reflect.DeepEqual(got, []string{"2026.01.04", "2026.01.11", "2026.01.18"}) {
		t.Fatalf("unexpected seeded rows %v", got)
	}
	if got := s.Roles(); !reflect.DeepEqual(got, []string{"Lead", "Piano", "Sound"}) {
		t.Fatalf("unexpected roles %v", got)
	}
	if s.SessionKey() != "2026.01.01.10.00" {
		t.Fatalf("unexpected session key %q", s.SessionKey())
	}
	if _, ok, _ := st.Get(context.Background(), store.MetadataKey); !ok {
		t.Fatalf("expected default metadata written")
	}
	if got := storedCell(t, st, "2026.01.11", "Piano"); len(got) != 0 {
		t.Fatalf("expected empty seeded cell, got %v", got)
	}
	if s.CanUndo() || s.CanRedo() {
		t.Fatalf("expected fresh history")
	}
	display := s.Display()
	if len(display.Groups) != 1 || display.Groups[0].ID != roster.UngroupedID {
		t.Fatalf("unexpected default display %+v", display)
	}
}

func TestOpenLoadsLegacyMetadataAndFutureWindow(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	st.Put(ctx, store.MetadataKey, store.Fields{
		"serviceItems":   []any{"Lead", "Notes", "Piano"},
		"nonUserColumns": []any{"Notes"},
	})
	st.Put(ctx, "2025.12.28", store.Fields{"Lead": []any{"Old"}})
	st.Put(ctx, "2026.01.04", store.Fields{"Lead": []any{"Alice"}, "Notes": []any{"Communion"}, "Retired": []any{"X"}})
	st.Put(ctx, "2026.01.11", store.Fields{"Piano": []any{"Bob"}})

	s := openSession(t, st, roster.WithMaxPastRows(5))

	if got := dates(s.Rows()); !reflect.DeepEqual(got, []string{"2026.01.04", "2026.01.11"}) {
		t.Fatalf("expected only the future window, got %v", got)
	}
	if got := s.Roles(); !reflect.DeepEqual(got, []string{"Lead", "Notes", "Piano"}) {
		t.Fatalf("unexpected roles %v", got)
	}
	if got := s.InfoColumns(); !reflect.DeepEqual(got, []string{"Notes"}) {
		t.Fatalf("unexpected info columns %v", got)
	}
	if got := cell(t, s, "2026.01.11", "Lead"); len(got) != 0 {
		t.Fatalf("expected missing role filled with empty list, got %v", got)
	}
	row, _ := s.Row(roster.MustDateKey("2026.01.04"))
	if _, ok := row.Cells["Retired"]; ok {
		t.Fatalf("expected unknown role dropped from row")
	}
	if got := s.People(); !reflect.DeepEqual(got, []string{"Alice", "Bob"}) {
		t.Fatalf("expected info column text excluded from people, got %v", got)
	}

	past, err := s.LoadPast(ctx)
	if err != nil {
		t.Fatalf("load past: %v", err)
	}
	if got := dates(past); !reflect.DeepEqual(got, []string{"2025.12.28"}) {
		t.Fatalf("unexpected past rows %v", got)
	}
}

func TestLoadPastKeepsNewestInAscendingOrder(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	for _, date := range []string{"2025.11.30", "2025.12.07", "2025.12.14", "2025.12.21", "2025.12.28"} {
		st.Put(ctx, date, store.Fields{"Lead": []any{"P"}})
	}
	s := openSession(t, st, roster.WithMaxPastRows(3))

	past, err := s.LoadPast(ctx)
	if err != nil {
		t.Fatalf("load past: %v", err)
	}
	if got := dates(past); !reflect.DeepEqual(got, []string{"2025.12.14", "2025.12.21", "2025.12.28"}) {
		t.Fatalf("unexpected past window %v", got)
	}
	if got := dates(s.PastRows()); len(got) != 3 {
		t.Fatalf("expected cached past rows, got %v", got)
	}
}

func TestAddRoleAddsEmptyListToEveryRow(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := openSession(t, st)

	if err := s.AddRole(ctx, "  Drums "); err != nil {
		t.Fatalf("add role: %v", err)
	}
	for _, row := range s.Rows() {
		people, ok := row.Cells["Drums"]
		if !ok || len(people) != 0 {
			t.Fatalf("row %s: expected empty Drums entry, got %v ok=%v", row.Date, people, ok)
		}
		if got := storedCell(t, st, row.Date.String(), "Drums"); len(got) != 0 {
			t.Fatalf("row %s: expected stored empty Drums entry, got %v", row.Date, got)
		}
	}
	if items := s.Display().Groups[0].Items; items[len(items)-1] != "Drums" {
		t.Fatalf("expected Drums appended to ungrouped, got %v", items)
	}

	if err := s.AddRole(ctx, "Drums"); !errors.Is(err, roster.ErrDuplicateRole) || !errors.Is(err, roster.ErrConflict) {
		t.Fatalf("expected duplicate role conflict, got %v", err)
	}
	if err := s.AddRole(ctx, "   "); !errors.Is(err, roster.ErrInvalidName) || !errors.Is(err, roster.ErrValidation) {
		t.Fatalf("expected invalid name, got %v", err)
	}
}

func TestAddRoleRollsBackWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	st := newFaultStore()
	s := openSession(t, st)

	st.setFailPut(failKey(store.MetadataKey))
	err := s.AddRole(ctx, "Drums")
	var storeErr *roster.StoreError
	if !errors.As(err, &storeErr) || !errors.Is(err, roster.ErrStore) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if !storeErr.Inconsistent {
		t.Fatalf("expected partial write flagged inconsistent")
	}
	if indexOfRole(s.Roles(), "Drums") >= 0 {
		t.Fatalf("expected role rolled back, got %v", s.Roles())
	}
	if _, ok := s.Rows()[0].Cells["Drums"]; ok {
		t.Fatalf("expected row entries rolled back")
	}
	if s.CanUndo() {
		t.Fatalf("expected no history entry for failed mutation")
	}
}

func indexOfRole(roles []string, role string) int {
	for i, r := range roles {
		if r == role {
			return i
		}
	}
	return -1
}

func TestAssignTwiceFailsWithDuplicate(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())
	date := roster.MustDateKey("2026.01.04")

	if err := s.AssignPerson(ctx, date, "Lead", "Alice"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	err := s.AssignPerson(ctx, date, "Lead", "Alice")
	if !errors.Is(err, roster.ErrDuplicateAssignment) {
		t.Fatalf("expected duplicate assignment, got %v", err)
	}
	if got := cell(t, s, "2026.01.04", "Lead"); !reflect.DeepEqual(got, []string{"Alice"}) {
		t.Fatalf("expected exactly one Alice, got %v", got)
	}
	if s.Color("Alice") != roster.Palette[0] {
		t.Fatalf("expected first palette color for first person")
	}
}

func TestAssignValidatesBeforeTouchingStore(t *testing.T) {
	ctx := context.Background()
	st := newFaultStore()
	s := openSession(t, st)
	before := st.calls()

	cases := []struct {
		name   string
		date   string
		role   string
		person string
		want   error
	}{
		{"empty", "2026.01.04", "Lead", "  ", roster.ErrInvalidName},
		{"slash", "2026.01.04", "Lead", "A/B", roster.ErrInvalidName},
		{"tab", "2026.01.04", "Lead", "A\tB", roster.ErrInvalidName},
		{"row", "2026.02.01", "Lead", "Alice", roster.ErrUnknownRow},
		{"role", "2026.01.04", "Bass", "Alice", roster.ErrUnknownRole},
	}
	for _, tc := range cases {
		err := s.AssignPerson(ctx, roster.DateKey(tc.date), tc.role, tc.person)
		if !errors.Is(err, tc.want) || !errors.Is(err, roster.ErrValidation) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if st.calls() != before {
		t.Fatalf("expected no store calls for rejected input")
	}
}

func TestRemoveThenAssignAppendsAtEnd(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())
	date := roster.MustDateKey("2026.01.04")
	for _, person := range []string{"Alice", "Bob", "Carol"} {
		if err := s.AssignPerson(ctx, date, "Piano", person); err != nil {
			t.Fatalf("assign %s: %v", person, err)
		}
	}

	if err := s.RemovePerson(ctx, date, "Piano", "Alice"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.AssignPerson(ctx, date, "Piano", "Alice"); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if got := cell(t, s, "2026.01.04", "Piano"); !reflect.DeepEqual(got, []string{"Bob", "Carol", "Alice"}) {
		t.Fatalf("expected append at end, got %v", got)
	}
}

func TestRemoveAbsentPersonIsNoop(t *testing.T) {
	ctx := context.Background()
	st := newFaultStore()
	s := openSession(t, st)
	before := st.calls()

	if err := s.RemovePerson(ctx, roster.MustDateKey("2026.01.04"), "Lead", "Nobody"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	if s.CanUndo() || st.calls() != before {
		t.Fatalf("expected no history entry and no store call")
	}
}

func TestAuditDiffRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := openSession(t, st)
	date := roster.MustDateKey("2026.01.11")

	if err := s.AssignPerson(ctx, date, "Sound", "Dave"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	diff := s.Diff()
	if got := diff[date]["Sound"]; !reflect.DeepEqual(got, []string{"Dave"}) {
		t.Fatalf("expected diff entry, got %v", diff)
	}

	auditKey := roster.AuditKeyPrefix + s.SessionKey()
	fields, ok, err := st.Get(ctx, auditKey)
	if err != nil || !ok {
		t.Fatalf("expected audit record stored: ok=%v err=%v", ok, err)
	}
	if fields["sourceId"] != "sunday" || fields["lastEditedTime"] != "2026.01.01.10.00" {
		t.Fatalf("unexpected audit record %v", fields)
	}

	if err := s.RemovePerson(ctx, date, "Sound", "Dave"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if diff := s.Diff(); len(diff) != 0 {
		t.Fatalf("expected diff cleared after round trip, got %v", diff)
	}
	record := s.AuditRecord()
	if _, ok := record.OriginalSnapshot[store.MetadataKey]; !ok {
		t.Fatalf("expected pinned role list in original snapshot")
	}
	if len(record.Difference) != 0 {
		t.Fatalf("expected empty difference, got %v", record.Difference)
	}
}

func TestAuditDiffCountsReorderAsChange(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	st.Put(ctx, "2026.01.04", store.Fields{"Lead": []any{"Alice", "Bob"}})
	s := openSession(t, st)
	date := roster.MustDateKey("2026.01.04")

	if err := s.RemovePerson(ctx, date, "Lead", "Alice"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.AssignPerson(ctx, date, "Lead", "Alice"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got := s.Diff()[date]["Lead"]; !reflect.DeepEqual(got, []string{"Bob", "Alice"}) {
		t.Fatalf("expected reorder recorded as difference, got %v", got)
	}
}

func TestAuditStoreOption(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	audit := store.NewMemoryStore()
	s := openSession(t, st, roster.WithAuditStore(audit))

	if err := s.AssignPerson(ctx, roster.MustDateKey("2026.01.04"), "Lead", "Alice"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, ok, _ := audit.Get(ctx, s.SessionKey()); !ok {
		t.Fatalf("expected record in audit store under session key")
	}
	if _, ok, _ := st.Get(ctx, roster.AuditKeyPrefix+s.SessionKey()); ok {
		t.Fatalf("expected no audit record in roster store")
	}
}

func TestAuditPersistFailureIsReportedAfterCommit(t *testing.T) {
	ctx := context.Background()
	st := newFaultStore()
	s := openSession(t, st)
	st.setFailPut(func(key string) bool { return key == roster.AuditKeyPrefix+s.SessionKey() })

	err := s.AssignPerson(ctx, roster.MustDateKey("2026.01.04"), "Lead", "Alice")
	var storeErr *roster.StoreError
	if !errors.As(err, &storeErr) || storeErr.Op != "audit.persist" {
		t.Fatalf("expected audit StoreError, got %v", err)
	}
	if !s.CanUndo() {
		t.Fatalf("expected the assignment committed to history")
	}
	if got := storedCell(t, st, "2026.01.04", "Lead"); !reflect.DeepEqual(got, []string{"Alice"}) {
		t.Fatalf("expected row persisted, got %v", got)
	}
}

func TestEndLogsAuditFailure(t *testing.T) {
	ctx := context.Background()
	st := newFaultStore()
	var events []roster.MutationLogEvent
	logger := roster.MutationLoggerFunc(func(event roster.MutationLogEvent) {
		events = append(events, event)
	})
	s := openSession(t, st, roster.WithMutationLogger(logger))
	if err := s.AssignPerson(ctx, roster.MustDateKey("2026.01.04"), "Lead", "Alice"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	st.setFailPut(failAll)
	events = nil
	s.End(ctx)
	if len(events) != 1 || events[0].Op != "audit.end" || events[0].Err == nil {
		t.Fatalf("expected one failed audit.end event, got %+v", events)
	}
}

func TestShiftAllDates(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := openSession(t, st)
	if err := s.AssignPerson(ctx, roster.MustDateKey("2026.01.04"), "Lead", "Alice"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := s.ShiftAllDates(ctx, 0, "2026.1.11"); err != nil {
		t.Fatalf("shift: %v", err)
	}
	want := []string{"2026.01.11", "2026.01.18", "2026.01.25"}
	if got := dates(s.Rows()); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected rows %v", got)
	}
	var rowKeys []string
	for _, key := range st.Keys() {
		if !store.IsReserved(key) {
			rowKeys = append(rowKeys, key)
		}
	}
	if !reflect.DeepEqual(rowKeys, want) {
		t.Fatalf("expected old keys deleted, store has %v", rowKeys)
	}
	if got := storedCell(t, st, "2026.01.11", "Lead"); !reflect.DeepEqual(got, []string{"Alice"}) {
		t.Fatalf("expected assignments to travel with the row, got %v", got)
	}

	if err := s.ShiftAllDates(ctx, 3, "2026.01.11"); !errors.Is(err, roster.ErrIndexOutOfRange) {
		t.Fatalf("expected index out of range, got %v", err)
	}
	if err := s.ShiftAllDates(ctx, 0, "2026.02.30"); !errors.Is(err, roster.ErrInvalidDate) {
		t.Fatalf("expected invalid date, got %v", err)
	}
}

func TestShiftAllDatesPartialFailureIsInconsistent(t *testing.T) {
	ctx := context.Background()
	st := newFaultStore()
	s := openSession(t, st)
	st.setFailDelete(failKey("2026.01.04"))

	err := s.ShiftAllDates(ctx, 0, "2026.01.11")
	var storeErr *roster.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if !storeErr.Inconsistent || !reflect.DeepEqual(storeErr.Keys, []string{"2026.01.04"}) {
		t.Fatalf("unexpected store error %+v", storeErr)
	}
}

func TestImportTopLevelDropsBlankLines(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := openSession(t, st)

	result, err := s.Import(ctx, "Alice/Bob\n\nCarol", roster.ImportOptions{Mode: roster.ImportTopLevel})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Rows != 2 {
		t.Fatalf("expected 2 rows imported, got %d", result.Rows)
	}
	if got := cell(t, s, "2026.01.04", "Lead"); !reflect.DeepEqual(got, []string{"Alice", "Bob"}) {
		t.Fatalf("row 0: %v", got)
	}
	if got := cell(t, s, "2026.01.11", "Lead"); !reflect.DeepEqual(got, []string{"Carol"}) {
		t.Fatalf("row 1: %v", got)
	}
	if got := cell(t, s, "2026.01.18", "Lead"); len(got) != 0 {
		t.Fatalf("row 2 should be untouched: %v", got)
	}
	if got := storedCell(t, st, "2026.01.11", "Lead"); !reflect.DeepEqual(got, []string{"Carol"}) {
		t.Fatalf("expected import persisted, got %v", got)
	}
}

func TestImportAnchoredKeepsBlankLines(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())
	date := roster.MustDateKey("2026.01.11")
	if err := s.AssignPerson(ctx, date, "Lead", "Zed"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if _, err := s.Import(ctx, "Alice/Bob\n\nCarol\n\n", roster.ImportOptions{Mode: roster.ImportAnchored}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := cell(t, s, "2026.01.04", "Lead"); !reflect.DeepEqual(got, []string{"Alice", "Bob"}) {
		t.Fatalf("row 0: %v", got)
	}
	if got := cell(t, s, "2026.01.11", "Lead"); len(got) != 0 {
		t.Fatalf("row 1 should be cleared: %v", got)
	}
	if got := cell(t, s, "2026.01.18", "Lead"); !reflect.DeepEqual(got, []string{"Carol"}) {
		t.Fatalf("row 2: %v", got)
	}

	if _, err := s.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if got := cell(t, s, "2026.01.11", "Lead"); !reflect.DeepEqual(got, []string{"Zed"}) {
		t.Fatalf("expected whole import undone in one step, got %v", got)
	}
}

func TestImportKeepsPastPeopleColored(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	st.Put(ctx, "2025.12.28", store.Fields{"Lead": []any{"Zed"}})
	s := openSession(t, st)

	if _, err := s.LoadPast(ctx); err != nil {
		t.Fatalf("load past: %v", err)
	}
	if s.Colors()["Zed"] == "" {
		t.Fatalf("expected past person colored after LoadPast")
	}

	if _, err := s.Import(ctx, "Alice\tBob", roster.ImportOptions{}); err != nil {
		t.Fatalf("import: %v", err)
	}
	colors := s.Colors()
	if colors["Zed"] == "" {
		t.Fatalf("expected past person to keep a color after import, got %v", colors)
	}
	used := map[string]string{}
	for name, color := range colors {
		if other, ok := used[color]; ok {
			t.Fatalf("%s and %s share color %s", name, other, color)
		}
		used[color] = name
	}
}

func TestImportStopsAtRosterBounds(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())

	text := "2026.01.11\tA\tB\tC\tD\n2026.01.18\tE\n2026.01.25\tF"
	result, err := s.Import(ctx, text, roster.ImportOptions{Mode: roster.ImportTopLevel, Row: 1, Role: 1})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Rows != 2 || len(s.Rows()) != 3 {
		t.Fatalf("expected two rows imported and no rows created, got %d rows (%d total)", result.Rows, len(s.Rows()))
	}
	if got := cell(t, s, "2026.01.11", "Piano"); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("unexpected Piano cell %v", got)
	}
	if got := cell(t, s, "2026.01.11", "Sound"); !reflect.DeepEqual(got, []string{"B"}) {
		t.Fatalf("unexpected Sound cell %v", got)
	}
	if got := cell(t, s, "2026.01.18", "Piano"); !reflect.DeepEqual(got, []string{"E"}) {
		t.Fatalf("unexpected second row %v", got)
	}
	if _, err := s.Import(ctx, "x", roster.ImportOptions{Row: 9}); !errors.Is(err, roster.ErrIndexOutOfRange) {
		t.Fatalf("expected bad anchor rejected, got %v", err)
	}
}

func TestAddRowAndCapacity(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore(), roster.WithMaxFutureRows(4))

	date, err := s.AddRow(ctx)
	if err != nil || date != "2026.01.25" {
		t.Fatalf("expected 2026.01.25, got %s err=%v", date, err)
	}
	if got := cell(t, s, "2026.01.25", "Sound"); len(got) != 0 {
		t.Fatalf("expected empty cell, got %v", got)
	}
	if _, err := s.AddRow(ctx); !errors.Is(err, roster.ErrCapacityExceeded) || !errors.Is(err, roster.ErrCapacity) {
		t.Fatalf("expected capacity error, got %v", err)
	}
}

func TestAddRowWithoutRows(t *testing.T) {
	s := openSession(t, store.NewMemoryStore(), roster.WithSeedWeeks(0))
	if _, err := s.AddRow(context.Background()); !errors.Is(err, roster.ErrNoBaselineRow) {
		t.Fatalf("expected no baseline row, got %v", err)
	}
	if _, err := s.RemoveLastRow(context.Background()); !errors.Is(err, roster.ErrEmptyRoster) {
		t.Fatalf("expected empty roster, got %v", err)
	}
}

func TestRemoveLastRowRestoresOnFailedDelete(t *testing.T) {
	ctx := context.Background()
	st := newFaultStore()
	s := openSession(t, st)
	if err := s.AssignPerson(ctx, roster.MustDateKey("2026.01.18"), "Lead", "Alice"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	st.setFailDelete(failAll)

	date, err := s.RemoveLastRow(ctx)
	if !errors.Is(err, roster.ErrStore) || date != "2026.01.18" {
		t.Fatalf("expected store failure for 2026.01.18, got %s %v", date, err)
	}
	if got := dates(s.Rows()); len(got) != 3 || got[2] != "2026.01.18" {
		t.Fatalf("expected row restored, got %v", got)
	}
	if got := cell(t, s, "2026.01.18", "Lead"); !reflect.DeepEqual(got, []string{"Alice"}) {
		t.Fatalf("expected restored row contents, got %v", got)
	}

	st.setFailDelete(nil)
	if _, err := s.RemoveLastRow(ctx); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := st.Get(ctx, "2026.01.18"); ok {
		t.Fatalf("expected row deleted from store")
	}
}

func TestUndoRedoRestoresStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := openSession(t, st)

	if _, err := s.AddRow(ctx); err != nil {
		t.Fatalf("add row: %v", err)
	}
	if err := s.AssignPerson(ctx, roster.MustDateKey("2026.01.25"), "Lead", "Alice"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	ok, err := s.Undo(ctx)
	if !ok || err != nil {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
	if got := cell(t, s, "2026.01.25", "Lead"); len(got) != 0 {
		t.Fatalf("expected assignment undone, got %v", got)
	}
	if _, err := s.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if len(s.Rows()) != 3 {
		t.Fatalf("expected added row undone, got %v", dates(s.Rows()))
	}
	if _, ok, _ := st.Get(ctx, "2026.01.25"); ok {
		t.Fatalf("expected undone row deleted from store")
	}
	if ok, _ := s.Undo(ctx); ok {
		t.Fatalf("expected undo at the seed snapshot to be a no-op")
	}

	if ok, err := s.Redo(ctx); !ok || err != nil {
		t.Fatalf("redo: ok=%v err=%v", ok, err)
	}
	if ok, err := s.Redo(ctx); !ok || err != nil {
		t.Fatalf("redo: ok=%v err=%v", ok, err)
	}
	if got := storedCell(t, st, "2026.01.25", "Lead"); !reflect.DeepEqual(got, []string{"Alice"}) {
		t.Fatalf("expected redo persisted, got %v", got)
	}
	if ok, _ := s.Redo(ctx); ok {
		t.Fatalf("expected redo at the end to be a no-op")
	}
	if got := s.Diff()[roster.MustDateKey("2026.01.25")]["Lead"]; !reflect.DeepEqual(got, []string{"Alice"}) {
		t.Fatalf("expected diff recomputed after redo, got %v", s.Diff())
	}
}

func TestMovePersonIsTwoSteps(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())
	from := roster.MustDateKey("2026.01.04")
	to := roster.MustDateKey("2026.01.11")
	for _, step := range []struct {
		date roster.DateKey
		role string
	}{{from, "Lead"}, {to, "Piano"}} {
		if err := s.AssignPerson(ctx, step.date, step.role, "Alice"); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	if err := s.MovePerson(ctx, from, "Lead", from, "Lead", "Alice"); err != nil {
		t.Fatalf("same cell move: %v", err)
	}

	err := s.MovePerson(ctx, from, "Lead", to, "Piano", "Alice")
	if !errors.Is(err, roster.ErrDuplicateAssignment) {
		t.Fatalf("expected duplicate at destination, got %v", err)
	}
	if got := cell(t, s, "2026.01.04", "Lead"); len(got) != 0 {
		t.Fatalf("expected removal kept, got %v", got)
	}

	if err := s.MovePerson(ctx, to, "Piano", from, "Sound", "Alice"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := cell(t, s, "2026.01.04", "Sound"); !reflect.DeepEqual(got, []string{"Alice"}) {
		t.Fatalf("expected Alice moved, got %v", got)
	}
	if err := s.MovePerson(ctx, to, "Piano", from, "Lead", "Alice"); !errors.Is(err, roster.ErrPersonNotAssigned) {
		t.Fatalf("expected person not assigned, got %v", err)
	}
}

func TestRenameAndDeleteRoleKeepDisplayInStep(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := openSession(t, st)
	date := roster.MustDateKey("2026.01.04")
	if err := s.AssignPerson(ctx, date, "Piano", "Bob"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := s.EditDisplay(ctx, func(cfg *roster.DisplayConfig) error {
		return cfg.MoveRole("Piano", roster.HiddenTarget, "")
	}); err != nil {
		t.Fatalf("edit display: %v", err)
	}

	if err := s.RenameRole(ctx, "Piano", "Keys"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got := cell(t, s, "2026.01.04", "Keys"); !reflect.DeepEqual(got, []string{"Bob"}) {
		t.Fatalf("expected people carried over, got %v", got)
	}
	if got := s.Display().Hidden; !reflect.DeepEqual(got, []string{"Keys"}) {
		t.Fatalf("expected hidden entry renamed, got %v", got)
	}
	if got := storedCell(t, st, "2026.01.04", "Keys"); !reflect.DeepEqual(got, []string{"Bob"}) {
		t.Fatalf("expected renamed role stored, got %v", got)
	}
	if err := s.RenameRole(ctx, "Keys", "Lead"); !errors.Is(err, roster.ErrDuplicateRole) {
		t.Fatalf("expected duplicate role, got %v", err)
	}
	if err := s.RenameRole(ctx, "Keys", "Keys"); err != nil {
		t.Fatalf("expected same-name rename to be a no-op, got %v", err)
	}

	if err := s.DeleteRole(ctx, "Keys"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := s.Roles(); !reflect.DeepEqual(got, []string{"Lead", "Sound"}) {
		t.Fatalf("unexpected roles %v", got)
	}
	if got := s.Display().Hidden; len(got) != 0 {
		t.Fatalf("expected role removed from display, got %v", got)
	}
	fields, _, _ := st.Get(ctx, "2026.01.04")
	if _, ok := fields["Keys"]; ok {
		t.Fatalf("expected deleted role absent from stored row")
	}

	reopened := openSession(t, st)
	if got := reopened.Roles(); !reflect.DeepEqual(got, []string{"Lead", "Sound"}) {
		t.Fatalf("expected metadata persisted, got %v", got)
	}
}

func TestReorderAndInfoColumns(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := openSession(t, st)

	if err := s.ReorderRoles(ctx, 2, 0); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if got := s.Roles(); !reflect.DeepEqual(got, []string{"Sound", "Lead", "Piano"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if err := s.ReorderRoles(ctx, 0, 3); !errors.Is(err, roster.ErrIndexOutOfRange) {
		t.Fatalf("expected index out of range, got %v", err)
	}
	if err := s.AddInfoColumn(ctx, "Notes"); err != nil {
		t.Fatalf("add info column: %v", err)
	}
	if err := s.SetInfoColumn(ctx, "Sound", true); err != nil {
		t.Fatalf("set info: %v", err)
	}
	if got := s.InfoColumns(); !reflect.DeepEqual(got, []string{"Sound", "Notes"}) {
		t.Fatalf("unexpected info columns %v", got)
	}

	reopened := openSession(t, st)
	if got := reopened.Roles(); !reflect.DeepEqual(got, []string{"Sound", "Lead", "Piano", "Notes"}) {
		t.Fatalf("unexpected stored order %v", got)
	}
	if !reopened.IsInfoColumn("Notes") || !reopened.IsInfoColumn("Sound") {
		t.Fatalf("expected info columns persisted, got %v", reopened.InfoColumns())
	}
}

func TestDisplayEditPersistsAndPrunes(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := openSession(t, st, roster.WithGroupIDGenerator(func() string { return "group-band" }))

	err := s.EditDisplay(ctx, func(cfg *roster.DisplayConfig) error {
		band := cfg.AddGroup(s.NewGroupID())
		cfg.AddGroup("group-empty")
		return cfg.MoveRole("Piano", band, "")
	})
	if err != nil {
		t.Fatalf("edit display: %v", err)
	}
	display := s.Display()
	if len(display.Groups) != 2 || display.Groups[1].ID != "group-band" {
		t.Fatalf("expected empty group pruned, got %+v", display.Groups)
	}

	failing := errors.New("abort")
	if err := s.EditDisplay(ctx, func(cfg *roster.DisplayConfig) error {
		cfg.MoveRole("Lead", roster.HiddenTarget, "")
		return failing
	}); !errors.Is(err, failing) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if got := s.Display().Hidden; len(got) != 0 {
		t.Fatalf("expected failed edit discarded, got %v", got)
	}

	reopened := openSession(t, st)
	if got := reopened.Display(); !reflect.DeepEqual(got, display) {
		t.Fatalf("expected display persisted\nwant %+v\n got %+v", display, got)
	}
}

func TestActivityEventsPerMutation(t *testing.T) {
	ctx := context.Background()
	capture := &activity.CaptureHook{}
	s := openSession(t, store.NewMemoryStore(),
		roster.WithActivityHooks(capture),
		roster.WithActor("actor-1", "user-1", "tenant-1"),
	)
	date := roster.MustDateKey("2026.01.04")

	s.AssignPerson(ctx, date, "Lead", "Alice")
	s.RemovePerson(ctx, date, "Lead", "Alice")
	s.AddRow(ctx)
	s.Undo(ctx)
	s.AddRole(ctx, "Drums")

	want := []string{
		activity.VerbPersonAssigned,
		activity.VerbPersonRemoved,
		activity.VerbRowAdded,
		activity.VerbHistoryUndone,
		activity.VerbRoleAdded,
	}
	if got := capture.Verbs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected verbs %v", got)
	}
	first := capture.Events[0]
	if first.ObjectID != "sunday" || first.ActorID != "actor-1" || first.Channel != activity.DefaultChannel {
		t.Fatalf("unexpected event %+v", first)
	}
	if first.Metadata["person"] != "Alice" {
		t.Fatalf("expected person metadata, got %v", first.Metadata)
	}
}

func TestActivityFailureDoesNotFailMutation(t *testing.T) {
	capture := &activity.CaptureHook{Err: errBoom}
	var failed []string
	logger := roster.MutationLoggerFunc(func(event roster.MutationLogEvent) {
		if event.Err != nil {
			failed = append(failed, event.Op)
		}
	})
	s := openSession(t, store.NewMemoryStore(), roster.WithActivityHooks(capture), roster.WithMutationLogger(logger))

	if err := s.AssignPerson(context.Background(), roster.MustDateKey("2026.01.04"), "Lead", "Alice"); err != nil {
		t.Fatalf("expected mutation to succeed, got %v", err)
	}
	if !reflect.DeepEqual(failed, []string{"activity.emit"}) {
		t.Fatalf("expected logged activity failure, got %v", failed)
	}
}

func TestCanUndoCanRedoFollowHistory(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, store.NewMemoryStore())
	if err := s.AssignPerson(ctx, roster.MustDateKey("2026.01.04"), "Lead", "Alice"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !s.CanUndo() || s.CanRedo() {
		t.Fatalf("after a change: undo=%t redo=%t", s.CanUndo(), s.CanRedo())
	}
	if _, err := s.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if s.CanUndo() || !s.CanRedo() {
		t.Fatalf("after undo: undo=%t redo=%t", s.CanUndo(), s.CanRedo())
	}
	if _, err := s.Redo(ctx); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if !s.CanUndo() || s.CanRedo() {
		t.Fatalf("after redo: undo=%t redo=%t", s.CanUndo(), s.CanRedo())
	}
}
