package roster

import (
	"context"
	"errors"

	"github.com/goliatone/go-roster/pkg/activity"
)

// History is a bounded undo stack of snapshots with a cursor. Once full, every
// push evicts the oldest entry and the cursor stays on the last index.
type History struct {
	capacity  int
	snapshots []Snapshot
	cursor    int
}

// NewHistory returns an empty history holding at most capacity snapshots.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultHistorySize
	}
	return &History{capacity: capacity, cursor: -1}
}

// Push discards any redo entries past the cursor and appends snapshot.
func (h *History) Push(snapshot Snapshot) {
	h.snapshots = append(h.snapshots[:h.cursor+1], snapshot.Clone())
	if len(h.snapshots) > h.capacity {
		h.snapshots = h.snapshots[1:]
		return
	}
	h.cursor++
}

// Undo moves the cursor back and returns the snapshot to restore.
func (h *History) Undo() (Snapshot, bool) {
	if h.cursor <= 0 {
		return Snapshot{}, false
	}
	h.cursor--
	return h.snapshots[h.cursor].Clone(), true
}

// Redo moves the cursor forward and returns the snapshot to restore.
func (h *History) Redo() (Snapshot, bool) {
	if h.cursor < 0 || h.cursor >= len(h.snapshots)-1 {
		return Snapshot{}, false
	}
	h.cursor++
	return h.snapshots[h.cursor].Clone(), true
}

// CanUndo reports whether a snapshot precedes the cursor.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether a snapshot follows the cursor.
func (h *History) CanRedo() bool { return h.cursor >= 0 && h.cursor < len(h.snapshots)-1 }

// Len returns the number of retained snapshots.
func (h *History) Len() int { return len(h.snapshots) }

// Cursor returns the index of the current snapshot, or -1 when empty.
func (h *History) Cursor() int { return h.cursor }

// Undo restores the previous snapshot. It reports false when there is
// nothing to undo.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.unlock()
	snapshot, ok := s.history.Undo()
	if !ok {
		return false, nil
	}
	return true, s.restore(ctx, snapshot, "history.undo", activity.VerbHistoryUndone)
}

// Redo restores the next snapshot. It reports false when there is nothing to
// redo.
func (s *Session) Redo(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.unlock()
	snapshot, ok := s.history.Redo()
	if !ok {
		return false, nil
	}
	return true, s.restore(ctx, snapshot, "history.redo", activity.VerbHistoryRedone)
}

// restore overwrites the session with snapshot and writes every row plus the
// metadata. Rows that exist now but not in snapshot are deleted.
func (s *Session) restore(ctx context.Context, snapshot Snapshot, op, verb string) error {
	stale := make(map[DateKey]bool, len(s.rows))
	for _, row := range s.rows {
		stale[row.Date] = true
	}

	s.rows = cloneRows(snapshot.Rows)
	s.roles = append([]string{}, snapshot.Roles...)
	s.info = make(map[string]bool, len(snapshot.InfoColumns))
	for _, name := range snapshot.InfoColumns {
		s.info[name] = true
	}
	dates := make([]DateKey, 0, len(s.rows))
	for _, row := range s.rows {
		delete(stale, row.Date)
		dates = append(dates, row.Date)
		s.collectPeople(row)
	}
	for _, name := range s.personNames() {
		s.colors.Color(name)
	}
	s.display.Reconcile(s.roles)

	writes := s.rowWrites()
	meta, err := s.metadataWrite()
	if err != nil {
		return err
	}
	writes = append(writes, meta)
	for date := range stale {
		writes = append(writes, deleteWrite(date.String()))
	}
	err = s.apply(ctx, s.store, op, writes)
	return errors.Join(err, s.settle(ctx, change{verb: verb, dates: dates}))
}
