package roster

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-roster/pkg/activity"
	"github.com/goliatone/go-roster/pkg/rules"
	"github.com/goliatone/go-roster/pkg/store"
)

// Session owns one editor's view of a roster: the future rows, the role
// list, history, the audit diff and the display config. Every method
// serializes on the session; persistence is write-through per mutation.
type Session struct {
	mu      sync.Mutex
	pending []func()
	store   store.Store
	cfg     sessionConfig

	reference  DateKey
	sessionKey string

	rows    []Row
	roles   []string
	info    map[string]bool
	people  map[string]struct{}
	colors  *ColorMap
	display DisplayConfig

	past       []Row
	pastLoaded bool

	history  *History
	differ   *Differ
	emitter  *activity.Emitter
	advisory *rules.Rule
}

// Open loads the roster behind st and starts a session. Missing metadata is
// replaced by the default roles; an empty future window is seeded with empty
// weekly rows starting at the reference Sunday.
func Open(ctx context.Context, st store.Store, opts ...Option) (*Session, error) {
	if st == nil {
		return nil, errors.New("roster: store is required")
	}
	cfg := applyOptions(opts)
	now := cfg.clock.Now()
	s := &Session{
		store:      st,
		cfg:        cfg,
		reference:  ReferenceSunday(now, cfg.location),
		sessionKey: FormatTimestamp(now, cfg.location),
		info:       map[string]bool{},
		people:     map[string]struct{}{},
		colors:     NewColorMap(),
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: true,
			Channel: cfg.activityChannel,
		}),
	}

	rule, err := newAdvisoryRule(cfg)
	if err != nil {
		return nil, err
	}
	s.advisory = rule

	start := time.Now()
	if err := s.loadMetadata(ctx); err != nil {
		return nil, err
	}
	if err := s.loadFuture(ctx); err != nil {
		return nil, err
	}
	if len(s.rows) == 0 && cfg.seedWeeks > 0 {
		if err := s.seed(ctx); err != nil {
			return nil, err
		}
	}
	s.logOp("open", len(s.rows)+1, start, nil)

	s.colors.Rebuild(s.personNames())
	s.history = NewHistory(cfg.historySize)
	s.history.Push(s.snapshot())
	s.differ = NewDiffer(s.snapshot())
	return s, nil
}

func (s *Session) loadMetadata(ctx context.Context) error {
	fields, ok, err := s.store.Get(ctx, store.MetadataKey)
	if err != nil {
		return &StoreError{Op: "load.metadata", Keys: []string{store.MetadataKey}, Err: err}
	}
	if !ok {
		s.roles = append([]string{}, s.cfg.defaultRoles...)
		s.display = DefaultDisplay(s.roles)
		w, err := s.metadataWrite()
		if err != nil {
			return err
		}
		return s.apply(ctx, s.store, "init.metadata", []write{w})
	}

	doc, err := decodeMetadata(s.cfg.sourceID, fields)
	if err != nil {
		return &StoreError{Op: "load.metadata", Keys: []string{store.MetadataKey}, Err: err}
	}
	s.roles = doc.RoleList
	for _, name := range doc.InfoColumnNames {
		s.info[name] = true
	}
	if doc.DisplayConfig != nil {
		s.display = doc.DisplayConfig.Clone()
	} else {
		s.display = DefaultDisplay(s.roles)
	}
	s.display.Reconcile(s.roles)
	return nil
}

func (s *Session) loadFuture(ctx context.Context) error {
	docs, err := s.store.Query(ctx, store.Range{
		From:  s.reference.String(),
		To:    store.ReservedPrefix,
		Limit: s.cfg.maxFutureRows,
	})
	if err != nil {
		return &StoreError{Op: "load.future", Err: err}
	}
	rows, err := s.decodeRows(docs)
	if err != nil {
		return err
	}
	s.rows = rows
	for _, row := range rows {
		s.collectPeople(row)
	}
	return nil
}

func (s *Session) decodeRows(docs []store.Document) ([]Row, error) {
	decoder := rowDecoder(s.roles)
	rows := make([]Row, 0, len(docs))
	for _, doc := range docs {
		if store.IsReserved(doc.Key) {
			continue
		}
		if _, err := ParseDateKey(doc.Key); err != nil {
			continue
		}
		row, err := decoder.Decode(hydrateContext(s.cfg.sourceID, doc.Key), doc.Fields)
		if err != nil {
			return nil, &StoreError{Op: "load.row", Keys: []string{doc.Key}, Err: err}
		}
		rows = append(rows, row)
	}
	sortRows(rows)
	return rows, nil
}

func (s *Session) seed(ctx context.Context) error {
	rows := make([]Row, 0, s.cfg.seedWeeks)
	for i := 0; i < s.cfg.seedWeeks && i < s.cfg.maxFutureRows; i++ {
		rows = append(rows, s.emptyRow(s.reference.AddDays(7*i)))
	}
	s.rows = rows
	return s.apply(ctx, s.store, "init.seed", s.rowWrites())
}

// LoadPast fetches the read-only rows before the reference Sunday, newest
// MaxPastRows of them in ascending order. The result is cached.
func (s *Session) LoadPast(ctx context.Context) ([]Row, error) {
	s.mu.Lock()
	defer s.unlock()
	if s.pastLoaded {
		return cloneRows(s.past), nil
	}
	start := time.Now()
	docs, err := s.store.Query(ctx, store.Range{To: s.reference.String()})
	if err != nil {
		err = &StoreError{Op: "load.past", Err: err}
		s.logOp("load.past", 0, start, err)
		return nil, err
	}
	rows, err := s.decodeRows(docs)
	if err != nil {
		s.logOp("load.past", len(docs), start, err)
		return nil, err
	}
	if len(rows) > s.cfg.maxPastRows {
		rows = rows[len(rows)-s.cfg.maxPastRows:]
	}
	s.past = rows
	s.pastLoaded = true
	for _, row := range rows {
		for _, role := range s.roles {
			if s.info[role] {
				continue
			}
			for _, person := range row.Cells[role] {
				s.colors.Color(person)
			}
		}
	}
	s.logOp("load.past", len(rows), start, nil)
	return cloneRows(rows), nil
}

// PastRows returns the cached past window, or nil before LoadPast.
func (s *Session) PastRows() []Row {
	s.mu.Lock()
	defer s.unlock()
	return cloneRows(s.past)
}

// Rows returns a copy of the future rows in date order.
func (s *Session) Rows() []Row {
	s.mu.Lock()
	defer s.unlock()
	return cloneRows(s.rows)
}

// Row returns a copy of the future row dated date.
func (s *Session) Row(date DateKey) (Row, bool) {
	s.mu.Lock()
	defer s.unlock()
	index := s.rowIndex(date)
	if index < 0 {
		return Row{}, false
	}
	return s.rows[index].Clone(), true
}

// Roles returns the role list in column order.
func (s *Session) Roles() []string {
	s.mu.Lock()
	defer s.unlock()
	return append([]string{}, s.roles...)
}

// InfoColumns returns the roles whose cells hold free text, not people.
func (s *Session) InfoColumns() []string {
	s.mu.Lock()
	defer s.unlock()
	return s.infoColumns()
}

// IsInfoColumn reports whether role holds free text.
func (s *Session) IsInfoColumn(role string) bool {
	s.mu.Lock()
	defer s.unlock()
	return s.info[role]
}

// People returns every person seen this session, sorted.
func (s *Session) People() []string {
	s.mu.Lock()
	defer s.unlock()
	return s.personNames()
}

// Colors returns every assigned person color.
func (s *Session) Colors() map[string]string {
	s.mu.Lock()
	defer s.unlock()
	return s.colors.Colors()
}

// Color returns the color for name, allocating one on first use.
func (s *Session) Color(name string) string {
	s.mu.Lock()
	defer s.unlock()
	return s.colors.Color(name)
}

// Display returns a copy of the display config.
func (s *Session) Display() DisplayConfig {
	s.mu.Lock()
	defer s.unlock()
	return s.display.Clone()
}

// Diff returns the cells that differ from the session's original snapshot.
func (s *Session) Diff() Diff {
	s.mu.Lock()
	defer s.unlock()
	return s.differ.Diff()
}

// CanUndo reports whether Undo has a snapshot to restore.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether Redo has a snapshot to restore.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.unlock()
	return s.history.CanRedo()
}

// SessionKey identifies this session's audit record (YYYY.MM.DD.HH.MM of
// Open).
func (s *Session) SessionKey() string {
	return s.sessionKey
}

// ReferenceSunday is the first date of the editable window.
func (s *Session) ReferenceSunday() DateKey {
	return s.reference
}

// SourceID names the roster.
func (s *Session) SourceID() string {
	return s.cfg.sourceID
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		Rows:        cloneRows(s.rows),
		Roles:       append([]string{}, s.roles...),
		InfoColumns: s.infoColumns(),
	}
}

func (s *Session) infoColumns() []string {
	out := make([]string, 0, len(s.info))
	for _, role := range s.roles {
		if s.info[role] {
			out = append(out, role)
		}
	}
	return out
}

func (s *Session) personNames() []string {
	names := make([]string, 0, len(s.people))
	for name := range s.people {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Session) collectPeople(row Row) {
	for _, role := range s.roles {
		if s.info[role] {
			continue
		}
		for _, person := range row.Cells[role] {
			s.people[person] = struct{}{}
		}
	}
}

func (s *Session) emptyRow(date DateKey) Row {
	cells := make(map[string][]string, len(s.roles))
	for _, role := range s.roles {
		cells[role] = []string{}
	}
	return Row{Date: date, Cells: cells}
}

func (s *Session) rowIndex(date DateKey) int {
	for i, row := range s.rows {
		if row.Date == date {
			return i
		}
	}
	return -1
}

func (s *Session) lookupCell(date DateKey, role string) (int, error) {
	index := s.rowIndex(date)
	if index < 0 {
		return -1, fmt.Errorf("%w: %s", ErrUnknownRow, date)
	}
	if indexOf(s.roles, role) < 0 {
		return -1, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return index, nil
}
