package roster_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	roster "github.com/goliatone/go-roster"
	"github.com/goliatone/go-roster/pkg/store"
)

var errBoom = errors.New("boom")

// Thursday 2026-01-01 10:00 UTC+8; the reference Sunday is 2026.01.04.
var testNow = time.Date(2026, 1, 1, 10, 0, 0, 0, roster.DefaultLocation)

// faultStore wraps a MemoryStore and fails selected writes.
type faultStore struct {
	*store.MemoryStore

	mu         sync.Mutex
	failPut    func(key string) bool
	failDelete func(key string) bool
	puts       []string
	deletes    []string
}

func newFaultStore() *faultStore {
	return &faultStore{MemoryStore: store.NewMemoryStore()}
}

func (f *faultStore) Put(ctx context.Context, key string, fields store.Fields) error {
	f.mu.Lock()
	f.puts = append(f.puts, key)
	fail := f.failPut != nil && f.failPut(key)
	f.mu.Unlock()
	if fail {
		return errBoom
	}
	return f.MemoryStore.Put(ctx, key, fields)
}

func (f *faultStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, key)
	fail := f.failDelete != nil && f.failDelete(key)
	f.mu.Unlock()
	if fail {
		return errBoom
	}
	return f.MemoryStore.Delete(ctx, key)
}

func (f *faultStore) setFailPut(fn func(key string) bool) {
	f.mu.Lock()
	f.failPut = fn
	f.mu.Unlock()
}

func (f *faultStore) setFailDelete(fn func(key string) bool) {
	f.mu.Lock()
	f.failDelete = fn
	f.mu.Unlock()
}

func (f *faultStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts) + len(f.deletes)
}

func failKey(target string) func(string) bool {
	return func(key string) bool { return key == target }
}

func failAll(string) bool { return true }

// openSession opens a session over st seeded with three Sundays and the
// roles Lead, Piano and Sound.
func openSession(t *testing.T, st store.Store, opts ...roster.Option) *roster.Session {
	t.Helper()
	base := []roster.Option{
		roster.WithClock(roster.FixedClock(testNow)),
		roster.WithDefaultRoles("Lead", "Piano", "Sound"),
		roster.WithSeedWeeks(3),
		roster.WithSourceID("sunday"),
	}
	session, err := roster.Open(context.Background(), st, append(base, opts...)...)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return session
}

func cell(t *testing.T, s *roster.Session, date, role string) []string {
	t.Helper()
	row, ok := s.Row(roster.MustDateKey(date))
	if !ok {
		t.Fatalf("row %s not found", date)
	}
	people, ok := row.Cells[role]
	if !ok {
		t.Fatalf("row %s has no entry for role %q", date, role)
	}
	return people
}

func storedCell(t *testing.T, st store.Store, date, role string) []string {
	t.Helper()
	fields, ok, err := st.Get(context.Background(), date)
	if err != nil || !ok {
		t.Fatalf("stored row %s: ok=%v err=%v", date, ok, err)
	}
	switch typed := fields[role].(type) {
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			out = append(out, item.(string))
		}
		return out
	default:
		t.Fatalf("stored row %s role %q has %T", date, role, fields[role])
		return nil
	}
}

func dates(rows []roster.Row) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Date.String())
	}
	return out
}
