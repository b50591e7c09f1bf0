package roster

import (
	"context"
	"time"

	"github.com/goliatone/go-roster/pkg/activity"
)

// change describes a committed mutation for history, activity and logging.
type change struct {
	verb   string
	dates  []DateKey
	roles  []string
	person string
	meta   map[string]any
}

// commit records a persisted mutation: one history entry, a full audit
// recompute and persist, then queues the activity event and advisory listener
// for after the unlock. Only the audit write can fail here.
func (s *Session) commit(ctx context.Context, c change) error {
	s.history.Push(s.snapshot())
	return s.settle(ctx, c)
}

// settle is commit without the history push, used by undo and redo.
func (s *Session) settle(ctx context.Context, c change) error {
	s.differ.Recompute(s.rows, s.roles)
	err := s.persistAudit(ctx, "audit.persist")
	s.emit(ctx, c)
	s.notifyAdvisory(ctx)
	return err
}

func (s *Session) emit(ctx context.Context, c change) {
	if !s.emitter.Enabled() {
		return
	}
	input := s.cfg.actor
	input.SourceID = s.cfg.sourceID
	input.Roles = c.roles
	input.Person = c.person
	input.Metadata = c.meta
	input.OccurredAt = s.cfg.clock.Now()
	for _, date := range c.dates {
		input.Dates = append(input.Dates, date.String())
	}

	event := activity.BuildRosterEvent(c.verb, input)
	s.afterUnlock(func() {
		start := time.Now()
		if err := s.emitter.Emit(ctx, event); err != nil {
			s.logOp("activity.emit", 0, start, err)
		}
	})
}

// afterUnlock queues fn to run once the session lock is released, so hooks
// and listeners may call back into the session.
func (s *Session) afterUnlock(fn func()) {
	s.pending = append(s.pending, fn)
}

// unlock releases the session and runs the callbacks queued while it was
// held, in order.
func (s *Session) unlock() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}
