package roster

import (
	"strings"
	"time"

	"github.com/goliatone/go-roster/pkg/activity"
	"github.com/goliatone/go-roster/pkg/registry"
	"github.com/goliatone/go-roster/pkg/rules"
	"github.com/goliatone/go-roster/pkg/store"
	"github.com/google/uuid"
)

const (
	DefaultSourceID      = "roster"
	DefaultMaxFutureRows = 52
	DefaultMaxPastRows   = 26
	DefaultHistorySize   = 20
	DefaultSeedWeeks     = 4
)

// DefaultRoles is written to a roster that has no metadata yet.
var DefaultRoles = []string{
	"Lead", "Co-lead", "Vocals", "Piano", "Drums", "Bass", "Guitar", "Rehearsal",
	"Reminder", "Sound", "Slides", "Host", "Offering", "Usher", "Prophetic",
}

// Option configures a Session.
type Option func(cfg *sessionConfig)

type sessionConfig struct {
	sourceID        string
	clock           Clock
	location        *time.Location
	maxFutureRows   int
	maxPastRows     int
	historySize     int
	defaultRoles    []string
	seedWeeks       int
	auditStore      store.Store
	logger          MutationLogger
	activityHooks   activity.Hooks
	activityChannel string
	actor           activity.RosterEventInput
	users           registry.Registry
	advisoryEngine  string
	advisoryExpr    string
	advisoryEval    rules.Evaluator
	evaluatorLogger rules.EvaluatorLogger
	listener        func(Advisory)
	groupID         func() string
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		sourceID:      DefaultSourceID,
		clock:         systemClock{},
		location:      DefaultLocation,
		maxFutureRows: DefaultMaxFutureRows,
		maxPastRows:   DefaultMaxPastRows,
		historySize:   DefaultHistorySize,
		defaultRoles:  append([]string{}, DefaultRoles...),
		seedWeeks:     DefaultSeedWeeks,
		logger:        noopMutationLogger{},
		groupID:       func() string { return "group-" + uuid.NewString() },
	}
}

func applyOptions(opts []Option) sessionConfig {
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithSourceID names the roster. It is the audit record sourceId, the
// activity object id and the key into each user's serve types.
func WithSourceID(id string) Option {
	return func(cfg *sessionConfig) {
		if id = strings.TrimSpace(id); id != "" {
			cfg.sourceID = id
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(cfg *sessionConfig) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// WithLocation sets the civil time zone for the reference Sunday and
// timestamps.
func WithLocation(loc *time.Location) Option {
	return func(cfg *sessionConfig) {
		if loc != nil {
			cfg.location = loc
		}
	}
}

// WithMaxFutureRows caps the editable window and AddRow.
func WithMaxFutureRows(n int) Option {
	return func(cfg *sessionConfig) {
		if n > 0 {
			cfg.maxFutureRows = n
		}
	}
}

// WithMaxPastRows caps the read-only past window.
func WithMaxPastRows(n int) Option {
	return func(cfg *sessionConfig) {
		if n > 0 {
			cfg.maxPastRows = n
		}
	}
}

// WithHistorySize sets the undo stack capacity.
func WithHistorySize(n int) Option {
	return func(cfg *sessionConfig) {
		if n > 0 {
			cfg.historySize = n
		}
	}
}

// WithDefaultRoles replaces the roles written when metadata is missing.
func WithDefaultRoles(roles ...string) Option {
	cleaned := make([]string, 0, len(roles))
	for _, role := range roles {
		if role = strings.TrimSpace(role); role != "" && indexOf(cleaned, role) < 0 {
			cleaned = append(cleaned, role)
		}
	}
	return func(cfg *sessionConfig) {
		cfg.defaultRoles = cleaned
	}
}

// WithSeedWeeks sets how many empty weeks Open creates for a roster with no
// future rows. Zero disables seeding.
func WithSeedWeeks(n int) Option {
	return func(cfg *sessionConfig) {
		if n >= 0 {
			cfg.seedWeeks = n
		}
	}
}

// WithAuditStore keeps audit records in a separate store keyed by session
// key. Without it the records live in the roster store under a reserved key.
func WithAuditStore(s store.Store) Option {
	return func(cfg *sessionConfig) {
		cfg.auditStore = s
	}
}

// WithMutationLogger receives one event per operation.
func WithMutationLogger(logger MutationLogger) Option {
	return func(cfg *sessionConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithActivityHooks attaches activity hooks. Nil entries are dropped. Hooks
// run after the mutating call releases the session.
func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	normalized := make(activity.Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			normalized = append(normalized, hook)
		}
	}
	return func(cfg *sessionConfig) {
		cfg.activityHooks = append(cfg.activityHooks, normalized...)
	}
}

// WithActivityChannel overrides activity.DefaultChannel.
func WithActivityChannel(channel string) Option {
	return func(cfg *sessionConfig) {
		cfg.activityChannel = channel
	}
}

// WithActor identifies who is editing, for activity events.
func WithActor(actorID, userID, tenantID string) Option {
	return func(cfg *sessionConfig) {
		cfg.actor.ActorID = actorID
		cfg.actor.UserID = userID
		cfg.actor.TenantID = tenantID
	}
}

// WithUserRegistry enables CheckMissingUsers.
func WithUserRegistry(users registry.Registry) Option {
	return func(cfg *sessionConfig) {
		cfg.users = users
	}
}

// WithAdvisoryRule replaces the rule that flags a person. The expression sees
// registered (bool), missing (list of roles), roles (the roles the person is
// assigned to), serves (registered roles) and person.
func WithAdvisoryRule(engine string, evaluator rules.Evaluator, expression string) Option {
	return func(cfg *sessionConfig) {
		cfg.advisoryEngine = engine
		cfg.advisoryEval = evaluator
		cfg.advisoryExpr = expression
	}
}

// WithEvaluatorLogger receives one event per advisory rule evaluation.
func WithEvaluatorLogger(logger rules.EvaluatorLogger) Option {
	return func(cfg *sessionConfig) {
		cfg.evaluatorLogger = logger
	}
}

// WithAdvisoryListener runs the advisory check after every committed
// mutation and hands the result to fn. Requires WithUserRegistry. fn runs
// after the session is unlocked and may call back into it.
func WithAdvisoryListener(fn func(Advisory)) Option {
	return func(cfg *sessionConfig) {
		cfg.listener = fn
	}
}

// WithGroupIDGenerator replaces the display group id generator.
func WithGroupIDGenerator(fn func() string) Option {
	return func(cfg *sessionConfig) {
		if fn != nil {
			cfg.groupID = fn
		}
	}
}
