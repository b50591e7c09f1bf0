package roster

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-roster/pkg/registry"
	"github.com/goliatone/go-roster/pkg/rules"
)

var ErrNoUserRegistry = classify(ErrValidation, "roster: no user registry configured")

// Finding is the advisory verdict for one scheduled person.
type Finding struct {
	Person     string
	Registered bool
	Roles      []string
	Missing    []string
	Flagged    bool
}

// Advisory is the result of CheckMissingUsers. It never blocks a mutation.
type Advisory struct {
	Flagged  bool
	Findings []Finding
}

// FlaggedPeople returns the names of flagged findings.
func (a Advisory) FlaggedPeople() []string {
	var out []string
	for _, finding := range a.Findings {
		if finding.Flagged {
			out = append(out, finding.Person)
		}
	}
	return out
}

// DefaultAdvisoryExpression flags people who are not registered or are
// scheduled for a role they are not registered for.
func DefaultAdvisoryExpression(engine string) string {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case rules.EngineCEL:
		return "!registered || size(missing) > 0"
	case rules.EngineJS:
		return "!registered || missing.length > 0"
	default:
		return "!registered || len(missing) > 0"
	}
}

func newAdvisoryRule(cfg sessionConfig) (*rules.Rule, error) {
	engine := strings.ToLower(strings.TrimSpace(cfg.advisoryEngine))
	if engine == "" {
		engine = rules.EngineExpr
	}
	evaluator := cfg.advisoryEval
	if evaluator == nil {
		built, err := rules.New(engine, rules.Config{
			Cache:     rules.NewMemoryCache(),
			Functions: rules.RosterFunctions(),
		})
		if err != nil {
			return nil, err
		}
		evaluator = built
	}
	expression := cfg.advisoryExpr
	if strings.TrimSpace(expression) == "" {
		expression = DefaultAdvisoryExpression(engine)
	}
	return rules.NewRule(engine, evaluator, expression, cfg.evaluatorLogger)
}

// CheckMissingUsers compares everyone scheduled on a people role in the
// future rows with the user registry. Info columns are ignored.
func (s *Session) CheckMissingUsers(ctx context.Context) (Advisory, error) {
	s.mu.Lock()
	defer s.unlock()
	return s.checkMissingUsers(ctx)
}

func (s *Session) checkMissingUsers(ctx context.Context) (Advisory, error) {
	if s.cfg.users == nil {
		return Advisory{}, ErrNoUserRegistry
	}
	users, err := s.cfg.users.ListUsers(ctx)
	if err != nil {
		return Advisory{}, &StoreError{Op: "registry.list", Err: err}
	}

	scheduled := map[string]map[string]bool{}
	for _, row := range s.rows {
		for _, role := range s.roles {
			if s.info[role] {
				continue
			}
			for _, person := range row.Cells[role] {
				if scheduled[person] == nil {
					scheduled[person] = map[string]bool{}
				}
				scheduled[person][role] = true
			}
		}
	}

	people := make([]string, 0, len(scheduled))
	for person := range scheduled {
		people = append(people, person)
	}
	sort.Strings(people)

	advisory := Advisory{Findings: make([]Finding, 0, len(people))}
	for _, person := range people {
		finding := s.finding(person, scheduled[person], users)
		flagged, err := s.advisory.Bool(rules.RuleContext{
			Snapshot: map[string]any{
				"person":     finding.Person,
				"registered": finding.Registered,
				"roles":      finding.Roles,
				"missing":    finding.Missing,
				"serves":     users[person].Serves(s.cfg.sourceID),
			},
			Args:     map[string]any{"roster": s.cfg.sourceID},
			Subject:  person,
			Now:      timePtr(s.cfg.clock.Now()),
			Metadata: map[string]any{"reference": s.reference.String()},
		})
		if err != nil {
			return Advisory{}, err
		}
		finding.Flagged = flagged
		if flagged {
			advisory.Flagged = true
		}
		advisory.Findings = append(advisory.Findings, finding)
	}
	return advisory, nil
}

func (s *Session) finding(person string, scheduled map[string]bool, users map[string]registry.User) Finding {
	user, registered := users[person]
	finding := Finding{Person: person, Registered: registered, Roles: []string{}, Missing: []string{}}
	serves := user.Serves(s.cfg.sourceID)
	for _, role := range s.roles {
		if !scheduled[role] {
			continue
		}
		finding.Roles = append(finding.Roles, role)
		if indexOf(serves, role) < 0 {
			finding.Missing = append(finding.Missing, role)
		}
	}
	return finding
}

// notifyAdvisory runs the check for the listener after a committed
// mutation. The listener itself is queued and called once the session is
// unlocked. Failures are logged.
func (s *Session) notifyAdvisory(ctx context.Context) {
	if s.cfg.listener == nil || s.cfg.users == nil {
		return
	}
	start := time.Now()
	advisory, err := s.checkMissingUsers(ctx)
	if err != nil {
		s.logOp("advisory.check", 0, start, err)
		return
	}
	listener := s.cfg.listener
	s.afterUnlock(func() { listener(advisory) })
}

func timePtr(t time.Time) *time.Time {
	return &t
}
