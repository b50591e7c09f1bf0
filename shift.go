package roster

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-roster/pkg/activity"
)

// SwapOption is another future Sunday whose cell in the same role could trade
// places with the requester.
type SwapOption struct {
	Date   DateKey
	People []string
}

// Candidates lists who can take over a person's slot: rows to swap with
// and registered people to substitute.
type Candidates struct {
	Swaps       []SwapOption
	Substitutes []string
}

// ServeDates returns the future dates on which person is scheduled for role,
// ascending.
func (s *Session) ServeDates(person, role string) ([]DateKey, error) {
	s.mu.Lock()
	defer s.unlock()
	if err := s.peopleRole(role); err != nil {
		return nil, err
	}
	person = strings.TrimSpace(person)
	var out []DateKey
	for _, row := range s.rows {
		if indexOf(row.Cells[role], person) >= 0 {
			out = append(out, row.Date)
		}
	}
	return out, nil
}

// Duties returns the people roles person already serves on date, in column
// order. Use it to warn before a swap lands someone on a busy Sunday.
func (s *Session) Duties(date DateKey, person string) []string {
	s.mu.Lock()
	defer s.unlock()
	index := s.rowIndex(date)
	if index < 0 {
		return nil
	}
	person = strings.TrimSpace(person)
	var out []string
	for _, role := range s.roles {
		if !s.info[role] && indexOf(s.rows[index].Cells[role], person) >= 0 {
			out = append(out, role)
		}
	}
	return out
}

// ShiftCandidates finds replacements for person on date/role. Swaps are the
// other future rows with someone in role and without person. Substitutes are
// registered users serving role on this roster who are not already in the
// cell; they are empty when no registry is configured.
func (s *Session) ShiftCandidates(ctx context.Context, date DateKey, role, person string) (Candidates, error) {
	s.mu.Lock()
	defer s.unlock()
	person = strings.TrimSpace(person)
	index, err := s.assignedCell(date, role, person)
	if err != nil {
		return Candidates{}, err
	}

	var out Candidates
	for _, row := range s.rows {
		people := row.Cells[role]
		if row.Date == date || len(people) == 0 || indexOf(people, person) >= 0 {
			continue
		}
		out.Swaps = append(out.Swaps, SwapOption{Date: row.Date, People: append([]string{}, people...)})
	}

	if s.cfg.users == nil {
		return out, nil
	}
	users, err := s.cfg.users.ListUsers(ctx)
	if err != nil {
		return Candidates{}, &StoreError{Op: "registry.list", Err: err}
	}
	cell := s.rows[index].Cells[role]
	for name, user := range users {
		if indexOf(cell, name) >= 0 {
			continue
		}
		if indexOf(user.Serves(s.cfg.sourceID), role) >= 0 {
			out.Substitutes = append(out.Substitutes, name)
		}
	}
	sort.Strings(out.Substitutes)
	return out, nil
}

// SwapPerson trades personA on dateA with personB on dateB in the same role.
// Each keeps the other's position in the cell. Both rows are written and the
// trade commits as one change.
func (s *Session) SwapPerson(ctx context.Context, dateA DateKey, role, personA string, dateB DateKey, personB string) error {
	s.mu.Lock()
	defer s.unlock()
	if dateA == dateB {
		return fmt.Errorf("%w: %s", ErrSameRow, dateA)
	}
	personA, personB = strings.TrimSpace(personA), strings.TrimSpace(personB)
	a, err := s.assignedCell(dateA, role, personA)
	if err != nil {
		return err
	}
	b, err := s.assignedCell(dateB, role, personB)
	if err != nil {
		return err
	}
	cellA, cellB := s.rows[a].Cells[role], s.rows[b].Cells[role]
	if indexOf(cellA, personB) >= 0 {
		return fmt.Errorf("%w: %s is already on %s %s", ErrDuplicateAssignment, personB, dateA, role)
	}
	if indexOf(cellB, personA) >= 0 {
		return fmt.Errorf("%w: %s is already on %s %s", ErrDuplicateAssignment, personA, dateB, role)
	}

	s.rows[a].Cells[role] = replaceString(cellA, personA, personB)
	s.rows[b].Cells[role] = replaceString(cellB, personB, personA)
	writes := []write{s.rowWrite(s.rows[a]), s.rowWrite(s.rows[b])}
	if err := s.apply(ctx, s.store, "person.swap", writes); err != nil {
		return err
	}
	return s.commit(ctx, change{
		verb:   activity.VerbPersonSwapped,
		dates:  []DateKey{dateA, dateB},
		roles:  []string{role},
		person: personA,
		meta:   map[string]any{"with": personB},
	})
}

// SubstitutePerson hands person's slot on date/role to substitute, keeping
// the position in the cell.
func (s *Session) SubstitutePerson(ctx context.Context, date DateKey, role, person, substitute string) error {
	s.mu.Lock()
	defer s.unlock()
	substitute, err := ValidatePerson(substitute)
	if err != nil {
		return err
	}
	person = strings.TrimSpace(person)
	index, err := s.assignedCell(date, role, person)
	if err != nil {
		return err
	}
	row := &s.rows[index]
	if indexOf(row.Cells[role], substitute) >= 0 {
		return fmt.Errorf("%w: %s is already on %s %s", ErrDuplicateAssignment, substitute, date, role)
	}

	row.Cells[role] = replaceString(row.Cells[role], person, substitute)
	s.people[substitute] = struct{}{}
	s.colors.Color(substitute)
	if err := s.apply(ctx, s.store, "person.substitute", []write{s.rowWrite(*row)}); err != nil {
		return err
	}
	return s.commit(ctx, change{
		verb:   activity.VerbPersonSubstituted,
		dates:  []DateKey{date},
		roles:  []string{role},
		person: person,
		meta:   map[string]any{"substitute": substitute},
	})
}

func (s *Session) peopleRole(role string) error {
	if indexOf(s.roles, role) < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if s.info[role] {
		return fmt.Errorf("%w: %q", ErrInfoColumn, role)
	}
	return nil
}

// assignedCell resolves date/role to a row index and checks person is in the
// cell.
func (s *Session) assignedCell(date DateKey, role, person string) (int, error) {
	index, err := s.lookupCell(date, role)
	if err != nil {
		return -1, err
	}
	if s.info[role] {
		return -1, fmt.Errorf("%w: %q", ErrInfoColumn, role)
	}
	if indexOf(s.rows[index].Cells[role], person) < 0 {
		return -1, fmt.Errorf("%w: %s is not on %s %s", ErrPersonNotAssigned, person, date, role)
	}
	return index, nil
}

func replaceString(items []string, old, replacement string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		if item == old {
			item = replacement
		}
		out[i] = item
	}
	return out
}
