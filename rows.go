package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-roster/pkg/activity"
)

// ValidatePerson trims name and rejects empty names and names holding the
// import separators (tab, newline, slash).
func ValidatePerson(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty person", ErrInvalidName)
	}
	if strings.ContainsAny(name, "\t\n\r/") {
		return "", fmt.Errorf("%w: %q contains a separator", ErrInvalidName, name)
	}
	return name, nil
}

// AssignPerson appends person to the end of the date/role cell.
func (s *Session) AssignPerson(ctx context.Context, date DateKey, role, person string) error {
	s.mu.Lock()
	defer s.unlock()
	return s.assign(ctx, date, role, person)
}

func (s *Session) assign(ctx context.Context, date DateKey, role, person string) error {
	person, err := ValidatePerson(person)
	if err != nil {
		return err
	}
	index, err := s.lookupCell(date, role)
	if err != nil {
		return err
	}
	row := &s.rows[index]
	if indexOf(row.Cells[role], person) >= 0 {
		return fmt.Errorf("%w: %s is already on %s %s", ErrDuplicateAssignment, person, date, role)
	}

	row.Cells[role] = append(row.Cells[role], person)
	if !s.info[role] {
		s.people[person] = struct{}{}
		s.colors.Color(person)
	}
	if err := s.apply(ctx, s.store, "person.assign", []write{s.rowWrite(*row)}); err != nil {
		return err
	}
	return s.commit(ctx, change{
		verb:   activity.VerbPersonAssigned,
		dates:  []DateKey{date},
		roles:  []string{role},
		person: person,
	})
}

// RemovePerson drops person from the date/role cell. Removing someone who is
// not there is a no-op.
func (s *Session) RemovePerson(ctx context.Context, date DateKey, role, person string) error {
	s.mu.Lock()
	defer s.unlock()
	_, err := s.remove(ctx, date, role, person)
	return err
}

func (s *Session) remove(ctx context.Context, date DateKey, role, person string) (bool, error) {
	person = strings.TrimSpace(person)
	index, err := s.lookupCell(date, role)
	if err != nil {
		return false, err
	}
	row := &s.rows[index]
	at := indexOf(row.Cells[role], person)
	if at < 0 {
		return false, nil
	}

	people := row.Cells[role]
	row.Cells[role] = append(append([]string{}, people[:at]...), people[at+1:]...)
	if err := s.apply(ctx, s.store, "person.remove", []write{s.rowWrite(*row)}); err != nil {
		return true, err
	}
	return true, s.commit(ctx, change{
		verb:   activity.VerbPersonRemoved,
		dates:  []DateKey{date},
		roles:  []string{role},
		person: person,
	})
}

// MovePerson removes person from one cell and assigns them to another. The
// two steps commit separately: when the destination already holds person the
// removal stays and ErrDuplicateAssignment is returned.
func (s *Session) MovePerson(ctx context.Context, fromDate DateKey, fromRole string, toDate DateKey, toRole, person string) error {
	s.mu.Lock()
	defer s.unlock()
	if fromDate == toDate && fromRole == toRole {
		return nil
	}
	if _, err := s.lookupCell(toDate, toRole); err != nil {
		return err
	}
	removed, err := s.remove(ctx, fromDate, fromRole, person)
	if err != nil && !isAuditFailure(err) {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s is not on %s %s", ErrPersonNotAssigned, strings.TrimSpace(person), fromDate, fromRole)
	}
	return errors.Join(err, s.assign(ctx, toDate, toRole, person))
}

// AddRow appends an empty row seven days after the last one.
func (s *Session) AddRow(ctx context.Context) (DateKey, error) {
	s.mu.Lock()
	defer s.unlock()
	if len(s.rows) == 0 {
		return "", ErrNoBaselineRow
	}
	if len(s.rows)+1 > s.cfg.maxFutureRows {
		return "", fmt.Errorf("%w: at most %d rows", ErrCapacityExceeded, s.cfg.maxFutureRows)
	}

	row := s.emptyRow(s.rows[len(s.rows)-1].Date.AddDays(7))
	s.rows = append(s.rows, row)
	if err := s.apply(ctx, s.store, "row.add", []write{s.rowWrite(row)}); err != nil {
		return row.Date, err
	}
	return row.Date, s.commit(ctx, change{
		verb:  activity.VerbRowAdded,
		dates: []DateKey{row.Date},
	})
}

// RemoveLastRow deletes the last row. When the delete fails the row is put
// back so the session keeps matching the store.
func (s *Session) RemoveLastRow(ctx context.Context) (DateKey, error) {
	s.mu.Lock()
	defer s.unlock()
	if len(s.rows) == 0 {
		return "", ErrEmptyRoster
	}

	last := s.rows[len(s.rows)-1]
	s.rows = s.rows[:len(s.rows)-1]
	if err := s.apply(ctx, s.store, "row.remove", []write{deleteWrite(last.Date.String())}); err != nil {
		s.rows = append(s.rows, last)
		return last.Date, err
	}
	return last.Date, s.commit(ctx, change{
		verb:  activity.VerbRowRemoved,
		dates: []DateKey{last.Date},
	})
}

// ShiftAllDates moves the row at index to newDate and every other row by the
// same number of days. All rows are written under their new keys and the old
// keys deleted concurrently; the call waits for every write.
func (s *Session) ShiftAllDates(ctx context.Context, index int, newDate string) error {
	s.mu.Lock()
	defer s.unlock()
	if index < 0 || index >= len(s.rows) {
		return fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, index, len(s.rows))
	}
	target, err := ParseDateKey(newDate)
	if err != nil {
		return err
	}
	delta := DaysBetween(s.rows[index].Date, target)
	if delta == 0 {
		return nil
	}

	before := make([]DateKey, len(s.rows))
	renamed := make(map[DateKey]bool, len(s.rows))
	for i := range s.rows {
		before[i] = s.rows[i].Date
		s.rows[i].Date = s.rows[i].Date.AddDays(delta)
		renamed[s.rows[i].Date] = true
	}
	sortRows(s.rows)

	writes := s.rowWrites()
	for _, old := range before {
		if !renamed[old] {
			writes = append(writes, deleteWrite(old.String()))
		}
	}
	if err := s.apply(ctx, s.store, "dates.shift", writes); err != nil {
		return err
	}

	dates := make([]DateKey, 0, len(s.rows))
	for _, row := range s.rows {
		dates = append(dates, row.Date)
	}
	return s.commit(ctx, change{
		verb:  activity.VerbDatesShifted,
		dates: dates,
		meta:  map[string]any{"days": delta},
	})
}
