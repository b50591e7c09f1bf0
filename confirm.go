package roster

import "fmt"

// Confirmation tells the caller whether to ask the operator before running a
// destructive operation, and what to warn them about.
type Confirmation struct {
	Required bool
	Risk     string
}

// CheckShiftDates validates a date shift and asks for confirmation when the
// new date is not a Sunday.
func (s *Session) CheckShiftDates(index int, newDate string) (Confirmation, error) {
	s.mu.Lock()
	defer s.unlock()
	if index < 0 || index >= len(s.rows) {
		return Confirmation{}, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, index, len(s.rows))
	}
	target, err := ParseDateKey(newDate)
	if err != nil {
		return Confirmation{}, err
	}
	delta := DaysBetween(s.rows[index].Date, target)
	if delta == 0 || target.IsSunday() {
		return Confirmation{}, nil
	}
	return Confirmation{
		Required: true,
		Risk: fmt.Sprintf("%s is a %s, not a Sunday; all %d rows move by %d days",
			target, target.Time().Weekday(), len(s.rows), delta),
	}, nil
}

// CheckDeleteRole always asks: deleting a role drops its cell in every row.
func (s *Session) CheckDeleteRole(name string) (Confirmation, error) {
	s.mu.Lock()
	defer s.unlock()
	if indexOf(s.roles, name) < 0 {
		return Confirmation{}, fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
	assigned := 0
	for _, row := range s.rows {
		assigned += len(row.Cells[name])
	}
	return Confirmation{
		Required: true,
		Risk:     fmt.Sprintf("deleting %q removes it from %d rows (%d assignments)", name, len(s.rows), assigned),
	}, nil
}

// CheckRemoveLastRow always asks before dropping the last week.
func (s *Session) CheckRemoveLastRow() (Confirmation, error) {
	s.mu.Lock()
	defer s.unlock()
	if len(s.rows) == 0 {
		return Confirmation{}, ErrEmptyRoster
	}
	return Confirmation{
		Required: true,
		Risk:     fmt.Sprintf("removing the week of %s and its assignments", s.rows[len(s.rows)-1].Date),
	}, nil
}

// CheckImport reports how many lines an import would replace.
func (s *Session) CheckImport(text string, mode ImportMode) Confirmation {
	lines := PreviewImport(text, mode)
	if lines == 0 {
		return Confirmation{}
	}
	return Confirmation{
		Required: true,
		Risk:     fmt.Sprintf("importing %d lines replaces the cells they cover", lines),
	}
}
