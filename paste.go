package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-roster/pkg/activity"
)

// ImportMode selects how pasted text is split into rows.
type ImportMode int

const (
	// ImportAnchored keeps blank lines between data lines; a blank line
	// clears the anchor role of its row.
	ImportAnchored ImportMode = iota
	// ImportTopLevel drops every blank line and skips a leading date cell.
	ImportTopLevel
)

func (m ImportMode) String() string {
	switch m {
	case ImportAnchored:
		return "anchored"
	case ImportTopLevel:
		return "top-level"
	default:
		return fmt.Sprintf("ImportMode(%d)", int(m))
	}
}

// ImportOptions places pasted text on the roster. Row and Role are indexes of
// the anchor cell.
type ImportOptions struct {
	Mode ImportMode
	Row  int
	Role int
}

// ImportResult summarizes an import.
type ImportResult struct {
	Rows   int
	Cells  int
	Dates  []DateKey
	People []string
}

// ParseImport splits text into rows of tab-separated cells. Trailing blank
// lines are always dropped. In top-level mode every blank line is dropped and
// a first cell holding a date is removed.
func ParseImport(text string, mode ImportMode) [][]string {
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	out := make([][]string, 0, len(lines))
	for _, line := range lines {
		if mode == ImportTopLevel && strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		if mode == ImportTopLevel && len(cells) > 0 {
			if _, err := ParseDateKey(cells[0]); err == nil {
				cells = cells[1:]
			}
		}
		out = append(out, cells)
	}
	return out
}

// SplitPeople turns one cell into a person list: split on "/", trim, drop
// empty segments and repeats.
func SplitPeople(cell string) []string {
	out := []string{}
	for _, segment := range strings.Split(cell, "/") {
		segment = strings.TrimSpace(segment)
		if segment == "" || indexOf(out, segment) >= 0 {
			continue
		}
		out = append(out, segment)
	}
	return out
}

// PreviewImport returns how many lines an import of text would apply.
func PreviewImport(text string, mode ImportMode) int {
	return len(ParseImport(text, mode))
}

// Import replaces cells starting at the anchor with the pasted values. Lines
// past the last row and cells past the last role are ignored; no rows are
// created. The whole import is one undo step.
func (s *Session) Import(ctx context.Context, text string, opts ImportOptions) (ImportResult, error) {
	s.mu.Lock()
	defer s.unlock()
	if opts.Row < 0 || opts.Row >= len(s.rows) {
		return ImportResult{}, fmt.Errorf("%w: anchor row %d of %d", ErrIndexOutOfRange, opts.Row, len(s.rows))
	}
	if opts.Role < 0 || opts.Role >= len(s.roles) {
		return ImportResult{}, fmt.Errorf("%w: anchor role %d of %d", ErrIndexOutOfRange, opts.Role, len(s.roles))
	}

	lines := ParseImport(text, opts.Mode)
	if len(lines) == 0 {
		return ImportResult{}, nil
	}

	result := ImportResult{}
	seen := map[string]bool{}
	var writes []write
	for i, cells := range lines {
		index := opts.Row + i
		if index >= len(s.rows) {
			break
		}
		row := &s.rows[index]
		for j, cell := range cells {
			roleIndex := opts.Role + j
			if roleIndex >= len(s.roles) {
				break
			}
			role := s.roles[roleIndex]
			people := SplitPeople(cell)
			row.Cells[role] = people
			result.Cells++
			if s.info[role] {
				continue
			}
			for _, person := range people {
				s.people[person] = struct{}{}
				if !seen[person] {
					seen[person] = true
					result.People = append(result.People, person)
				}
			}
		}
		result.Rows++
		result.Dates = append(result.Dates, row.Date)
		writes = append(writes, s.rowWrite(*row))
	}

	// Past-only people and names colored through Color keep a slot.
	s.colors.Rebuild(append(s.personNames(), s.colors.Names()...))
	if err := s.apply(ctx, s.store, "import", writes); err != nil {
		return result, err
	}
	return result, s.commit(ctx, change{
		verb:  activity.VerbImported,
		dates: result.Dates,
		meta: map[string]any{
			"mode":  opts.Mode.String(),
			"cells": result.Cells,
		},
	})
}
