package roster

import "sort"

// Row is one dated week: role name to the ordered people serving it.
type Row struct {
	Date  DateKey
	Cells map[string][]string
}

// People returns a copy of the people assigned to role.
func (r Row) People(role string) []string {
	return append([]string{}, r.Cells[role]...)
}

// Clone returns a deep copy of r.
func (r Row) Clone() Row {
	cells := make(map[string][]string, len(r.Cells))
	for role, people := range r.Cells {
		cells[role] = append([]string{}, people...)
	}
	return Row{Date: r.Date, Cells: cells}
}

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
}

// Snapshot is an immutable copy of the roster rows and role list, used by
// history and as the pinned audit original.
type Snapshot struct {
	Rows        []Row
	Roles       []string
	InfoColumns []string
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Rows:        cloneRows(s.Rows),
		Roles:       append([]string{}, s.Roles...),
		InfoColumns: append([]string{}, s.InfoColumns...),
	}
}

// Row returns the row dated date.
func (s Snapshot) Row(date DateKey) (Row, bool) {
	for _, row := range s.Rows {
		if row.Date == date {
			return row, true
		}
	}
	return Row{}, false
}

// Diff maps date to role to the current people, restricted to cells that
// differ from the pinned original.
type Diff map[DateKey]map[string][]string

// Clone returns a deep copy of d.
func (d Diff) Clone() Diff {
	out := make(Diff, len(d))
	for date, cells := range d {
		copied := make(map[string][]string, len(cells))
		for role, people := range cells {
			copied[role] = append([]string{}, people...)
		}
		out[date] = copied
	}
	return out
}

// Cells counts the differing cells.
func (d Diff) Cells() int {
	total := 0
	for _, cells := range d {
		total += len(cells)
	}
	return total
}

// Dates returns the dates with differences in ascending order.
func (d Diff) Dates() []DateKey {
	dates := make([]DateKey, 0, len(d))
	for date := range d {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// AuditRecord is the per-session edit log document.
type AuditRecord struct {
	SourceID         string                         `json:"sourceId"`
	OriginalSnapshot map[string]map[string][]string `json:"originalSnapshot"`
	Difference       map[string]map[string][]string `json:"difference"`
	LastEditedTime   string                         `json:"lastEditedTime"`
}

func equalPeople(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func indexOf(items []string, target string) int {
	for i, item := range items {
		if item == target {
			return i
		}
	}
	return -1
}

func removeString(items []string, target string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item != target {
			out = append(out, item)
		}
	}
	return out
}
