package roster

import "sort"

// Palette is the fixed set of person colors, allocated in this order.
var Palette = [30]string{
	"#E74C3C", "#3498DB", "#2ECC71", "#9B59B6", "#F39C12", "#1ABC9C",
	"#E91E63", "#00BCD4", "#8BC34A", "#FF5722", "#673AB7", "#009688",
	"#CDDC39", "#795548", "#607D8B", "#FF9800", "#4CAF50", "#2196F3",
	"#F44336", "#9C27B0", "#00ACC1", "#7CB342", "#C0392B", "#D35400",
	"#16A085", "#8E44AD", "#27AE60", "#2980B9", "#F1C40F", "#34495E",
}

// ColorMap assigns each person a stable palette color by first-seen order.
// It is not safe for concurrent use; the session serializes access.
type ColorMap struct {
	assigned map[string]string
}

func NewColorMap() *ColorMap {
	return &ColorMap{assigned: map[string]string{}}
}

// Color returns name's color, allocating the next palette slot on first use.
func (c *ColorMap) Color(name string) string {
	if color, ok := c.assigned[name]; ok {
		return color
	}
	color := Palette[len(c.assigned)%len(Palette)]
	c.assigned[name] = color
	return color
}

// Rebuild discards every assignment and allocates again in sorted name order.
func (c *ColorMap) Rebuild(names []string) {
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	c.assigned = make(map[string]string, len(sorted))
	for _, name := range sorted {
		c.Color(name)
	}
}

// Names returns every name holding a color, sorted.
func (c *ColorMap) Names() []string {
	names := make([]string, 0, len(c.assigned))
	for name := range c.assigned {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Colors returns a copy of the current assignments.
func (c *ColorMap) Colors() map[string]string {
	out := make(map[string]string, len(c.assigned))
	for name, color := range c.assigned {
		out[name] = color
	}
	return out
}
