package table

import (
	"strconv"
	"strings"
)

// Breakpoint is a responsive width class.
type Breakpoint int

// Breakpoints from narrowest to widest.
const (
	XS Breakpoint = iota
	SM
	MD
	LG
)

var breakpointNames = []string{"xs", "sm", "md", "lg"}

func (b Breakpoint) String() string {
	if b < XS || b > LG {
		return "unknown"
	}
	return breakpointNames[b]
}

// ParseBreakpoint parses "xs", "sm", "md" or "lg".
func ParseBreakpoint(s string) (Breakpoint, bool) {
	for i, n := range breakpointNames {
		if n == s {
			return Breakpoint(i), true
		}
	}
	return XS, false
}

// BreakpointForWidth maps a terminal width in cells to a breakpoint.
func BreakpointForWidth(width int) Breakpoint {
	switch {
	case width < 60:
		return XS
	case width < 100:
		return SM
	case width < 140:
		return MD
	default:
		return LG
	}
}

// Column describes one table column. Classes follow the grid convention
// "col-{bp}-{span}" and "hidden-{bp}".
type Column struct {
	Title string
	// SortField is a dotted object path compared lexicographically.
	SortField string
	// SortFunc names a comparator from Comparators; it wins over SortField.
	SortFunc string
	Classes  []string
}

// Sortable reports whether the column can be sorted.
func (c Column) Sortable() bool {
	return c.SortField != "" || c.SortFunc != ""
}

// VisibleAt reports whether the column is shown at bp.
func (c Column) VisibleAt(bp Breakpoint) bool {
	for _, cls := range c.Classes {
		if cls == "hidden-"+bp.String() {
			return false
		}
	}
	return true
}

// Span returns the grid span (1-12) of the column at bp. A span declared
// for a narrower breakpoint carries over to wider ones; no span at all
// means 12.
func (c Column) Span(bp Breakpoint) int {
	for b := bp; b >= XS; b-- {
		prefix := "col-" + b.String() + "-"
		for _, cls := range c.Classes {
			if n, ok := strings.CutPrefix(cls, prefix); ok {
				if span, err := strconv.Atoi(n); err == nil && span > 0 && span <= 12 {
					return span
				}
			}
		}
	}
	return 12
}
