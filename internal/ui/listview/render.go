package listview

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/imamik/kconsole/internal/table"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 120

// TerminalWidth returns the width of f in cells, or DefaultWidth.
func TerminalWidth(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return DefaultWidth
}

// Sort selects the column a list is ordered by. The zero value keeps list
// order.
type Sort struct {
	Column     string
	Descending bool
}

// Table renders objs as a bordered table for a terminal width. Columns
// hidden at the width's breakpoint are dropped and the rest share the width
// by their grid span.
func Table(def table.Definition, objs []*unstructured.Unstructured, width int, sort Sort) (string, error) {
	bp := table.BreakpointForWidth(width)
	objs = slices.Clone(objs)
	if sort.Column != "" {
		col, ok := def.Column(sort.Column)
		if !ok {
			return "", fmt.Errorf("%s has no column %q", def.Kind, sort.Column)
		}
		if err := table.Sort(objs, col, sort.Descending); err != nil {
			return "", err
		}
	}

	var cols []table.Column
	for _, c := range def.Columns {
		if c.VisibleAt(bp) {
			cols = append(cols, c)
		}
	}
	header := def.Header(bp)
	for i, c := range cols {
		if sort.Column != "" && strings.EqualFold(c.Title, sort.Column) {
			arrow := ascending
			if sort.Descending {
				arrow = descending
			}
			header[i] += " " + arrow
		}
	}
	widths := columnWidths(cols, bp, width)

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderRow(false).
		Headers(header...).
		Rows(def.Rows(objs, bp)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			if row == ltable.HeaderRow {
				style = headerStyle
			}
			if col < len(widths) {
				style = style.Width(widths[col])
			}
			return style.Padding(0, 1)
		})
	return t.Render(), nil
}

// columnWidths splits width between cols proportionally to their span,
// leaving room for the borders.
func columnWidths(cols []table.Column, bp table.Breakpoint, width int) []int {
	if len(cols) == 0 {
		return nil
	}
	usable := width - len(cols) - 1
	total := 0
	for _, c := range cols {
		total += c.Span(bp)
	}
	out := make([]int, len(cols))
	for i, c := range cols {
		w := usable * c.Span(bp) / total
		if w < 4 {
			w = 4
		}
		out[i] = w
	}
	return out
}

// Empty renders the message shown for a loaded, empty list.
func Empty(def table.Definition, namespace string) string {
	if namespace == "" {
		return dimStyle.Render(fmt.Sprintf("No %s found", def.Plural))
	}
	return dimStyle.Render(fmt.Sprintf("No %s found in %s", def.Plural, namespace))
}

// Detail renders the heading of an object's detail page with its tab bar,
// followed by the content of the active tab.
func Detail(def table.Definition, obj *unstructured.Unstructured, active, content string) string {
	var b strings.Builder
	title := fmt.Sprintf("%s %s", def.Kind, obj.GetName())
	b.WriteString(titleStyle.Render(title))
	if ns := obj.GetNamespace(); ns != "" {
		b.WriteString(dimStyle.Render("  " + ns))
	}
	b.WriteString("\n")

	tabs := make([]string, 0, len(def.Tabs))
	for _, t := range def.Tabs {
		if t.Name == active {
			tabs = append(tabs, activeTabStyle.Render(t.Title))
		} else {
			tabs = append(tabs, dimStyle.Render(t.Title))
		}
	}
	b.WriteString(strings.Join(tabs, dimStyle.Render(" | ")))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimRight(content, "\n"))
	b.WriteString("\n")
	return b.String()
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

func currentSpinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}
