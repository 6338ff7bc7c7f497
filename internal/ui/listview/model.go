package listview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/imamik/kconsole/internal/k8s"
	"github.com/imamik/kconsole/internal/table"
)

// Source is a live collection, such as a k8s.Subscription.
type Source interface {
	Collection(gvr schema.GroupVersionResource) k8s.Collection
	Changes() <-chan struct{}
}

// CollectionMsg carries the latest content of the watched resource.
type CollectionMsg struct {
	Collection k8s.Collection
	At         time.Time
}

// TickMsg advances the loading spinner.
type TickMsg struct{}

// Model is the Bubble Tea model of a live list.
type Model struct {
	def       table.Definition
	src       Source
	namespace string
	sort      Sort
	now       func() time.Time

	items   []*unstructured.Unstructured
	loaded  bool
	err     error
	updated time.Time

	frame int
	width int
}

// Option configures a Model.
type Option func(*Model)

// WithNamespace names the namespace shown in the title.
func WithNamespace(ns string) Option {
	return func(m *Model) {
		m.namespace = ns
	}
}

// WithSort sets the initial sort column.
func WithSort(s Sort) Option {
	return func(m *Model) {
		m.sort = s
	}
}

// WithWidth sets the width used before the first window size message.
func WithWidth(w int) Option {
	return func(m *Model) {
		m.width = w
	}
}

// New creates a live list of def's resource fed by src.
func New(def table.Definition, src Source, opts ...Option) Model {
	m := Model{def: def, src: src, width: DefaultWidth, now: time.Now}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Items returns the objects currently shown.
func (m Model) Items() []*unstructured.Unstructured {
	return m.items
}

// Sorting returns the current sort.
func (m Model) Sorting() Sort {
	return m.sort
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), tickCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.sort.Column = m.nextSortable()
		case "r":
			m.sort.Descending = !m.sort.Descending
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case CollectionMsg:
		m.items = msg.Collection.Items
		m.loaded = msg.Collection.Loaded
		m.err = msg.Collection.Err
		m.updated = msg.At
		return m, m.waitForChange()

	case TickMsg:
		m.frame++
		if m.loaded {
			return m, tea.Tick(time.Second, func(time.Time) tea.Msg { return TickMsg{} })
		}
		return m, tickCmd()
	}
	return m, nil
}

// nextSortable cycles through the sortable columns, ending with "no sort".
func (m Model) nextSortable() string {
	var titles []string
	for _, c := range m.def.Columns {
		if c.Sortable() && c.VisibleAt(table.BreakpointForWidth(m.width)) {
			titles = append(titles, c.Title)
		}
	}
	if len(titles) == 0 {
		return ""
	}
	for i, t := range titles {
		if strings.EqualFold(t, m.sort.Column) {
			if i == len(titles)-1 {
				return ""
			}
			return titles[i+1]
		}
	}
	return titles[0]
}

func (m Model) load() tea.Cmd {
	src, gvr, now := m.src, m.def.Resource, m.now
	return func() tea.Msg {
		return CollectionMsg{Collection: src.Collection(gvr), At: now()}
	}
}

func (m Model) waitForChange() tea.Cmd {
	changes, load := m.src.Changes(), m.load()
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return tea.Quit()
		}
		return load()
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	title := m.def.Plural
	if m.namespace != "" {
		title += " in " + m.namespace
	}
	if m.loaded {
		title += fmt.Sprintf(" (%d)", len(m.items))
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(failedStyle.Render(crossMark + " " + m.err.Error()))
		b.WriteString("\n")
	case !m.loaded:
		b.WriteString(dimStyle.Render(currentSpinner(m.frame) + " Loading..."))
		b.WriteString("\n")
	}

	if m.loaded {
		if len(m.items) == 0 {
			b.WriteString(Empty(m.def, m.namespace))
			b.WriteString("\n")
		} else {
			out, err := Table(m.def, m.items, m.width, m.sort)
			if err != nil {
				out = failedStyle.Render(crossMark + " " + err.Error())
			}
			b.WriteString(out)
			b.WriteString("\n")
		}
	}

	parts := []string{"q: quit", "s: sort", "r: reverse"}
	if !m.updated.IsZero() && m.loaded {
		parts = append([]string{readyStyle.Render("live") + dimStyle.Render(", updated "+formatDuration(m.now().Sub(m.updated))+" ago")}, parts...)
	}
	b.WriteString(footerStyle.Render(strings.Join(parts, "  |  ")))
	b.WriteString("\n")
	return b.String()
}

// Run shows the live list until the user quits or ctx is done.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
