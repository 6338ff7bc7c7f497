package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/kconsole/internal/table"
	"github.com/imamik/kconsole/internal/ui/listview"
)

// ListOptions are the flags of the list command.
type ListOptions struct {
	Watch      bool
	SortBy     string
	Descending bool
}

// List handles the list command.
//
// Without --watch, or when stdout is not a terminal, the table is printed
// once at the terminal's width. With --watch an interactive view follows a
// live subscription until the user quits.
func List(ctx context.Context, opts Options, kind string, o ListOptions) error {
	def, err := definition(kind)
	if err != nil {
		return err
	}
	if o.SortBy != "" {
		col, ok := def.Column(o.SortBy)
		if !ok {
			return fmt.Errorf("%s has no column %q", def.Kind, o.SortBy)
		}
		if !col.Sortable() {
			return fmt.Errorf("column %q is not sortable", col.Title)
		}
	}
	e, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	ns := e.client.Namespace()
	sort := listview.Sort{Column: o.SortBy, Descending: o.Descending}

	if o.Watch && isInteractive() {
		sub, err := e.client.Subscribe(ctx, ns, def.Resource)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", def.Plural, err)
		}
		defer sub.Stop()
		m := listview.New(def, sub,
			listview.WithNamespace(ns),
			listview.WithSort(sort),
			listview.WithWidth(terminalWidth()))
		return runLive(ctx, m)
	}

	objs, err := e.client.List(ctx, def.Resource, ns)
	if err != nil {
		return err
	}
	if len(objs) == 0 {
		fmt.Fprintln(stdout, listview.Empty(def, ns))
		return nil
	}
	out, err := listview.Table(def, objs, terminalWidth(), sort)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, out)
	return nil
}

// Get handles the get command: it renders one detail tab of an object.
// An empty tab selects the first tab of the kind.
func Get(ctx context.Context, opts Options, kind, name, tab string) error {
	def, err := definition(kind)
	if err != nil {
		return err
	}
	if tab == "" && len(def.Tabs) > 0 {
		tab = def.Tabs[0].Name
	}
	if _, ok := def.Tab(tab); !ok {
		return fmt.Errorf("%s has no tab %q (available: %v)", def.Kind, tab, def.TabNames())
	}
	e, err := setup(ctx, opts)
	if err != nil {
		return err
	}

	obj, err := e.client.Get(ctx, def.Resource, e.client.Namespace(), name)
	if err != nil {
		return err
	}
	content, err := def.RenderTab(ctx, tab, e.client, obj)
	if err != nil {
		return fmt.Errorf("failed to render %s tab: %w", tab, err)
	}
	fmt.Fprint(stdout, listview.Detail(def, obj, tab, content))
	return nil
}

// Kinds lists the resource kinds known to list and get, for completion.
func Kinds() []string {
	var out []string
	for _, d := range table.Definitions() {
		out = append(out, d.Plural)
	}
	return out
}

// TabNames lists the detail tabs of kind, registered ones included. It
// returns nothing for unknown kinds.
func TabNames(kind string) []string {
	def, err := definition(kind)
	if err != nil {
		return nil
	}
	return def.TabNames()
}
