package table

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/imamik/kconsole/internal/registry"
)

// Standard tab names.
const (
	TabDetails     = "details"
	TabYAML        = "yaml"
	TabPods        = "pods"
	TabEnvironment = "environment"
	TabEvents      = "events"
)

// Lookup resolves the related objects some detail tabs show.
type Lookup interface {
	Pods(ctx context.Context, namespace string, selector labels.Selector) ([]corev1.Pod, error)
	Events(ctx context.Context, namespace, kind, name string) ([]corev1.Event, error)
}

// RowFunc maps one object to the cells of every column, in column order.
type RowFunc func(obj *unstructured.Unstructured) []string

// TabFunc renders a detail tab.
type TabFunc func(ctx context.Context, lookup Lookup, obj *unstructured.Unstructured) (string, error)

// Tab is one detail view of an object.
type Tab struct {
	Name   string
	Title  string
	Render TabFunc
}

// Definition is the list and detail configuration of one resource kind.
type Definition struct {
	Kind     string
	Plural   string
	Aliases  []string
	Resource schema.GroupVersionResource
	Columns  []Column
	Row      RowFunc
	Tabs     []Tab
}

// Header returns the titles of the columns visible at bp.
func (d Definition) Header(bp Breakpoint) []string {
	var out []string
	for _, c := range d.Columns {
		if c.VisibleAt(bp) {
			out = append(out, c.Title)
		}
	}
	return out
}

// Rows renders objs, keeping only the cells of columns visible at bp.
func (d Definition) Rows(objs []*unstructured.Unstructured, bp Breakpoint) [][]string {
	rows := make([][]string, 0, len(objs))
	for _, obj := range objs {
		cells := d.Row(obj)
		row := make([]string, 0, len(cells))
		for i, c := range d.Columns {
			if !c.VisibleAt(bp) {
				continue
			}
			if i < len(cells) {
				row = append(row, cells[i])
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Column returns the column titled title, case-insensitively.
func (d Definition) Column(title string) (Column, bool) {
	for _, c := range d.Columns {
		if strings.EqualFold(c.Title, title) {
			return c, true
		}
	}
	return Column{}, false
}

// Tab returns the tab called name.
func (d Definition) Tab(name string) (Tab, bool) {
	for _, t := range d.Tabs {
		if t.Name == name {
			return t, true
		}
	}
	return Tab{}, false
}

// TabNames lists the tabs in display order.
func (d Definition) TabNames() []string {
	names := make([]string, 0, len(d.Tabs))
	for _, t := range d.Tabs {
		names = append(names, t.Name)
	}
	return names
}

// RenderTab renders the tab called name.
func (d Definition) RenderTab(ctx context.Context, name string, lookup Lookup, obj *unstructured.Unstructured) (string, error) {
	tab, ok := d.Tab(name)
	if !ok {
		return "", fmt.Errorf("%s has no tab %q (available: %s)", d.Kind, name, strings.Join(d.TabNames(), ", "))
	}
	return tab.Render(ctx, lookup, obj)
}

// WithProviders returns a copy of d whose tabs are extended with the
// providers registered for its kind. Built-in tabs win on name clashes.
func (d Definition) WithProviders(reg *registry.Registry) Definition {
	out := d
	out.Tabs = append([]Tab(nil), d.Tabs...)
	for _, p := range reg.ProvidersFor(d.Kind) {
		if _, exists := d.Tab(p.Key); exists {
			continue
		}
		render := p.Render
		out.Tabs = append(out.Tabs, Tab{
			Name:  p.Key,
			Title: p.Title,
			Render: func(ctx context.Context, _ Lookup, obj *unstructured.Unstructured) (string, error) {
				return render(ctx, obj)
			},
		})
	}
	return out
}

// Matches reports whether name refers to this kind: the kind itself, its
// plural or an alias, case-insensitively.
func (d Definition) Matches(name string) bool {
	if strings.EqualFold(name, d.Kind) || strings.EqualFold(name, d.Plural) {
		return true
	}
	for _, a := range d.Aliases {
		if strings.EqualFold(name, a) {
			return true
		}
	}
	return false
}
