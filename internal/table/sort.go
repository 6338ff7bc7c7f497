package table

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Comparator orders two objects; it returns a negative number when a sorts
// before b.
type Comparator func(a, b *unstructured.Unstructured) int

var comparators = map[string]Comparator{
	"daemonsetNumScheduled": daemonsetNumScheduled,
}

// Comparators returns the names of the registered comparators.
func Comparators() []string {
	names := make([]string, 0, len(comparators))
	for n := range comparators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ComparatorFor returns the comparator registered under name.
func ComparatorFor(name string) (Comparator, bool) {
	c, ok := comparators[name]
	return c, ok
}

// Sort orders objs by col. The sort is stable, so equal rows keep their
// list order.
func Sort(objs []*unstructured.Unstructured, col Column, descending bool) error {
	var compare Comparator
	switch {
	case col.SortFunc != "":
		c, ok := comparators[col.SortFunc]
		if !ok {
			return fmt.Errorf("unknown sort function %q", col.SortFunc)
		}
		compare = c
	case col.SortField != "":
		path := splitPath(col.SortField)
		compare = func(a, b *unstructured.Unstructured) int {
			return strings.Compare(fieldString(a, path), fieldString(b, path))
		}
	default:
		return fmt.Errorf("column %q is not sortable", col.Title)
	}
	slices.SortStableFunc(objs, func(a, b *unstructured.Unstructured) int {
		if descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return nil
}

// FieldString renders the value at a dotted path for display and sorting.
func FieldString(obj *unstructured.Unstructured, path string) string {
	return fieldString(obj, splitPath(path))
}

// splitPath splits a dotted path; "\." escapes a dot inside a key such as
// a label name.
func splitPath(path string) []string {
	var out []string
	var cur strings.Builder
	for i := 0; i < len(path); i++ {
		switch {
		case path[i] == '\\' && i+1 < len(path) && path[i+1] == '.':
			cur.WriteByte('.')
			i++
		case path[i] == '.':
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(path[i])
		}
	}
	return append(out, cur.String())
}

func fieldString(obj *unstructured.Unstructured, path []string) string {
	v, found, err := unstructured.NestedFieldNoCopy(obj.Object, path...)
	if err != nil || !found || v == nil {
		return ""
	}
	return render(v)
}

// render prints maps as sorted k=v lists so that label maps compare
// deterministically.
func render(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if nested, ok := t[k].(map[string]any); ok {
				parts = append(parts, k+"={"+render(nested)+"}")
				continue
			}
			parts = append(parts, k+"="+render(t[k]))
		}
		return strings.Join(parts, ",")
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, render(e))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

func nestedInt(obj *unstructured.Unstructured, path ...string) int64 {
	v, found, err := unstructured.NestedFieldNoCopy(obj.Object, path...)
	if err != nil || !found {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// daemonsetNumScheduled orders daemon sets by scheduled pods, then by
// desired pods.
func daemonsetNumScheduled(a, b *unstructured.Unstructured) int {
	if c := cmp.Compare(nestedInt(a, "status", "currentNumberScheduled"), nestedInt(b, "status", "currentNumberScheduled")); c != 0 {
		return c
	}
	return cmp.Compare(nestedInt(a, "status", "desiredNumberScheduled"), nestedInt(b, "status", "desiredNumberScheduled"))
}
