package table

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/duration"
	"sigs.k8s.io/yaml"
)

// now is replaced in tests.
var now = time.Now

// yamlTab prints the object without its managed fields.
func yamlTab(_ context.Context, _ Lookup, obj *unstructured.Unstructured) (string, error) {
	clean := obj.DeepCopy()
	unstructured.RemoveNestedField(clean.Object, "metadata", "managedFields")
	data, err := yaml.Marshal(clean.Object)
	if err != nil {
		return "", fmt.Errorf("failed to render YAML: %w", err)
	}
	return string(data), nil
}

// eventsTab lists the events whose involved object is obj, newest first.
func eventsTab(ctx context.Context, lookup Lookup, obj *unstructured.Unstructured) (string, error) {
	if lookup == nil {
		return "", errNoLookup
	}
	events, err := lookup.Events(ctx, obj.GetNamespace(), obj.GetKind(), obj.GetName())
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "No events\n", nil
	}
	slices.SortStableFunc(events, func(a, b corev1.Event) int {
		return eventTime(b).Compare(eventTime(a))
	})
	return tabulate([]string{"LAST SEEN", "TYPE", "REASON", "MESSAGE"}, func(add func(...string)) {
		for _, e := range events {
			add(age(eventTime(e)), e.Type, e.Reason, strings.TrimSpace(e.Message))
		}
	})
}

func eventTime(e corev1.Event) time.Time {
	switch {
	case !e.LastTimestamp.IsZero():
		return e.LastTimestamp.Time
	case !e.EventTime.IsZero():
		return e.EventTime.Time
	default:
		return e.CreationTimestamp.Time
	}
}

func age(t time.Time) string {
	if t.IsZero() {
		return "<unknown>"
	}
	return duration.HumanDuration(now().Sub(t))
}

// tabulate renders aligned plain-text columns.
func tabulate(header []string, rows func(add func(...string))) (string, error) {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	rows(func(cells ...string) {
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	})
	if err := w.Flush(); err != nil {
		return "", err
	}
	return b.String(), nil
}
