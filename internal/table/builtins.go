package table

import (
	"context"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/imamik/kconsole/api/v1alpha1"
	"github.com/imamik/kconsole/internal/registry"
)

// Definitions returns every built-in definition.
func Definitions() []Definition {
	return []Definition{DaemonSets(), KnativeServices(), VirtualMachines()}
}

// Find returns the built-in definition that name refers to.
func Find(name string) (Definition, bool) {
	for _, d := range Definitions() {
		if d.Matches(name) {
			return d, true
		}
	}
	return Definition{}, false
}

// KnativeServices returns the definition of serving.knative.dev services,
// the service-like sink candidates.
func KnativeServices() Definition {
	return Definition{
		Kind:     "Service",
		Plural:   "services",
		Aliases:  []string{"ksvc", "kservice"},
		Resource: v1alpha1.ServingServiceGVR,
		Columns: []Column{
			{Title: "Name", SortField: "metadata.name", Classes: []string{"col-lg-3", "col-md-4", "col-sm-6", "col-xs-6"}},
			{Title: "Namespace", SortField: "metadata.namespace", Classes: []string{"col-lg-2", "col-md-3", "col-sm-6", "col-xs-6"}},
			{Title: "URL", SortField: "status.url", Classes: []string{"col-lg-4", "col-md-5", "hidden-sm", "hidden-xs"}},
			{Title: "Ready", Classes: []string{"col-lg-3", "hidden-md", "hidden-sm", "hidden-xs"}},
		},
		Row: func(obj *unstructured.Unstructured) []string {
			return []string{obj.GetName(), obj.GetNamespace(), FieldString(obj, "status.url"), conditionStatus(obj, "Ready")}
		},
		Tabs: []Tab{
			{Name: TabYAML, Title: "YAML", Render: yamlTab},
			{Name: TabEvents, Title: "Events", Render: eventsTab},
		},
	}
}

// VirtualMachines returns the definition of kubevirt virtual machines.
func VirtualMachines() Definition {
	return Definition{
		Kind:     "VirtualMachine",
		Plural:   "virtualmachines",
		Aliases:  []string{"vm", "vms"},
		Resource: v1alpha1.VirtualMachineGVR,
		Columns: []Column{
			{Title: "Name", SortField: "metadata.name", Classes: []string{"col-lg-3", "col-md-4", "col-sm-6", "col-xs-6"}},
			{Title: "Namespace", SortField: "metadata.namespace", Classes: []string{"col-lg-3", "col-md-4", "col-sm-6", "col-xs-6"}},
			{Title: "Status", SortField: "status.printableStatus", Classes: []string{"col-lg-3", "col-md-4", "hidden-sm", "hidden-xs"}},
			{Title: "Template", SortField: "metadata.labels.vm\\.kubevirt\\.io/template", Classes: []string{"col-lg-3", "hidden-md", "hidden-sm", "hidden-xs"}},
		},
		Row: func(obj *unstructured.Unstructured) []string {
			return []string{obj.GetName(), obj.GetNamespace(), FieldString(obj, "status.printableStatus"), obj.GetLabels()[v1alpha1.TemplateLabel]}
		},
		Tabs: []Tab{
			{Name: TabYAML, Title: "YAML", Render: yamlTab},
			{Name: TabEvents, Title: "Events", Render: eventsTab},
		},
	}
}

func conditionStatus(obj *unstructured.Unstructured, condType string) string {
	conds, found, err := unstructured.NestedSlice(obj.Object, "status", "conditions")
	if err != nil || !found {
		return "Unknown"
	}
	for _, c := range conds {
		m, ok := c.(map[string]any)
		if !ok || m["type"] != condType {
			continue
		}
		status, _ := m["status"].(string)
		if reason, _ := m["reason"].(string); reason != "" && status != "True" {
			return status + " (" + reason + ")"
		}
		return status
	}
	return "Unknown"
}

// RegisterBuiltins registers the extra tabs shipped with the console.
func RegisterBuiltins(r *registry.Registry) error {
	providers := []registry.Provider{
		{Kind: "DaemonSet", Key: "scheduling", Title: "Scheduling", Render: schedulingTab},
		{Kind: "Service", Key: "traffic", Title: "Traffic", Render: trafficTab},
	}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}

func schedulingTab(_ context.Context, obj *unstructured.Unstructured) (string, error) {
	ds, err := toDaemonSet(obj)
	if err != nil {
		return "", err
	}
	spec := ds.Spec.Template.Spec
	return tabulate([]string{"KIND", "KEY", "VALUE"}, func(add func(...string)) {
		for _, kv := range strings.Split(joinMap(spec.NodeSelector), ",") {
			if k, v, ok := strings.Cut(kv, "="); ok {
				add("node selector", k, v)
			}
		}
		for _, t := range spec.Tolerations {
			add("toleration", t.Key, strings.TrimSpace(fmt.Sprintf("%s %s %s", t.Operator, t.Value, t.Effect)))
		}
	})
}

func trafficTab(_ context.Context, obj *unstructured.Unstructured) (string, error) {
	traffic, _, err := unstructured.NestedSlice(obj.Object, "status", "traffic")
	if err != nil {
		return "", fmt.Errorf("failed to read traffic of %s: %w", obj.GetName(), err)
	}
	return tabulate([]string{"REVISION", "PERCENT", "TAG"}, func(add func(...string)) {
		for _, t := range traffic {
			m, ok := t.(map[string]any)
			if !ok {
				continue
			}
			add(render(m["revisionName"]), render(m["percent"]), render(m["tag"]))
		}
	})
}
