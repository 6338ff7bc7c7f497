package table

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/imamik/kconsole/api/v1alpha1"
)

var errNoLookup = errors.New("this tab needs a cluster connection")

// DaemonSets returns the daemon set list and detail definition.
func DaemonSets() Definition {
	return Definition{
		Kind:     "DaemonSet",
		Plural:   "daemonsets",
		Aliases:  []string{"ds"},
		Resource: v1alpha1.DaemonSetGVR,
		Columns: []Column{
			{Title: "Name", SortField: "metadata.name", Classes: []string{"col-lg-2", "col-md-3", "col-sm-4", "col-xs-6"}},
			{Title: "Namespace", SortField: "metadata.namespace", Classes: []string{"col-lg-2", "col-md-3", "col-sm-4", "col-xs-6"}},
			{Title: "Labels", SortField: "metadata.labels", Classes: []string{"col-lg-3", "col-md-4", "col-sm-4", "hidden-xs"}},
			{Title: "Status", SortFunc: "daemonsetNumScheduled", Classes: []string{"col-lg-2", "col-md-2", "hidden-sm", "hidden-xs"}},
			{Title: "Pod Selector", SortField: "spec.selector", Classes: []string{"col-lg-3", "hidden-md", "hidden-sm", "hidden-xs"}},
		},
		Row: daemonSetRow,
		Tabs: []Tab{
			{Name: TabDetails, Title: "Details", Render: daemonSetDetails},
			{Name: TabYAML, Title: "YAML", Render: yamlTab},
			{Name: TabPods, Title: "Pods", Render: daemonSetPods},
			{Name: TabEnvironment, Title: "Environment", Render: daemonSetEnvironment},
			{Name: TabEvents, Title: "Events", Render: eventsTab},
		},
	}
}

func daemonSetRow(obj *unstructured.Unstructured) []string {
	return []string{
		obj.GetName(),
		obj.GetNamespace(),
		FieldString(obj, "metadata.labels"),
		fmt.Sprintf("%d of %d pods",
			nestedInt(obj, "status", "currentNumberScheduled"),
			nestedInt(obj, "status", "desiredNumberScheduled")),
		selectorString(obj),
	}
}

func selectorString(obj *unstructured.Unstructured) string {
	m, found, err := unstructured.NestedMap(obj.Object, "spec", "selector")
	if err != nil || !found {
		return ""
	}
	var sel metav1.LabelSelector
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(m, &sel); err != nil {
		return FieldString(obj, "spec.selector")
	}
	return metav1.FormatLabelSelector(&sel)
}

func toDaemonSet(obj *unstructured.Unstructured) (*appsv1.DaemonSet, error) {
	var ds appsv1.DaemonSet
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, &ds); err != nil {
		return nil, fmt.Errorf("failed to read daemon set %s: %w", obj.GetName(), err)
	}
	return &ds, nil
}

func daemonSetDetails(_ context.Context, _ Lookup, obj *unstructured.Unstructured) (string, error) {
	ds, err := toDaemonSet(obj)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("Daemon Set Overview\n")
	summary, err := tabulate([]string{"FIELD", "VALUE"}, func(add func(...string)) {
		add("Name", ds.Name)
		add("Namespace", ds.Namespace)
		add("Labels", joinMap(ds.Labels))
		add("Annotations", fmt.Sprintf("%d annotations", len(ds.Annotations)))
		add("Pod Selector", metav1.FormatLabelSelector(ds.Spec.Selector))
		add("Node Selector", joinMap(ds.Spec.Template.Spec.NodeSelector))
		add("Tolerations", fmt.Sprintf("%d tolerations", len(ds.Spec.Template.Spec.Tolerations)))
		add("Created At", ds.CreationTimestamp.UTC().Format("2006-01-02 15:04:05Z"))
		add("Current Count", fmt.Sprint(ds.Status.CurrentNumberScheduled))
		add("Desired Count", fmt.Sprint(ds.Status.DesiredNumberScheduled))
	})
	if err != nil {
		return "", err
	}
	b.WriteString(summary)

	b.WriteString("\nContainers\n")
	containers, err := tabulate([]string{"NAME", "IMAGE", "PORTS"}, func(add func(...string)) {
		for _, c := range ds.Spec.Template.Spec.Containers {
			add(c.Name, c.Image, ports(c.Ports))
		}
	})
	if err != nil {
		return "", err
	}
	b.WriteString(containers)

	b.WriteString("\nVolumes\n")
	if len(ds.Spec.Template.Spec.Volumes) == 0 {
		b.WriteString("No volumes\n")
		return b.String(), nil
	}
	volumes, err := tabulate([]string{"NAME", "TYPE", "MOUNTED BY"}, func(add func(...string)) {
		for _, v := range ds.Spec.Template.Spec.Volumes {
			add(v.Name, volumeType(v), strings.Join(mountedBy(ds.Spec.Template.Spec.Containers, v.Name), ","))
		}
	})
	if err != nil {
		return "", err
	}
	b.WriteString(volumes)
	return b.String(), nil
}

func daemonSetPods(ctx context.Context, lookup Lookup, obj *unstructured.Unstructured) (string, error) {
	if lookup == nil {
		return "", errNoLookup
	}
	ds, err := toDaemonSet(obj)
	if err != nil {
		return "", err
	}
	selector, err := metav1.LabelSelectorAsSelector(ds.Spec.Selector)
	if err != nil {
		return "", fmt.Errorf("invalid selector of %s: %w", ds.Name, err)
	}
	pods, err := lookup.Pods(ctx, ds.Namespace, selector)
	if err != nil {
		return "", err
	}
	if len(pods) == 0 {
		return "No pods found\n", nil
	}
	sort.SliceStable(pods, func(i, j int) bool { return pods[i].Name < pods[j].Name })
	return tabulate([]string{"NAME", "STATUS", "READY", "RESTARTS", "NODE"}, func(add func(...string)) {
		for _, p := range pods {
			ready, restarts := 0, int32(0)
			for _, cs := range p.Status.ContainerStatuses {
				if cs.Ready {
					ready++
				}
				restarts += cs.RestartCount
			}
			add(p.Name, string(p.Status.Phase),
				fmt.Sprintf("%d/%d", ready, len(p.Spec.Containers)),
				fmt.Sprint(restarts), p.Spec.NodeName)
		}
	})
}

func daemonSetEnvironment(_ context.Context, _ Lookup, obj *unstructured.Unstructured) (string, error) {
	ds, err := toDaemonSet(obj)
	if err != nil {
		return "", err
	}
	containers := append(append([]corev1.Container(nil), ds.Spec.Template.Spec.InitContainers...), ds.Spec.Template.Spec.Containers...)
	return tabulate([]string{"CONTAINER", "NAME", "VALUE"}, func(add func(...string)) {
		for _, c := range containers {
			for _, from := range c.EnvFrom {
				add(c.Name, "(all)", envFromSource(from))
			}
			for _, e := range c.Env {
				add(c.Name, e.Name, envValue(e))
			}
		}
	})
}

func envValue(e corev1.EnvVar) string {
	src := e.ValueFrom
	switch {
	case src == nil:
		return e.Value
	case src.SecretKeyRef != nil:
		return fmt.Sprintf("(secret %s key %s)", src.SecretKeyRef.Name, src.SecretKeyRef.Key)
	case src.ConfigMapKeyRef != nil:
		return fmt.Sprintf("(config map %s key %s)", src.ConfigMapKeyRef.Name, src.ConfigMapKeyRef.Key)
	case src.FieldRef != nil:
		return fmt.Sprintf("(field %s)", src.FieldRef.FieldPath)
	case src.ResourceFieldRef != nil:
		return fmt.Sprintf("(resource %s)", src.ResourceFieldRef.Resource)
	}
	return ""
}

func envFromSource(from corev1.EnvFromSource) string {
	switch {
	case from.SecretRef != nil:
		return fmt.Sprintf("(secret %s, prefix %q)", from.SecretRef.Name, from.Prefix)
	case from.ConfigMapRef != nil:
		return fmt.Sprintf("(config map %s, prefix %q)", from.ConfigMapRef.Name, from.Prefix)
	}
	return ""
}

func volumeType(v corev1.Volume) string {
	switch {
	case v.ConfigMap != nil:
		return "ConfigMap " + v.ConfigMap.Name
	case v.Secret != nil:
		return "Secret " + v.Secret.SecretName
	case v.HostPath != nil:
		return "HostPath " + v.HostPath.Path
	case v.EmptyDir != nil:
		return "EmptyDir"
	case v.PersistentVolumeClaim != nil:
		return "PVC " + v.PersistentVolumeClaim.ClaimName
	case v.Projected != nil:
		return "Projected"
	case v.DownwardAPI != nil:
		return "DownwardAPI"
	}
	return "Other"
}

func mountedBy(containers []corev1.Container, volume string) []string {
	var out []string
	for _, c := range containers {
		for _, m := range c.VolumeMounts {
			if m.Name == volume {
				out = append(out, c.Name+":"+m.MountPath)
			}
		}
	}
	return out
}

func ports(ps []corev1.ContainerPort) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		parts = append(parts, fmt.Sprintf("%d/%s", p.ContainerPort, p.Protocol))
	}
	return strings.Join(parts, ",")
}

func joinMap(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, ",")
}
