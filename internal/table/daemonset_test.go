package table

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/labels"

	"github.com/imamik/kconsole/internal/registry"
)

type fakeLookup struct {
	pods   []corev1.Pod
	events []corev1.Event
	err    error

	gotSelector labels.Selector
	gotInvolved string
}

func (f *fakeLookup) Pods(_ context.Context, _ string, selector labels.Selector) ([]corev1.Pod, error) {
	f.gotSelector = selector
	var out []corev1.Pod
	for _, p := range f.pods {
		if selector.Matches(labels.Set(p.Labels)) {
			out = append(out, p)
		}
	}
	return out, f.err
}

func (f *fakeLookup) Events(_ context.Context, _, kind, name string) ([]corev1.Event, error) {
	f.gotInvolved = kind + "/" + name
	return f.events, f.err
}

func TestDaemonSets_Rows(t *testing.T) {
	t.Parallel()

	def := DaemonSets()
	objs := []*unstructured.Unstructured{daemonSet("fluent-bit", "logging", 2, 3, map[string]any{"app": "fluent-bit"})}

	assert.Equal(t, []string{"Name", "Namespace"}, def.Header(XS))
	assert.Equal(t, [][]string{{"fluent-bit", "logging"}}, def.Rows(objs, XS))
	assert.Equal(t,
		[][]string{{"fluent-bit", "logging", "app=fluent-bit", "2 of 3 pods", "app=fluent-bit"}},
		def.Rows(objs, LG))
}

func TestDaemonSets_Tabs(t *testing.T) {
	t.Parallel()

	def := DaemonSets()
	assert.Equal(t, []string{TabDetails, TabYAML, TabPods, TabEnvironment, TabEvents}, def.TabNames())
	assert.True(t, def.Matches("ds"))
	assert.True(t, def.Matches("DaemonSets"))
}

func TestDaemonSets_DetailsTab(t *testing.T) {
	t.Parallel()

	out, err := DaemonSets().RenderTab(context.Background(), TabDetails, nil, daemonSet("fluent-bit", "logging", 2, 3, nil))
	require.NoError(t, err)
	assert.Contains(t, out, "Daemon Set Overview")
	assert.Regexp(t, `Current Count\s+2`, out)
	assert.Regexp(t, `Desired Count\s+3`, out)
	assert.Regexp(t, `agent\s+registry.example.com/fluent-bit:1.0`, out)
	assert.Regexp(t, `host-logs\s+HostPath /var/log\s+agent:/var/log`, out)
}

func TestDaemonSets_PodsTab(t *testing.T) {
	t.Parallel()

	lookup := &fakeLookup{pods: []corev1.Pod{
		{
			ObjectMeta: metav1.ObjectMeta{Name: "fluent-bit-x2", Labels: map[string]string{"app": "fluent-bit"}},
			Spec:       corev1.PodSpec{NodeName: "worker-1", Containers: []corev1.Container{{Name: "agent"}}},
			Status: corev1.PodStatus{Phase: corev1.PodRunning, ContainerStatuses: []corev1.ContainerStatus{
				{Ready: true, RestartCount: 2},
			}},
		},
		{ObjectMeta: metav1.ObjectMeta{Name: "other", Labels: map[string]string{"app": "other"}}},
	}}

	out, err := DaemonSets().RenderTab(context.Background(), TabPods, lookup, daemonSet("fluent-bit", "logging", 1, 1, nil))
	require.NoError(t, err)
	assert.Equal(t, "app=fluent-bit", lookup.gotSelector.String())
	assert.Regexp(t, `fluent-bit-x2\s+Running\s+1/1\s+2\s+worker-1`, out)
	assert.NotContains(t, out, "other")

	_, err = DaemonSets().RenderTab(context.Background(), TabPods, nil, daemonSet("x", "ns", 0, 0, nil))
	assert.ErrorIs(t, err, errNoLookup)
}

func TestDaemonSets_EnvironmentTab(t *testing.T) {
	t.Parallel()

	out, err := DaemonSets().RenderTab(context.Background(), TabEnvironment, nil, daemonSet("fluent-bit", "logging", 0, 0, nil))
	require.NoError(t, err)
	assert.Regexp(t, `agent\s+LOG_LEVEL\s+info`, out)
	assert.Regexp(t, `agent\s+TOKEN\s+\(secret agent-token key token\)`, out)
}

func TestEventsTab(t *testing.T) {
	orig := now
	t.Cleanup(func() { now = orig })
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	now = func() time.Time { return base }

	lookup := &fakeLookup{events: []corev1.Event{
		{Type: "Normal", Reason: "SuccessfulCreate", Message: "Created pod: fluent-bit-x2", LastTimestamp: metav1.NewTime(base.Add(-10 * time.Minute))},
		{Type: "Warning", Reason: "FailedCreate", Message: "quota exceeded", LastTimestamp: metav1.NewTime(base.Add(-time.Minute))},
	}}

	out, err := DaemonSets().RenderTab(context.Background(), TabEvents, lookup, daemonSet("fluent-bit", "logging", 0, 0, nil))
	require.NoError(t, err)
	assert.Equal(t, "DaemonSet/fluent-bit", lookup.gotInvolved)
	assert.Regexp(t, `(?s)60s\s+Warning\s+FailedCreate.*10m\s+Normal\s+SuccessfulCreate`, out)

	lookup.events = nil
	out, err = DaemonSets().RenderTab(context.Background(), TabEvents, lookup, daemonSet("fluent-bit", "logging", 0, 0, nil))
	require.NoError(t, err)
	assert.Equal(t, "No events\n", out)

	lookup.err = errors.New("forbidden")
	_, err = DaemonSets().RenderTab(context.Background(), TabEvents, lookup, daemonSet("fluent-bit", "logging", 0, 0, nil))
	assert.EqualError(t, err, "forbidden")
}

func TestYAMLTab_DropsManagedFields(t *testing.T) {
	t.Parallel()

	obj := daemonSet("fluent-bit", "logging", 0, 0, nil)
	obj.SetManagedFields([]metav1.ManagedFieldsEntry{{Manager: "kubectl"}})

	out, err := DaemonSets().RenderTab(context.Background(), TabYAML, nil, obj)
	require.NoError(t, err)
	assert.Contains(t, out, "kind: DaemonSet")
	assert.NotContains(t, out, "managedFields")
	assert.NotEmpty(t, obj.GetManagedFields(), "the listed object is untouched")
}

func TestRenderTab_Unknown(t *testing.T) {
	t.Parallel()

	_, err := DaemonSets().RenderTab(context.Background(), "metrics", nil, daemonSet("a", "b", 0, 0, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "details, yaml, pods, environment, events")
}

func TestWithProviders(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	require.NoError(t, RegisterBuiltins(reg))
	require.NoError(t, reg.Register(registry.Provider{
		Kind: "DaemonSet", Key: TabYAML, Title: "Shadowed",
		Render: func(context.Context, *unstructured.Unstructured) (string, error) { return "x", nil },
	}))
	reg.Seal()

	def := DaemonSets().WithProviders(reg)
	assert.Equal(t, []string{TabDetails, TabYAML, TabPods, TabEnvironment, TabEvents, "scheduling"}, def.TabNames())
	assert.Len(t, DaemonSets().Tabs, 5, "the base definition is not modified")

	obj := daemonSet("fluent-bit", "logging", 0, 0, nil)
	_ = unstructured.SetNestedStringMap(obj.Object, map[string]string{"kubernetes.io/os": "linux"}, "spec", "template", "spec", "nodeSelector")
	out, err := def.RenderTab(context.Background(), "scheduling", nil, obj)
	require.NoError(t, err)
	assert.Regexp(t, `node selector\s+kubernetes.io/os\s+linux`, out)
}

func TestFind(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"ds", "daemonsets", "ksvc", "vm", "VirtualMachine"} {
		_, ok := Find(name)
		assert.True(t, ok, name)
	}
	_, ok := Find("pods")
	assert.False(t, ok)
}

func TestKnativeServices_Row(t *testing.T) {
	t.Parallel()

	svc := &unstructured.Unstructured{Object: map[string]any{
		"metadata": map[string]any{"name": "event-display", "namespace": "demo"},
		"status": map[string]any{
			"url": "http://event-display.demo.example.com",
			"conditions": []any{
				map[string]any{"type": "Ready", "status": "False", "reason": "RevisionMissing"},
			},
		},
	}}
	assert.Equal(t,
		[]string{"event-display", "demo", "http://event-display.demo.example.com", "False (RevisionMissing)"},
		KnativeServices().Row(svc))
}
