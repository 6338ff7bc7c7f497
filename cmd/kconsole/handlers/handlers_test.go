package handlers

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/imamik/kconsole/api/v1alpha1"
	"github.com/imamik/kconsole/internal/config"
	"github.com/imamik/kconsole/internal/eventsource"
	"github.com/imamik/kconsole/internal/k8s"
	"github.com/imamik/kconsole/internal/sink"
	kctesting "github.com/imamik/kconsole/internal/testing"
	"github.com/imamik/kconsole/internal/ui/listview"
	"github.com/imamik/kconsole/internal/ui/prompt"
	"github.com/imamik/kconsole/internal/vmwizard"
	"github.com/imamik/kconsole/internal/wizard"
)

type fakeSession struct {
	vm func(ctx context.Context, w *vmwizard.Wizard) (*wizard.SubmissionResult, error)
	es func(ctx context.Context, f *eventsource.Form, collections prompt.Collections) (*wizard.SubmissionResult, error)
}

func (s *fakeSession) RunVM(ctx context.Context, w *vmwizard.Wizard, _ string) (*wizard.SubmissionResult, error) {
	return s.vm(ctx, w)
}

func (s *fakeSession) RunEventSource(ctx context.Context, f *eventsource.Form, c prompt.Collections) (*wizard.SubmissionResult, error) {
	return s.es(ctx, f, c)
}

// stubEnv points the handlers at a fake cluster and captures their output.
func stubEnv(t *testing.T, f *kctesting.ClusterFixture, cfg *config.Config, session Session) *bytes.Buffer {
	t.Helper()
	origLoad, origClient, origSession := loadConfig, newClient, newSession
	origLive, origOut, origWidth, origInteractive := runLive, stdout, terminalWidth, isInteractive
	t.Cleanup(func() {
		loadConfig, newClient, newSession = origLoad, origClient, origSession
		runLive, stdout, terminalWidth, isInteractive = origLive, origOut, origWidth, origInteractive
	})

	var out bytes.Buffer
	loadConfig = func(string) (*config.Config, error) { return cfg, nil }
	newClient = func(cfg *config.Config, _ logr.Logger) (*k8s.Client, error) {
		return f.Client(k8s.WithNamespace(cfg.Namespace), k8s.WithFieldManager(cfg.FieldManager)), nil
	}
	newSession = func(logr.Logger) Session { return session }
	stdout = &out
	terminalWidth = func() int { return 160 }
	isInteractive = func() bool { return false }
	return &out
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Namespace = "demo"
	cfg.WaitTimeout = 0
	return cfg
}

func daemonSetFixture() *kctesting.ClusterFixture {
	return kctesting.NewClusterFixture(
		kctesting.DaemonSet("kube-proxy", "demo", 3, 3).WithLabels(map[string]string{"k8s-app": "kube-proxy"}).Build(),
		kctesting.DaemonSet("fluentd", "demo", 1, 3).Build(),
		kctesting.DaemonSet("other", "elsewhere", 1, 1).Build(),
	)
}

func TestList_PrintsTable(t *testing.T) {
	out := stubEnv(t, daemonSetFixture(), testConfig(), nil)

	err := List(kctesting.TestContext(t), Options{}, "ds", ListOptions{SortBy: "name"})
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "Pod Selector")
	assert.Contains(t, s, "3 of 3 pods")
	assert.Less(t, strings.Index(s, "fluentd"), strings.Index(s, "kube-proxy"))
	assert.NotContains(t, s, "other", "only the configured namespace is listed")
}

func TestList_NamespaceFlagWins(t *testing.T) {
	out := stubEnv(t, daemonSetFixture(), testConfig(), nil)

	require.NoError(t, List(kctesting.TestContext(t), Options{Namespace: "elsewhere"}, "daemonsets", ListOptions{}))
	assert.Contains(t, out.String(), "other")
	assert.NotContains(t, out.String(), "fluentd")
}

func TestList_Empty(t *testing.T) {
	out := stubEnv(t, kctesting.NewClusterFixture(), testConfig(), nil)

	require.NoError(t, List(kctesting.TestContext(t), Options{}, "vms", ListOptions{}))
	assert.Contains(t, out.String(), "No virtualmachines found in demo")
}

func TestList_Errors(t *testing.T) {
	stubEnv(t, kctesting.NewClusterFixture(), testConfig(), nil)
	ctx := kctesting.TestContext(t)

	err := List(ctx, Options{}, "pods", ListOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource kind")

	err = List(ctx, Options{}, "ksvc", ListOptions{SortBy: "ready"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not sortable")

	err = List(ctx, Options{}, "ksvc", ListOptions{SortBy: "age"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no column")
}

func TestList_WatchStartsLiveView(t *testing.T) {
	stubEnv(t, daemonSetFixture(), testConfig(), nil)
	isInteractive = func() bool { return true }

	var got *listview.Model
	runLive = func(_ context.Context, m listview.Model) error {
		got = &m
		return nil
	}

	require.NoError(t, List(kctesting.TestContext(t), Options{}, "ds", ListOptions{Watch: true, SortBy: "Status", Descending: true}))
	require.NotNil(t, got)
	assert.Equal(t, listview.Sort{Column: "Status", Descending: true}, got.Sorting())
}

func TestGet_RendersTab(t *testing.T) {
	out := stubEnv(t, daemonSetFixture(), testConfig(), nil)
	ctx := kctesting.TestContext(t)

	require.NoError(t, Get(ctx, Options{}, "daemonset", "kube-proxy", "yaml"))
	assert.Contains(t, out.String(), "DaemonSet kube-proxy")
	assert.Contains(t, out.String(), "kind: DaemonSet")

	out.Reset()
	require.NoError(t, Get(ctx, Options{}, "ds", "fluentd", ""))
	assert.Contains(t, out.String(), "Daemon Set Overview")

	err := Get(ctx, Options{}, "ds", "fluentd", "logs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tab")

	assert.Error(t, Get(ctx, Options{}, "ds", "missing", "yaml"))
}

func TestGet_RegisteredTab(t *testing.T) {
	out := stubEnv(t, daemonSetFixture(), testConfig(), nil)

	require.NoError(t, Get(kctesting.TestContext(t), Options{}, "ds", "fluentd", "scheduling"))
	assert.Contains(t, out.String(), "KIND")

	assert.Contains(t, TabNames("daemonsets"), "scheduling")
	assert.Contains(t, TabNames("services"), "traffic")
	assert.Empty(t, TabNames("widgets"))
}

func TestApply(t *testing.T) {
	f := kctesting.NewClusterFixture()
	out := stubEnv(t, f, testConfig(), nil)
	ctx := kctesting.TestContext(t)

	manifest := `# settings
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
  namespace: demo
data:
  level: debug
---
apiVersion: serving.knative.dev/v1
kind: Service
metadata:
  name: event-display
  namespace: demo
`
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))

	require.NoError(t, Apply(ctx, Options{}, path, false))
	assert.Equal(t, "ConfigMap/settings created\nService/event-display created\n", out.String())

	_, err := f.Dynamic.Resource(v1alpha1.ServingServiceGVR).Namespace("demo").Get(ctx, "event-display", metav1.GetOptions{})
	require.NoError(t, err)

	err = Apply(ctx, Options{}, path, false)
	require.Error(t, err, "objects exist already")
	assert.Contains(t, err.Error(), "ConfigMap settings")
}

func TestApply_Stdin(t *testing.T) {
	out := stubEnv(t, kctesting.NewClusterFixture(), testConfig(), nil)
	orig := stdin
	t.Cleanup(func() { stdin = orig })
	stdin = strings.NewReader("apiVersion: v1\nkind: ConfigMap\nmetadata:\n  name: from-stdin\n  namespace: demo\n")

	require.NoError(t, Apply(kctesting.TestContext(t), Options{}, "-", false))
	assert.Equal(t, "ConfigMap/from-stdin created\n", out.String())

	assert.Error(t, Apply(kctesting.TestContext(t), Options{}, "", false))
}

func TestCreateVM_FromTemplate(t *testing.T) {
	f := kctesting.NewClusterFixture()
	cfg := testConfig()
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "kconsole.prom")
	session := &fakeSession{vm: func(ctx context.Context, w *vmwizard.Wizard) (*wizard.SubmissionResult, error) {
		assert.Equal(t, "fedora-server-tiny", w.Controller().State().String(vmwizard.FieldTemplate))
		return w.Process(ctx, vmwizard.VMBuilderData{
			Name:     "vm1",
			Flavor:   &vmwizard.FlavorConfig{Flavor: vmwizard.FlavorTiny},
			Networks: []vmwizard.NIC{{Name: "nic0"}},
		})
	}}
	stubEnv(t, f, cfg, session)
	ctx := kctesting.TestContext(t)

	require.NoError(t, CreateVM(ctx, Options{}, "fedora-server-tiny"))

	vm, err := f.Dynamic.Resource(v1alpha1.VirtualMachineGVR).Namespace("demo").Get(ctx, "vm1", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "fedora-server-tiny", vm.GetLabels()[v1alpha1.TemplateLabel])

	metrics, err := os.ReadFile(cfg.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "kconsole_wizard_submissions_total")
}

func TestCreateVM_Aborted(t *testing.T) {
	session := &fakeSession{vm: func(context.Context, *vmwizard.Wizard) (*wizard.SubmissionResult, error) {
		return nil, prompt.ErrAborted
	}}
	out := stubEnv(t, kctesting.NewClusterFixture(), testConfig(), session)

	require.NoError(t, CreateVM(kctesting.TestContext(t), Options{}, ""))
	assert.Equal(t, "Aborted.\n", out.String())
}

func TestCreateVM_ConfigError(t *testing.T) {
	stubEnv(t, kctesting.NewClusterFixture(), testConfig(), nil)
	loadConfig = func(string) (*config.Config, error) { return nil, errors.New("bad yaml") }

	err := CreateVM(kctesting.TestContext(t), Options{}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestCreateEventSource_ResolvesSinkFlag(t *testing.T) {
	f := kctesting.NewClusterFixture(
		kctesting.KnativeService("event-display", "demo").Build(),
		kctesting.Broker("default", "demo").Build(),
	)
	var sawPreset bool
	session := &fakeSession{es: func(ctx context.Context, form *eventsource.Form, collections prompt.Collections) (*wizard.SubmissionResult, error) {
		sawPreset = form.Sinks().Preset()
		st := form.Controller().State()
		assert.Equal(t, "event-display", st.String(sink.FieldName))
		assert.Equal(t, "Service", st.String(sink.FieldKind))
		assert.Equal(t, "serving.knative.dev/v1", st.String(sink.FieldAPIVersion))
		assert.Equal(t, eventsource.KindPing, st.String(eventsource.FieldKind))
		assert.Len(t, collections(), 4, "services, brokers and both channel kinds")
		return nil, prompt.ErrAborted
	}}
	stubEnv(t, f, testConfig(), session)

	err := CreateEventSource(kctesting.TestContext(t), Options{}, EventSourceOptions{Kind: eventsource.KindPing, Sink: "evdisp"})
	require.NoError(t, err)
	assert.True(t, sawPreset)
}

func TestCreateEventSource_SinkErrors(t *testing.T) {
	f := kctesting.NewClusterFixture(kctesting.KnativeService("event-display", "demo").Build())
	stubEnv(t, f, testConfig(), &fakeSession{})
	ctx := kctesting.TestContext(t)

	err := CreateEventSource(ctx, Options{}, EventSourceOptions{Sink: "nothing-like-it"})
	require.Error(t, err)
	assert.True(t, sink.IsNoMatch(err))

	err = CreateEventSource(ctx, Options{}, EventSourceOptions{Sink: "a", SinkURI: "https://x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")

	err = CreateEventSource(ctx, Options{}, EventSourceOptions{Kind: "CronJobSource"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source type")
}

func TestCreateEventSource_SinkURI(t *testing.T) {
	session := &fakeSession{es: func(_ context.Context, form *eventsource.Form, _ prompt.Collections) (*wizard.SubmissionResult, error) {
		st := form.Controller().State()
		assert.Equal(t, string(sink.TypeURI), st.String(sink.FieldType))
		assert.Equal(t, "https://events.example.com", st.String(sink.FieldURI))
		assert.False(t, form.Sinks().Preset())
		return nil, prompt.ErrAborted
	}}
	stubEnv(t, kctesting.NewClusterFixture(), testConfig(), session)

	require.NoError(t, CreateEventSource(kctesting.TestContext(t), Options{}, EventSourceOptions{SinkURI: "https://events.example.com"}))
}
