package k8s_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	k8stesting "k8s.io/client-go/testing"

	"github.com/imamik/kconsole/api/v1alpha1"
	"github.com/imamik/kconsole/internal/k8s"
	kctesting "github.com/imamik/kconsole/internal/testing"
	"github.com/imamik/kconsole/internal/util/retry"
)

func TestCreate_DefaultsNamespace(t *testing.T) {
	t.Parallel()
	ctx := kctesting.TestContext(t)
	f := kctesting.NewClusterFixture()
	client := f.Client(k8s.WithNamespace("demo"))

	obj := kctesting.PingSource("ping", "").WithField("*/2 * * * *", "spec", "schedule").Build()
	created, err := client.Create(ctx, obj)
	require.NoError(t, err)
	assert.Equal(t, "demo", created.GetNamespace())

	got, err := client.Get(ctx, v1alpha1.SourceGVR("PingSource"), "demo", "ping")
	require.NoError(t, err)
	schedule, _, _ := unstructured.NestedString(got.Object, "spec", "schedule")
	assert.Equal(t, "*/2 * * * *", schedule)
}

func TestCreate_ClusterScoped(t *testing.T) {
	t.Parallel()
	ctx := kctesting.TestContext(t)
	client := kctesting.NewClusterFixture().Client(k8s.WithNamespace("demo"))

	ns := kctesting.NewObject(schema.GroupVersionKind{Version: "v1", Kind: "Namespace"}, "team-a").Build()
	created, err := client.Create(ctx, ns)
	require.NoError(t, err)
	assert.Empty(t, created.GetNamespace())
}

func TestCreate_AlreadyExistsIsReturnedVerbatim(t *testing.T) {
	t.Parallel()
	ctx := kctesting.TestContext(t)
	existing := kctesting.PingSource("ping", "demo").Build()
	client := kctesting.NewClusterFixture(existing).Client()

	_, err := client.Create(ctx, kctesting.PingSource("ping", "demo").Build())
	require.Error(t, err)
	assert.True(t, apierrors.IsAlreadyExists(err))
	var status apierrors.APIStatus
	assert.True(t, errors.As(err, &status))
}

func TestCreate_NoKind(t *testing.T) {
	t.Parallel()
	client := kctesting.NewClusterFixture().Client()
	_, err := client.Create(context.Background(), &unstructured.Unstructured{Object: map[string]any{}})
	assert.ErrorIs(t, err, k8s.ErrNoKind)
}

func TestCreate_UnknownKind(t *testing.T) {
	t.Parallel()
	client := kctesting.NewClusterFixture().Client()
	obj := kctesting.NewObject(schema.GroupVersionKind{Group: "example.com", Version: "v1", Kind: "Widget"}, "w").Build()
	_, err := client.Create(context.Background(), obj)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REST mapping")
}

func TestCreate_SendsFieldManager(t *testing.T) {
	t.Parallel()
	f := kctesting.NewClusterFixture()
	var manager string
	f.Dynamic.PrependReactor("create", "pingsources", func(action k8stesting.Action) (bool, runtime.Object, error) {
		manager = action.(k8stesting.CreateActionImpl).CreateOptions.FieldManager
		return false, nil, nil
	})
	client := f.Client(k8s.WithFieldManager("tester"))

	_, err := client.Create(context.Background(), kctesting.PingSource("ping", "demo").Build())
	require.NoError(t, err)
	assert.Equal(t, "tester", manager)
	assert.Equal(t, "tester", client.FieldManager())
}

const manifest = `
apiVersion: v1
kind: ConfigMap
metadata:
  name: first
data:
  key: value
---
# comment only
---
apiVersion: serving.knative.dev/v1
kind: Service
metadata:
  name: shop
  namespace: other
`

func TestDecode(t *testing.T) {
	t.Parallel()
	objs, err := k8s.Decode([]byte(manifest))
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "ConfigMap", objs[0].GetKind())
	assert.Equal(t, "Service", objs[1].GetKind())

	_, err = k8s.Decode([]byte("kind: [unterminated"))
	assert.Error(t, err)
}

func TestCreateFromYAML(t *testing.T) {
	t.Parallel()
	ctx := kctesting.TestContext(t)
	f := kctesting.NewClusterFixture()
	client := f.Client(k8s.WithNamespace("demo"))

	created, err := client.CreateFromYAML(ctx, []byte(manifest), false)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "demo", created[0].GetNamespace())
	assert.Equal(t, "other", created[1].GetNamespace())

	_, err = client.Get(ctx, kctesting.ConfigMapGVR, "demo", "first")
	assert.NoError(t, err)
}

func TestCreateFromYAML_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()
	ctx := kctesting.TestContext(t)
	existing := kctesting.KnativeService("shop", "other").Build()
	client := kctesting.NewClusterFixture(existing).Client(k8s.WithNamespace("demo"))

	data := manifest + `---
apiVersion: v1
kind: ConfigMap
metadata:
  name: never
`
	created, err := client.CreateFromYAML(ctx, []byte(data), false)
	require.Error(t, err)
	assert.True(t, apierrors.IsAlreadyExists(err))
	assert.Contains(t, err.Error(), "Service shop")
	require.Len(t, created, 1)
	assert.Equal(t, "first", created[0].GetName())

	_, err = client.Get(ctx, kctesting.ConfigMapGVR, "demo", "never")
	assert.True(t, apierrors.IsNotFound(err))
}

func TestCreateFromYAML_ServerSide(t *testing.T) {
	t.Parallel()
	f := kctesting.NewClusterFixture()
	var patched []string
	f.Dynamic.PrependReactor("patch", "*", func(action k8stesting.Action) (bool, runtime.Object, error) {
		p := action.(k8stesting.PatchActionImpl)
		patched = append(patched, p.GetName())
		obj := &unstructured.Unstructured{}
		require.NoError(t, obj.UnmarshalJSON(p.GetPatch()))
		return true, obj, nil
	})
	client := f.Client(k8s.WithNamespace("demo"))

	created, err := client.CreateFromYAML(context.Background(), []byte(manifest), true)
	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.Equal(t, []string{"first", "shop"}, patched)
}

func TestWaitForCreation(t *testing.T) {
	t.Parallel()
	ctx := kctesting.TestContext(t)

	t.Run("object exists", func(t *testing.T) {
		t.Parallel()
		obj := kctesting.PingSource("ping", "demo").Build()
		client := kctesting.NewClusterFixture(obj).Client()
		assert.NoError(t, client.WaitForCreation(ctx, obj))
	})

	t.Run("object never appears", func(t *testing.T) {
		t.Parallel()
		client := kctesting.NewClusterFixture().Client(k8s.WithWaitTimeout(20*time.Millisecond, 5*time.Millisecond))
		err := client.WaitForCreation(ctx, kctesting.PingSource("ping", "demo").Build())
		require.Error(t, err)
		assert.ErrorIs(t, err, retry.ErrNotDone)
	})

	t.Run("object appears after a few polls", func(t *testing.T) {
		t.Parallel()
		f := kctesting.NewClusterFixture()
		calls := 0
		f.Dynamic.PrependReactor("get", "pingsources", func(k8stesting.Action) (bool, runtime.Object, error) {
			calls++
			if calls < 3 {
				return true, nil, apierrors.NewNotFound(v1alpha1.SourceGVR("PingSource").GroupResource(), "ping")
			}
			return true, kctesting.PingSource("ping", "demo").Build(), nil
		})
		client := f.Client(k8s.WithWaitTimeout(time.Second, time.Millisecond))
		require.NoError(t, client.WaitForCreation(ctx, kctesting.PingSource("ping", "demo").Build()))
		assert.Equal(t, 3, calls)
	})

	t.Run("forbidden ends the wait", func(t *testing.T) {
		t.Parallel()
		f := kctesting.NewClusterFixture()
		calls := 0
		f.Dynamic.PrependReactor("get", "pingsources", func(k8stesting.Action) (bool, runtime.Object, error) {
			calls++
			return true, nil, apierrors.NewForbidden(v1alpha1.SourceGVR("PingSource").GroupResource(), "ping", errors.New("no access"))
		})
		client := f.Client(k8s.WithWaitTimeout(time.Second, time.Millisecond))
		err := client.WaitForCreation(ctx, kctesting.PingSource("ping", "demo").Build())
		require.Error(t, err)
		assert.True(t, apierrors.IsForbidden(err))
		assert.True(t, retry.IsPermanent(err))
		assert.Equal(t, 1, calls)
	})
}

func TestPodsAndEvents(t *testing.T) {
	t.Parallel()
	ctx := kctesting.TestContext(t)
	pod := func(name string, l map[string]string) *corev1.Pod {
		return &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "demo", Labels: l}}
	}
	event := func(name, kind, obj string) *corev1.Event {
		return &corev1.Event{
			ObjectMeta:     metav1.ObjectMeta{Name: name, Namespace: "demo"},
			InvolvedObject: corev1.ObjectReference{Kind: kind, Name: obj},
			Reason:         name,
		}
	}
	f := kctesting.NewClusterFixture().WithTyped(
		pod("agent-1", map[string]string{"app": "agent"}),
		pod("agent-2", map[string]string{"app": "agent"}),
		pod("web-1", map[string]string{"app": "web"}),
		event("scheduled", "DaemonSet", "agent"),
		event("other-kind", "Deployment", "agent"),
		event("other-name", "DaemonSet", "web"),
	)
	client := f.Client()

	pods, err := client.Pods(ctx, "demo", labels.SelectorFromSet(labels.Set{"app": "agent"}))
	require.NoError(t, err)
	var names []string
	for _, p := range pods {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"agent-1", "agent-2"}, names)

	events, err := client.Events(ctx, "demo", "DaemonSet", "agent")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "scheduled", events[0].Reason)
}

func TestSubscribe(t *testing.T) {
	t.Parallel()
	ctx := kctesting.TestContext(t)
	f := kctesting.NewClusterFixture(
		kctesting.KnativeService("b-svc", "demo").Build(),
		kctesting.KnativeService("a-svc", "demo").Build(),
		kctesting.KnativeService("elsewhere", "other").Build(),
	)
	client := f.Client()

	sub, err := client.Subscribe(ctx, "demo", v1alpha1.ServingServiceGVR, v1alpha1.BrokerGVR)
	require.NoError(t, err)
	defer sub.Stop()

	kctesting.RequireLoaded(t, sub, v1alpha1.ServingServiceGVR, v1alpha1.BrokerGVR)

	col := sub.Collection(v1alpha1.ServingServiceGVR)
	require.NoError(t, col.Err)
	require.Len(t, col.Items, 2)
	assert.Equal(t, "a-svc", col.Items[0].GetName())
	assert.Equal(t, "b-svc", col.Items[1].GetName())
	assert.Empty(t, sub.Collection(v1alpha1.BrokerGVR).Items)

	_, err = client.Create(ctx, kctesting.Broker("default", "demo").Build())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		select {
		case <-sub.Changes():
		default:
		}
		return len(sub.Collection(v1alpha1.BrokerGVR).Items) == 1
	}, 5*time.Second, 10*time.Millisecond)

	missing := sub.Collection(v1alpha1.ChannelGVR)
	assert.Error(t, missing.Err)
	assert.False(t, missing.Loaded)
}

func TestSubscribe_NoResources(t *testing.T) {
	t.Parallel()
	_, err := kctesting.NewClusterFixture().Client().Subscribe(context.Background(), "demo")
	assert.Error(t, err)
}

func TestNewFromKubeconfig_InvalidPath(t *testing.T) {
	t.Parallel()
	_, err := k8s.NewFromKubeconfig("/nonexistent/kubeconfig", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kubeconfig")
}

func TestNewFromClients_Defaults(t *testing.T) {
	t.Parallel()
	client := kctesting.NewClusterFixture().Client()
	assert.Equal(t, "default", client.Namespace())
	assert.Equal(t, k8s.DefaultFieldManager, client.FieldManager())

	mapping, err := client.ResourceFor(v1alpha1.VirtualMachineGVK)
	require.NoError(t, err)
	assert.Equal(t, v1alpha1.VirtualMachineGVR, mapping.Resource)
}
