package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func render(text string) RenderFunc {
	return func(context.Context, *unstructured.Unstructured) (string, error) {
		return text, nil
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register(Provider{Kind: "DaemonSet", Key: "metrics", Title: "Metrics", Render: render("m")}))
	require.NoError(t, r.Register(Provider{Kind: "DaemonSet", Key: "logs", Title: "Logs", Render: render("l")}))
	require.NoError(t, r.Register(Provider{Kind: "Service", Key: "routes", Render: render("r")}))

	got := r.ProvidersFor("DaemonSet")
	require.Len(t, got, 2)
	assert.Equal(t, "metrics", got[0].Key, "registration order is kept")

	routes := r.ProvidersFor("Service")
	require.Len(t, routes, 1)
	out, err := routes[0].Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "r", out)
}

func TestRegister_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    Provider
	}{
		{"no kind", Provider{Key: "k", Render: render("")}},
		{"no key", Provider{Kind: "Pod", Render: render("")}},
		{"no render", Provider{Kind: "Pod", Key: "k"}},
		{"duplicate", Provider{Kind: "Pod", Key: "dup", Render: render("")}},
	}

	r := New()
	require.NoError(t, r.Register(Provider{Kind: "Pod", Key: "dup", Render: render("")}))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, r.Register(tt.p))
		})
	}
}

func TestSeal(t *testing.T) {
	t.Parallel()

	r := New()
	r.Seal()
	assert.ErrorIs(t, r.Register(Provider{Kind: "Pod", Key: "k", Render: render("")}), ErrSealed)
}

func TestProvidersFor_ReturnsCopy(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register(Provider{Kind: "Pod", Key: "a", Render: render("")}))
	got := r.ProvidersFor("Pod")
	got[0].Key = "mutated"
	assert.Equal(t, "a", r.ProvidersFor("Pod")[0].Key)
	assert.Empty(t, r.ProvidersFor("Unknown"))
}

func TestInit_RunsOnce(t *testing.T) {
	calls := 0
	register := func(r *Registry) error {
		calls++
		return r.Register(Provider{Kind: "DaemonSet", Key: "init", Render: render("")})
	}

	require.NoError(t, Init(register))
	require.NoError(t, Init(register))
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, Default().Register(Provider{Kind: "Pod", Key: "late", Render: render("")}), ErrSealed)
	require.Len(t, Default().ProvidersFor("DaemonSet"), 1)
	assert.Equal(t, "init", Default().ProvidersFor("DaemonSet")[0].Key)
}
