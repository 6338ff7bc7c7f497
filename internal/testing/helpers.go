package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/imamik/kconsole/internal/k8s"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// RequireLoaded waits until every listed collection of sub finished its
// initial list.
func RequireLoaded(t *testing.T, sub *k8s.Subscription, gvrs ...schema.GroupVersionResource) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, gvr := range gvrs {
			if !sub.Collection(gvr).Loaded {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond, "collections never loaded")
}
