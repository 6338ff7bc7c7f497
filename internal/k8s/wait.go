package k8s

import (
	"context"
	"fmt"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/imamik/kconsole/internal/util/retry"
)

// WaitForCreation polls until obj can be read back. Not-found answers are
// retried; any other API error ends the wait.
func (c *Client) WaitForCreation(ctx context.Context, obj *unstructured.Unstructured) error {
	ri, err := c.resourceFor(obj)
	if err != nil {
		return err
	}
	opts := append([]retry.Option{
		retry.WithNotify(func(attempt int, err error, next time.Duration) {
			c.log.V(1).Info("waiting for object", "kind", obj.GetKind(), "name", obj.GetName(), "attempt", attempt, "next", next.String())
		}),
	}, c.waitOpts...)

	err = retry.Until(ctx, func(ctx context.Context) (bool, error) {
		_, err := ri.Get(ctx, obj.GetName(), metav1.GetOptions{})
		switch {
		case err == nil:
			return true, nil
		case apierrors.IsNotFound(err):
			return false, nil
		default:
			return false, retry.Permanent(err)
		}
	}, opts...)
	if err != nil {
		return fmt.Errorf("%s %s did not become available: %w", obj.GetKind(), obj.GetName(), err)
	}
	return nil
}
