package k8s

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/client-go/dynamic"
)

// ErrNoKind is returned for objects without apiVersion or kind.
var ErrNoKind = errors.New("object has no apiVersion or kind set")

// Create issues exactly one create request for obj. API rejections are
// returned unwrapped so that their status message reaches the user as is.
func (c *Client) Create(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	ri, err := c.resourceFor(obj)
	if err != nil {
		return nil, err
	}
	c.log.V(1).Info("creating object", "kind", obj.GetKind(), "name", obj.GetName(), "namespace", obj.GetNamespace())
	return ri.Create(ctx, obj, metav1.CreateOptions{FieldManager: c.fieldManager})
}

// Apply server-side applies obj.
func (c *Client) Apply(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	ri, err := c.resourceFor(obj)
	if err != nil {
		return nil, err
	}
	data, err := obj.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal object to JSON: %w", err)
	}
	return ri.Patch(ctx, obj.GetName(), types.ApplyPatchType, data, metav1.PatchOptions{FieldManager: c.fieldManager})
}

// Decode splits multi-document YAML or JSON into objects. Empty documents
// are skipped.
func Decode(data []byte) ([]*unstructured.Unstructured, error) {
	decoder := yaml.NewYAMLOrJSONDecoder(bytes.NewReader(data), 4096)
	var out []*unstructured.Unstructured
	for doc := 0; ; doc++ {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("failed to decode document %d: %w", doc, err)
		}
		// Comment-only and empty documents decode to null.
		if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
			continue
		}
		obj := &unstructured.Unstructured{}
		if err := obj.UnmarshalJSON(raw); err != nil {
			return nil, fmt.Errorf("failed to decode document %d: %w", doc, err)
		}
		out = append(out, obj)
	}
}

// CreateFromYAML creates every document of a multi-document manifest, in
// order, and stops at the first failure. With serverSide the documents are
// applied instead.
func (c *Client) CreateFromYAML(ctx context.Context, data []byte, serverSide bool) ([]*unstructured.Unstructured, error) {
	objs, err := Decode(data)
	if err != nil {
		return nil, err
	}
	created := make([]*unstructured.Unstructured, 0, len(objs))
	for _, obj := range objs {
		var res *unstructured.Unstructured
		if serverSide {
			res, err = c.Apply(ctx, obj)
		} else {
			res, err = c.Create(ctx, obj)
		}
		if err != nil {
			return created, fmt.Errorf("%s %s: %w", obj.GetKind(), obj.GetName(), err)
		}
		created = append(created, res)
	}
	return created, nil
}

// Get reads one object.
func (c *Client) Get(ctx context.Context, gvr schema.GroupVersionResource, namespace, name string) (*unstructured.Unstructured, error) {
	return c.resource(gvr, namespace).Get(ctx, name, metav1.GetOptions{})
}

// List reads every object of gvr in namespace; an empty namespace lists
// across namespaces.
func (c *Client) List(ctx context.Context, gvr schema.GroupVersionResource, namespace string) ([]*unstructured.Unstructured, error) {
	list, err := c.resource(gvr, namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	out := make([]*unstructured.Unstructured, 0, len(list.Items))
	for i := range list.Items {
		out = append(out, &list.Items[i])
	}
	return out, nil
}

// ResourceFor maps a kind to its resource.
func (c *Client) ResourceFor(gvk schema.GroupVersionKind) (*meta.RESTMapping, error) {
	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to get REST mapping for %v: %w", gvk, err)
	}
	return mapping, nil
}

func (c *Client) resourceFor(obj *unstructured.Unstructured) (dynamic.ResourceInterface, error) {
	gvk := obj.GroupVersionKind()
	if gvk.Kind == "" || gvk.Version == "" {
		return nil, ErrNoKind
	}
	mapping, err := c.ResourceFor(gvk)
	if err != nil {
		return nil, err
	}
	if mapping.Scope.Name() != meta.RESTScopeNameNamespace {
		return c.dynamic.Resource(mapping.Resource), nil
	}
	if obj.GetNamespace() == "" {
		obj.SetNamespace(c.namespace)
	}
	return c.dynamic.Resource(mapping.Resource).Namespace(obj.GetNamespace()), nil
}

func (c *Client) resource(gvr schema.GroupVersionResource, namespace string) dynamic.ResourceInterface {
	if namespace == "" {
		return c.dynamic.Resource(gvr)
	}
	return c.dynamic.Resource(gvr).Namespace(namespace)
}
