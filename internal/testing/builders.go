package testing

import (
	"maps"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"

	"github.com/imamik/kconsole/api/v1alpha1"
)

// ObjectBuilder provides a fluent interface for constructing test objects.
// Each method returns a new builder (immutable) for chaining.
type ObjectBuilder struct {
	obj *unstructured.Unstructured
}

// NewObject starts a builder for an object of gvk.
func NewObject(gvk schema.GroupVersionKind, name string) *ObjectBuilder {
	u := &unstructured.Unstructured{Object: map[string]any{}}
	u.SetGroupVersionKind(gvk)
	u.SetName(name)
	return &ObjectBuilder{obj: u}
}

// InNamespace sets the namespace.
func (b *ObjectBuilder) InNamespace(ns string) *ObjectBuilder {
	nb := b.clone()
	nb.obj.SetNamespace(ns)
	return nb
}

// WithLabels merges labels into the object's labels.
func (b *ObjectBuilder) WithLabels(l map[string]string) *ObjectBuilder {
	nb := b.clone()
	merged := nb.obj.GetLabels()
	if merged == nil {
		merged = map[string]string{}
	}
	maps.Copy(merged, l)
	nb.obj.SetLabels(merged)
	return nb
}

// OwnedBy appends an owner reference.
func (b *ObjectBuilder) OwnedBy(apiVersion, kind, name string) *ObjectBuilder {
	nb := b.clone()
	refs := nb.obj.GetOwnerReferences()
	ref := unstructuredOwner(apiVersion, kind, name)
	nb.obj.SetOwnerReferences(append(refs, ref))
	return nb
}

// WithField sets value at path. Values must be deep-copyable JSON types.
func (b *ObjectBuilder) WithField(value any, path ...string) *ObjectBuilder {
	nb := b.clone()
	if err := unstructured.SetNestedField(nb.obj.Object, value, path...); err != nil {
		panic(err)
	}
	return nb
}

// Build returns a copy of the built object.
func (b *ObjectBuilder) Build() *unstructured.Unstructured {
	return b.obj.DeepCopy()
}

func (b *ObjectBuilder) clone() *ObjectBuilder {
	return &ObjectBuilder{obj: b.obj.DeepCopy()}
}

// KnativeService starts a serving.knative.dev/v1 Service.
func KnativeService(name, ns string) *ObjectBuilder {
	return NewObject(v1alpha1.ServingServiceGVR.GroupVersion().WithKind("Service"), name).InNamespace(ns)
}

// Channel starts a messaging.knative.dev/v1 InMemoryChannel.
func Channel(name, ns string) *ObjectBuilder {
	return NewObject(v1alpha1.InMemoryChannelGVR.GroupVersion().WithKind("InMemoryChannel"), name).InNamespace(ns)
}

// Broker starts an eventing.knative.dev/v1 Broker.
func Broker(name, ns string) *ObjectBuilder {
	return NewObject(v1alpha1.BrokerGVR.GroupVersion().WithKind(v1alpha1.BrokerKind), name).InNamespace(ns)
}

// DaemonSet starts an apps/v1 DaemonSet with the given scheduling counts.
func DaemonSet(name, ns string, current, desired int64) *ObjectBuilder {
	return NewObject(v1alpha1.DaemonSetGVR.GroupVersion().WithKind("DaemonSet"), name).
		InNamespace(ns).
		WithField(current, "status", "currentNumberScheduled").
		WithField(desired, "status", "desiredNumberScheduled")
}

// PingSource starts a sources.knative.dev/v1 PingSource.
func PingSource(name, ns string) *ObjectBuilder {
	return NewObject(v1alpha1.SourceGVK("PingSource"), name).InNamespace(ns)
}

func unstructuredOwner(apiVersion, kind, name string) metav1.OwnerReference {
	return metav1.OwnerReference{APIVersion: apiVersion, Kind: kind, Name: name, UID: types.UID(name + "-uid")}
}
