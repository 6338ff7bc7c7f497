package eventsource

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/imamik/kconsole/api/v1alpha1"
	"github.com/imamik/kconsole/internal/sink"
	"github.com/imamik/kconsole/internal/util/labels"
	"github.com/imamik/kconsole/internal/wizard"
)

const containerName = "source"

// Builder converts an event source payload into a sources.knative.dev object.
func Builder(namespace string) wizard.Builder {
	return func(p wizard.Payload) (*unstructured.Unstructured, error) {
		src, err := BuildSource(namespace, p)
		if err != nil {
			return nil, err
		}
		obj, err := runtime.DefaultUnstructuredConverter.ToUnstructured(src)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", p.String(FieldKind), err)
		}
		u := &unstructured.Unstructured{Object: obj}
		u.SetGroupVersionKind(v1alpha1.SourceGVK(p.String(FieldKind)))
		return u, nil
	}
}

// BuildSource builds the typed event source for a payload. The returned
// value is one of the source types of api/v1alpha1.
func BuildSource(namespace string, p wizard.Payload) (metav1.Object, error) {
	ref := sink.ReferenceFrom(p)
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sink: %w", err)
	}
	spec := v1alpha1.SourceSpec{Sink: ref.Destination(namespace)}
	kind := p.String(FieldKind)
	meta := objectMeta(namespace, p)
	tm := metav1.TypeMeta{APIVersion: v1alpha1.SourcesGroupVersion.String(), Kind: kind}

	switch kind {
	case KindPing:
		return &v1alpha1.PingSource{TypeMeta: tm, ObjectMeta: meta, Spec: v1alpha1.PingSourceSpec{
			SourceSpec: spec,
			Schedule:   p.String(FieldPingSchedule),
			Data:       p.String(FieldPingData),
		}}, nil

	case KindAPIServer:
		res, err := wizard.List[Resource](p, FieldAPIServerResources)
		if err != nil {
			return nil, err
		}
		mode := p.String(FieldAPIServerMode)
		if mode == "" {
			mode = ModeReference
		}
		return &v1alpha1.ApiServerSource{TypeMeta: tm, ObjectMeta: meta, Spec: v1alpha1.ApiServerSourceSpec{
			SourceSpec:         spec,
			Mode:               mode,
			ServiceAccountName: p.String(FieldAPIServerServiceAccount),
			Resources:          res,
		}}, nil

	case KindContainer:
		args, err := wizard.List[string](p, FieldContainerArgs)
		if err != nil {
			return nil, err
		}
		env, err := wizard.List[EnvVar](p, FieldContainerEnv)
		if err != nil {
			return nil, err
		}
		c := corev1.Container{Name: containerName, Image: p.String(FieldContainerImage), Args: args}
		for _, e := range env {
			c.Env = append(c.Env, corev1.EnvVar{Name: e.Name, Value: e.Value})
		}
		src := &v1alpha1.ContainerSource{TypeMeta: tm, ObjectMeta: meta}
		src.Spec.SourceSpec = spec
		src.Spec.Template.Spec.Containers = []corev1.Container{c}
		return src, nil

	case KindSinkBinding:
		return &v1alpha1.SinkBinding{TypeMeta: tm, ObjectMeta: meta, Spec: v1alpha1.SinkBindingSpec{
			SourceSpec: spec,
			Subject: v1alpha1.KReference{
				APIVersion: p.String(FieldSubjectAPIVersion),
				Kind:       p.String(FieldSubjectKind),
				Name:       p.String(FieldSubjectName),
				Namespace:  namespace,
			},
		}}, nil
	}
	return nil, fmt.Errorf("unsupported source type %q", kind)
}

func objectMeta(namespace string, p wizard.Payload) metav1.ObjectMeta {
	return metav1.ObjectMeta{
		Name:      p.String(FieldName),
		Namespace: namespace,
		Labels:    labels.NewLabelBuilder().WithPartOf(p.String(FieldApplication)).Build(),
	}
}
