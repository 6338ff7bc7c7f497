package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Destination is where an event source delivers events. Exactly one of Ref
// and URI is set.
type Destination struct {
	Ref *KReference `json:"ref,omitempty"`
	URI string      `json:"uri,omitempty"`
}

// KReference addresses an in-cluster object.
type KReference struct {
	Kind       string `json:"kind"`
	Namespace  string `json:"namespace,omitempty"`
	Name       string `json:"name"`
	APIVersion string `json:"apiVersion"`
}

// SourceSpec is shared by every event source kind.
type SourceSpec struct {
	Sink Destination `json:"sink"`
}

// PingSource emits an event on a cron schedule.
type PingSource struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec PingSourceSpec `json:"spec"`
}

// PingSourceSpec holds the schedule and the event body.
type PingSourceSpec struct {
	SourceSpec `json:",inline"`

	Schedule string `json:"schedule"`
	Data     string `json:"data,omitempty"`
}

// ApiServerSource turns API server events into cloud events.
type ApiServerSource struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ApiServerSourceSpec `json:"spec"`
}

// ApiServerSourceSpec selects the watched resources.
type ApiServerSourceSpec struct {
	SourceSpec `json:",inline"`

	Mode               string                   `json:"mode,omitempty"`
	ServiceAccountName string                   `json:"serviceAccountName,omitempty"`
	Resources          []APIVersionKindSelector `json:"resources"`
}

// APIVersionKindSelector names a watched resource type.
type APIVersionKindSelector struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
}

// ContainerSource runs an image that produces events.
type ContainerSource struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ContainerSourceSpec `json:"spec"`
}

// ContainerSourceSpec holds the pod template of the producer.
type ContainerSourceSpec struct {
	SourceSpec `json:",inline"`

	Template corev1.PodTemplateSpec `json:"template"`
}

// SinkBinding injects the sink into an existing workload.
type SinkBinding struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec SinkBindingSpec `json:"spec"`
}

// SinkBindingSpec names the bound subject.
type SinkBindingSpec struct {
	SourceSpec `json:",inline"`

	Subject KReference `json:"subject"`
}
