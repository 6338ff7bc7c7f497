// Package v1alpha1 contains the typed shapes of the objects kconsole creates
// through its wizards, and the group/version/resource coordinates of the
// objects it reads as sink candidates or lists in tables.
//
// The types are plain JSON-tagged structs. They are never registered with a
// scheme; callers convert them with runtime.DefaultUnstructuredConverter and
// hand the result to the generic create API.
package v1alpha1

import (
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

const (
	// BrokerKind is the kind whose owned objects are never offered as sinks.
	BrokerKind = "Broker"

	// TemplateLabel records the template a virtual machine was created from.
	TemplateLabel = "vm.kubevirt.io/template"

	// PartOfLabel groups created objects into an application.
	PartOfLabel = "app.kubernetes.io/part-of"

	// DescriptionAnnotation carries the free-form description entered in a wizard.
	DescriptionAnnotation = "description"
)

var (
	// VirtualMachineGVK is the kind created by the VM wizard.
	VirtualMachineGVK = schema.GroupVersionKind{Group: "kubevirt.io", Version: "v1", Kind: "VirtualMachine"}
	// VirtualMachineGVR is the resource backing VirtualMachineGVK.
	VirtualMachineGVR = schema.GroupVersionResource{Group: "kubevirt.io", Version: "v1", Resource: "virtualmachines"}

	// SourcesGroupVersion is the group/version of every event source kind.
	SourcesGroupVersion = schema.GroupVersion{Group: "sources.knative.dev", Version: "v1"}

	// ServingServiceGVR lists Knative services ("service-like" sink candidates).
	ServingServiceGVR = schema.GroupVersionResource{Group: "serving.knative.dev", Version: "v1", Resource: "services"}
	// ChannelGVR lists generic Knative channels ("channel-like" sink candidates).
	ChannelGVR = schema.GroupVersionResource{Group: "messaging.knative.dev", Version: "v1", Resource: "channels"}
	// InMemoryChannelGVR lists in-memory channels.
	InMemoryChannelGVR = schema.GroupVersionResource{Group: "messaging.knative.dev", Version: "v1", Resource: "inmemorychannels"}
	// BrokerGVR lists Knative brokers ("broker-like" sink candidates).
	BrokerGVR = schema.GroupVersionResource{Group: "eventing.knative.dev", Version: "v1", Resource: "brokers"}

	// DaemonSetGVR is listed by the daemon set table.
	DaemonSetGVR = schema.GroupVersionResource{Group: "apps", Version: "v1", Resource: "daemonsets"}
)

// SourceGVK returns the GroupVersionKind of an event source kind.
func SourceGVK(kind string) schema.GroupVersionKind {
	return SourcesGroupVersion.WithKind(kind)
}

// SourceGVR returns the resource of an event source kind.
func SourceGVR(kind string) schema.GroupVersionResource {
	return SourcesGroupVersion.WithResource(strings.ToLower(kind) + "s")
}

// SourceKinds lists the event source kinds the console creates.
var SourceKinds = []string{"PingSource", "ApiServerSource", "ContainerSource", "SinkBinding"}

// ListKinds maps every resource kconsole lists to its list kind. Fake dynamic
// clients and informers need this mapping to decode list responses.
func ListKinds() map[schema.GroupVersionResource]string {
	kinds := map[schema.GroupVersionResource]string{
		VirtualMachineGVR:  "VirtualMachineList",
		ServingServiceGVR:  "ServiceList",
		ChannelGVR:         "ChannelList",
		InMemoryChannelGVR: "InMemoryChannelList",
		BrokerGVR:          "BrokerList",
		DaemonSetGVR:       "DaemonSetList",
	}
	for _, k := range SourceKinds {
		kinds[SourceGVR(k)] = k + "List"
	}
	return kinds
}
