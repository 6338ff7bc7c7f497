package eventsource

import "github.com/imamik/kconsole/api/v1alpha1"

// Source kinds offered by the form.
const (
	KindPing        = "PingSource"
	KindAPIServer   = "ApiServerSource"
	KindContainer   = "ContainerSource"
	KindSinkBinding = "SinkBinding"
)

// Kinds lists the selectable source kinds in display order.
var Kinds = []string{KindPing, KindAPIServer, KindContainer, KindSinkBinding}

// Form field paths.
const (
	FieldKind = "type"

	FieldPingSchedule = "pingSource.schedule"
	FieldPingData     = "pingSource.data"

	FieldAPIServerMode           = "apiServerSource.mode"
	FieldAPIServerServiceAccount = "apiServerSource.serviceAccountName"
	FieldAPIServerResources      = "apiServerSource.resources"

	FieldContainerImage = "containerSource.image"
	FieldContainerArgs  = "containerSource.args"
	FieldContainerEnv   = "containerSource.env"

	FieldSubjectAPIVersion = "sinkBinding.subject.apiVersion"
	FieldSubjectKind       = "sinkBinding.subject.kind"
	FieldSubjectName       = "sinkBinding.subject.name"

	FieldName        = "name"
	FieldApplication = "application.name"
)

// API server source modes.
const (
	ModeReference = "Reference"
	ModeResource  = "Resource"
)

// kindFields are the source step fields belonging to each kind. Switching
// kinds clears the fields of every other kind.
var kindFields = map[string][]string{
	KindPing:        {FieldPingSchedule, FieldPingData},
	KindAPIServer:   {FieldAPIServerMode, FieldAPIServerServiceAccount, FieldAPIServerResources},
	KindContainer:   {FieldContainerImage, FieldContainerArgs, FieldContainerEnv},
	KindSinkBinding: {FieldSubjectAPIVersion, FieldSubjectKind, FieldSubjectName},
}

func sourceFields() []string {
	out := []string{FieldKind}
	for _, k := range Kinds {
		out = append(out, kindFields[k]...)
	}
	return out
}

// Resource is one resource type watched by an ApiServerSource.
type Resource = v1alpha1.APIVersionKindSelector

// EnvVar is one environment variable of a ContainerSource.
type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Subject is the workload a SinkBinding injects the sink into.
type Subject struct {
	APIVersion string
	Kind       string
	Name       string
}
