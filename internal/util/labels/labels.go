package labels

import (
	"strings"

	"github.com/gosimple/slug"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/imamik/kconsole/api/v1alpha1"
)

// Label keys.
const (
	// KeyPartOf groups created objects into an application.
	KeyPartOf = v1alpha1.PartOfLabel

	// KeyTemplate records the template a virtual machine was created from.
	KeyTemplate = v1alpha1.TemplateLabel

	// Flag prefixes; the flag value is always "true".
	PrefixOS       = "os.template.kubevirt.io/"
	PrefixWorkload = "workload.template.kubevirt.io/"
	PrefixFlavor   = "flavor.template.kubevirt.io/"
)

// LabelBuilder provides a fluent interface for building object labels.
// Empty values are skipped, so callers can pass optional form fields
// straight through.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates an empty label builder.
func NewLabelBuilder() *LabelBuilder {
	return &LabelBuilder{labels: map[string]string{}}
}

// WithTemplate records the template name.
func (lb *LabelBuilder) WithTemplate(template string) *LabelBuilder {
	return lb.set(KeyTemplate, template)
}

// WithFlag adds prefix+name="true", the kubevirt convention for os,
// workload and flavor markers.
func (lb *LabelBuilder) WithFlag(prefix, name string) *LabelBuilder {
	if name == "" {
		return lb
	}
	lb.labels[prefix+name] = "true"
	return lb
}

// WithPartOf adds the application label, sanitised by PartOfValue.
func (lb *LabelBuilder) WithPartOf(app string) *LabelBuilder {
	return lb.set(KeyPartOf, PartOfValue(app))
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels, or nil when no label was set.
func (lb *LabelBuilder) Build() map[string]string {
	if len(lb.labels) == 0 {
		return nil
	}
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

func (lb *LabelBuilder) set(key, value string) *LabelBuilder {
	if value != "" {
		lb.labels[key] = value
	}
	return lb
}

// PartOfValue sanitises an application name into a label value.
func PartOfValue(app string) string {
	v := slug.Make(app)
	if len(v) > validation.LabelValueMaxLength {
		v = strings.TrimRight(v[:validation.LabelValueMaxLength], "-")
	}
	return v
}

// SelectorForApplication returns a label selector string for all objects
// of an application.
func SelectorForApplication(app string) string {
	return KeyPartOf + "=" + PartOfValue(app)
}
