package sink

import (
	"net/url"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/imamik/kconsole/api/v1alpha1"
	"github.com/imamik/kconsole/internal/form"
)

// Type selects the variant of a Reference.
type Type string

const (
	TypeResource Type = "resource"
	TypeURI      Type = "uri"
)

// Form fields written by the selector.
const (
	FieldType       = "sinkType"
	FieldName       = "sink.name"
	FieldAPIVersion = "sink.apiVersion"
	FieldKind       = "sink.kind"
	FieldURI        = "sink.uri"
)

var (
	resourceFields = []string{FieldName, FieldAPIVersion, FieldKind}
	uriFields      = []string{FieldURI}
)

// Reference is where events are delivered: either an in-cluster resource
// or a URI. Only the fields of the active variant are meaningful.
type Reference struct {
	Type       Type
	Name       string
	APIVersion string
	Kind       string
	URI        string
}

// Values is the read side shared by a form state and a submission payload.
type Values interface {
	String(path string) string
}

// ReferenceFrom reads the sink fields of a form state or payload.
func ReferenceFrom(s Values) Reference {
	r := Reference{Type: Type(s.String(FieldType))}
	switch r.Type {
	case TypeResource:
		r.Name = s.String(FieldName)
		r.APIVersion = s.String(FieldAPIVersion)
		r.Kind = s.String(FieldKind)
	case TypeURI:
		r.URI = s.String(FieldURI)
	}
	return r
}

// Validate checks the active variant.
func (r Reference) Validate() error {
	return r.validate().ToAggregate()
}

func (r Reference) validate() field.ErrorList {
	var errs field.ErrorList
	switch r.Type {
	case TypeResource:
		if r.Name == "" {
			errs = append(errs, field.Required(field.NewPath(FieldName), "select a resource"))
		}
		if r.APIVersion == "" {
			errs = append(errs, field.Required(field.NewPath(FieldAPIVersion), "resource apiVersion is required"))
		}
		if r.Kind == "" {
			errs = append(errs, field.Required(field.NewPath(FieldKind), "resource kind is required"))
		}
	case TypeURI:
		if r.URI == "" {
			errs = append(errs, field.Required(field.NewPath(FieldURI), "enter a URI"))
		} else if u, err := url.Parse(r.URI); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, field.Invalid(field.NewPath(FieldURI), r.URI, "must be an absolute URI, e.g. http://cluster.example.com/svc"))
		}
	case "":
		errs = append(errs, field.Required(field.NewPath(FieldType), "choose resource or URI"))
	default:
		errs = append(errs, field.NotSupported(field.NewPath(FieldType), r.Type, []Type{TypeResource, TypeURI}))
	}
	return errs
}

// Destination converts the reference into the sink of an event source.
func (r Reference) Destination(namespace string) v1alpha1.Destination {
	if r.Type == TypeURI {
		return v1alpha1.Destination{URI: r.URI}
	}
	return v1alpha1.Destination{Ref: &v1alpha1.KReference{
		Kind:       r.Kind,
		Namespace:  namespace,
		Name:       r.Name,
		APIVersion: r.APIVersion,
	}}
}

func (r Reference) apply(s *form.State) error {
	for path, v := range map[string]string{FieldName: r.Name, FieldAPIVersion: r.APIVersion, FieldKind: r.Kind} {
		if err := s.Set(path, v); err != nil {
			return err
		}
	}
	return nil
}
