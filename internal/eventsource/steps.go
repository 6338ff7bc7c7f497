package eventsource

import (
	"strings"

	"github.com/robfig/cron/v3"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/imamik/kconsole/internal/form"
	"github.com/imamik/kconsole/internal/sink"
	"github.com/imamik/kconsole/internal/util/naming"
	"github.com/imamik/kconsole/internal/wizard"
)

// Step IDs.
const (
	StepSource = "source"
	StepSink   = "sink" // owned by sink.Selector
	StepNaming = "naming"
	StepReview = "review"
)

// Steps returns the event source form steps. The sink step comes from the
// selector, which keeps the candidate lists of this session.
func Steps(selector *sink.Selector) []wizard.Step {
	return []wizard.Step{
		{
			ID:       StepSource,
			Title:    "Source",
			Fields:   sourceFields(),
			Validate: validateSource,
		},
		selector.Step(),
		{
			ID:       StepNaming,
			Title:    "General",
			Fields:   []string{FieldName, FieldApplication},
			Validate: validateNaming,
			OnEnter:  defaultName,
		},
		{
			ID:    StepReview,
			Title: "Review",
		},
	}
}

func validateSource(s *form.State) wizard.Result {
	var errs field.ErrorList
	kind := s.String(FieldKind)
	switch kind {
	case "":
		return wizard.Result{Errors: field.ErrorList{field.Required(field.NewPath(FieldKind), "select a source type")}}
	case KindPing:
		errs = wizard.Append(errs, wizard.Required(s, FieldPingSchedule, "schedule is required"))
		if sched := s.String(FieldPingSchedule); sched != "" && !validCron(sched) {
			errs = append(errs, wizard.Invalid(FieldPingSchedule, sched, "must be a cron expression with 5 fields or a macro such as @hourly"))
		}
	case KindAPIServer:
		errs = append(errs, validateAPIServer(s)...)
	case KindContainer:
		errs = wizard.Append(errs, wizard.Required(s, FieldContainerImage, "image is required"))
		for _, e := range envVars(s) {
			for _, msg := range validation.IsEnvVarName(e.Name) {
				errs = append(errs, wizard.Invalid(FieldContainerEnv, e.Name, msg))
			}
		}
	case KindSinkBinding:
		errs = wizard.Append(errs,
			wizard.Required(s, FieldSubjectAPIVersion, "subject apiVersion is required"),
			wizard.Required(s, FieldSubjectKind, "subject kind is required"),
			wizard.Required(s, FieldSubjectName, "subject name is required"),
		)
		if v := s.String(FieldSubjectAPIVersion); v != "" {
			if _, err := schema.ParseGroupVersion(v); err != nil {
				errs = append(errs, wizard.Invalid(FieldSubjectAPIVersion, v, err.Error()))
			}
		}
	default:
		errs = append(errs, field.NotSupported(field.NewPath(FieldKind), kind, Kinds))
	}
	return wizard.Result{Errors: errs}
}

func validateAPIServer(s *form.State) field.ErrorList {
	var errs field.ErrorList
	if mode := s.String(FieldAPIServerMode); mode != "" && mode != ModeReference && mode != ModeResource {
		errs = append(errs, field.NotSupported(field.NewPath(FieldAPIServerMode), mode, []string{ModeReference, ModeResource}))
	}
	if sa := s.String(FieldAPIServerServiceAccount); sa != "" {
		for _, msg := range validation.IsDNS1123Subdomain(sa) {
			errs = append(errs, wizard.Invalid(FieldAPIServerServiceAccount, sa, msg))
		}
	}
	res := resources(s)
	if len(res) == 0 {
		return append(errs, field.Required(field.NewPath(FieldAPIServerResources), "add at least one resource"))
	}
	for i, r := range res {
		p := field.NewPath(FieldAPIServerResources).Index(i)
		if r.APIVersion == "" {
			errs = append(errs, field.Required(p.Child("apiVersion"), "apiVersion is required"))
		}
		if r.Kind == "" {
			errs = append(errs, field.Required(p.Child("kind"), "kind is required"))
		}
	}
	return errs
}

func validateNaming(s *form.State) wizard.Result {
	var errs field.ErrorList
	errs = wizard.Append(errs, wizard.Required(s, FieldName, "name is required"))
	if name := s.String(FieldName); name != "" {
		for _, msg := range validation.IsDNS1123Label(name) {
			errs = append(errs, wizard.Invalid(FieldName, name, msg))
		}
	}
	return wizard.Result{Errors: errs}
}

// defaultName proposes {kebab-kind}-{suffix} unless the user typed a name
// or the caller preset one. A generated name follows kind changes.
func defaultName(s *form.State) {
	kind := s.String(FieldKind)
	if kind == "" || s.Touched(FieldName) {
		return
	}
	cur := s.String(FieldName)
	if cur != "" && (cur == s.InitialString(FieldName) || strings.HasPrefix(cur, naming.Kebab(kind)+"-")) {
		return
	}
	_ = s.SetUntouched(FieldName, naming.Default(kind))
}

// validCron accepts the five-field schedules and descriptors the ping
// source adapter understands, with every field range-checked.
func validCron(expr string) bool {
	_, err := cron.ParseStandard(strings.TrimSpace(expr))
	return err == nil
}

func resources(s *form.State) []Resource {
	v, _ := s.Get(FieldAPIServerResources)
	r, _ := v.([]Resource)
	return r
}

func envVars(s *form.State) []EnvVar {
	v, _ := s.Get(FieldContainerEnv)
	e, _ := v.([]EnvVar)
	return e
}
