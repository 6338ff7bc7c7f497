package wizard

import (
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/imamik/kconsole/internal/form"
)

// Step is one panel of a wizard. It owns a subset of the form's fields and
// decides whether they are good enough to move on.
type Step struct {
	// ID identifies the step in events, metrics and errors.
	ID string
	// Title is shown to the user.
	Title string
	// Fields are the form paths this step owns. The submission payload is
	// the union of the fields of all active steps.
	Fields []string

	// Validate runs on every forward transition out of the step. A nil
	// Validate always passes.
	Validate func(s *form.State) Result
	// Skip is evaluated once, against the initial state, when the wizard
	// starts. Skipped steps never become active.
	Skip func(initial *form.State) bool
	// OnEnter runs after the step becomes active through Advance. It may
	// derive values (defaults, auto-selection) from earlier steps.
	OnEnter func(s *form.State)
}

// Result is the outcome of a step validation.
type Result struct {
	Errors   field.ErrorList
	Warnings []string
}

// OK reports whether the result carries neither errors nor warnings.
func (r Result) OK() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

// Merge appends another result.
func (r Result) Merge(other Result) Result {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	return r
}

// StepInfo describes an active step without exposing its callbacks.
type StepInfo struct {
	Index int
	ID    string
	Title string
}

func (s Step) validate(state *form.State) Result {
	if s.Validate == nil {
		return Result{}
	}
	return s.Validate(state)
}

// Required returns a required-value error for path when it is empty.
func Required(s *form.State, path, detail string) *field.Error {
	if s.Has(path) {
		return nil
	}
	return field.Required(fieldPath(path), detail)
}

// Invalid returns an invalid-value error for path.
func Invalid(path string, value any, detail string) *field.Error {
	return field.Invalid(fieldPath(path), value, detail)
}

// Append adds err to list when it is not nil.
func Append(list field.ErrorList, errs ...*field.Error) field.ErrorList {
	for _, err := range errs {
		if err != nil {
			list = append(list, err)
		}
	}
	return list
}

func fieldPath(path string) *field.Path {
	return field.NewPath(path)
}
