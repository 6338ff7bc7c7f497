package wizard

import (
	"errors"
	"fmt"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Controller state errors.
var (
	ErrBusy        = errors.New("a submission is in progress")
	ErrClosed      = errors.New("wizard is closed")
	ErrNotAtReview = errors.New("submit is only possible from the review step")
	ErrNoCreator   = errors.New("wizard has no creator configured")
	ErrCancelled   = errors.New("wizard was cancelled while submitting; the response was ignored")
	ErrNoSteps     = errors.New("wizard needs at least one step")
)

// ValidationKind classifies a failed forward transition.
type ValidationKind string

const (
	// FieldValidation means a required field is missing.
	FieldValidation ValidationKind = "FieldValidationError"
	// StepValidation means a value or a combination of values is invalid.
	StepValidation ValidationKind = "StepValidationError"
	// WarningValidation means the step only raised warnings, which the
	// caller did not choose to ignore.
	WarningValidation ValidationKind = "ValidationWarning"
)

// ValidationError is returned by Advance when the active step does not
// validate. It is local and recoverable: the step stays active.
type ValidationError struct {
	Kind     ValidationKind
	Step     string
	Errors   field.ErrorList
	Warnings []string
}

func newValidationError(step string, res Result) *ValidationError {
	if len(res.Errors) == 0 {
		return &ValidationError{Kind: WarningValidation, Step: step, Warnings: res.Warnings}
	}
	kind := FieldValidation
	for _, e := range res.Errors {
		if e.Type != field.ErrorTypeRequired {
			kind = StepValidation
			break
		}
	}
	return &ValidationError{Kind: kind, Step: step, Errors: res.Errors, Warnings: res.Warnings}
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s: %s", e.Step, strings.Join(e.Warnings, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Step, e.Errors.ToAggregate().Error())
}

// Message returns the human-readable text shown under the form, one line
// per problem.
func (e *ValidationError) Message() string {
	lines := make([]string, 0, len(e.Errors)+len(e.Warnings))
	for _, fe := range e.Errors {
		if fe.Detail != "" {
			lines = append(lines, fe.Detail)
			continue
		}
		lines = append(lines, fe.Error())
	}
	lines = append(lines, e.Warnings...)
	return strings.Join(lines, "\n")
}

// IsFieldValidation reports whether err is a missing-field validation error.
func IsFieldValidation(err error) bool {
	return validationKind(err) == FieldValidation
}

// IsStepValidation reports whether err is a cross-field validation error.
func IsStepValidation(err error) bool {
	return validationKind(err) == StepValidation
}

// IsWarning reports whether err only carries warnings.
func IsWarning(err error) bool {
	return validationKind(err) == WarningValidation
}

func validationKind(err error) ValidationKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

// SubmissionError is returned when the backend rejects the create request.
// Message is the backend's rejection text, unmodified.
type SubmissionError struct {
	Message string
	Err     error
}

func newSubmissionError(err error) *SubmissionError {
	msg := err.Error()
	var status apierrors.APIStatus
	if errors.As(err, &status) && status.Status().Message != "" {
		msg = status.Status().Message
	}
	return &SubmissionError{Message: msg, Err: err}
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// IsSubmissionError reports whether err is a backend rejection.
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}

// ReadinessError is returned when the object was created but waiting for it
// failed. The object exists on the server; retrying only waits again.
type ReadinessError struct {
	Object *unstructured.Unstructured
	Err    error
}

func (e *ReadinessError) Error() string {
	return fmt.Sprintf("%s %s was created but is not ready: %v", e.Object.GetKind(), e.Object.GetName(), e.Err)
}

func (e *ReadinessError) Unwrap() error {
	return e.Err
}

// IsReadinessError reports whether err is a failed wait for an object that
// was already created.
func IsReadinessError(err error) bool {
	var re *ReadinessError
	return errors.As(err, &re)
}
