package sink

import (
	"errors"
	"fmt"
)

// NoCandidatesMessage is the advisory shown when nothing can be selected.
const NoCandidatesMessage = "No resources available. Select the URI option, or exit this form and create a Knative Service, Broker, or Channel first."

func newNoMatch(format string, a ...any) error {
	return noMatch{fmt.Errorf(format, a...)}
}

type noMatch struct{ error }

// IsNoMatch reports whether err means the selection matched no candidate.
func IsNoMatch(err error) bool {
	var e noMatch
	return errors.As(err, &e)
}

func newAmbiguous(format string, a ...any) error {
	return ambiguous{fmt.Errorf(format, a...)}
}

type ambiguous struct{ error }

// IsAmbiguous reports whether err means the selection matched several
// candidates.
func IsAmbiguous(err error) bool {
	var e ambiguous
	return errors.As(err, &e)
}

// NoCandidatesAvailable is the advisory raised when the combined candidate
// collections are empty once loaded. It does not fail the form.
type NoCandidatesAvailable struct {
	// FetchErrors holds the errors of collections that failed to load.
	FetchErrors []error
}

func (e *NoCandidatesAvailable) Error() string {
	if len(e.FetchErrors) == 0 {
		return NoCandidatesMessage
	}
	return fmt.Sprintf("%s (%v)", NoCandidatesMessage, errors.Join(e.FetchErrors...))
}

func (e *NoCandidatesAvailable) Unwrap() []error {
	return e.FetchErrors
}

// IsNoCandidatesAvailable reports whether err is the empty-candidates advisory.
func IsNoCandidatesAvailable(err error) bool {
	var e *NoCandidatesAvailable
	return errors.As(err, &e)
}

// ErrSelectionDisabled is returned when the sink was preset by the calling
// context or no candidate is selectable.
var ErrSelectionDisabled = errors.New("sink selection is disabled")
