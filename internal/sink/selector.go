package sink

import (
	"errors"
	"sync"

	"github.com/imamik/kconsole/internal/form"
	"github.com/imamik/kconsole/internal/wizard"
)

// Collection is one independently fetched candidate list.
type Collection struct {
	Items  []Candidate
	Loaded bool
	Err    error
}

// Selector keeps the selectable sink candidates of one form session and
// writes the user's choice into the form state. Collections arrive from a
// live subscription, so Update may be called from another goroutine; the
// form state itself must still be mutated under the wizard's Update.
type Selector struct {
	mu sync.Mutex

	preset     bool
	candidates []Candidate
	loaded     bool
	advisory   *NoCandidatesAvailable
}

// NewSelector creates a selector. A sink name present in the initial state
// means the calling context chose the sink and the dropdown is disabled.
func NewSelector(initial *form.State) *Selector {
	return &Selector{preset: initial.InitialString(FieldName) != ""}
}

// Update recomputes the selectable set from the service-like, channel-like
// and broker-like collections. The advisory is raised once every collection
// has either loaded or failed and nothing is selectable. When the resource
// variant is active and nothing is selected yet, the first candidate is
// selected.
func (s *Selector) Update(st *form.State, collections ...Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := true
	var items [][]Candidate
	var fetchErrs []error
	for _, c := range collections {
		if c.Err != nil {
			fetchErrs = append(fetchErrs, c.Err)
			continue
		}
		if !c.Loaded {
			loaded = false
		}
		items = append(items, c.Items)
	}

	s.candidates = Filter(Combine(items...))
	s.loaded = loaded
	s.advisory = nil
	if loaded && len(s.candidates) == 0 {
		s.advisory = &NoCandidatesAvailable{FetchErrors: fetchErrs}
	}
	return s.autoSelect(st)
}

func (s *Selector) autoSelect(st *form.State) error {
	if s.preset || len(s.candidates) == 0 {
		return nil
	}
	if Type(st.String(FieldType)) != TypeResource || st.Has(FieldName) {
		return nil
	}
	return referenceTo(s.candidates[0]).apply(st)
}

// Candidates returns the selectable candidates.
func (s *Selector) Candidates() []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Candidate(nil), s.candidates...)
}

// Options returns the candidates matching filter, as offered by the dropdown.
func (s *Selector) Options(filter string) []Candidate {
	return Match(filter, s.Candidates())
}

// Loaded reports whether every collection finished loading.
func (s *Selector) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Advisory returns the empty-candidates advisory, or nil.
func (s *Selector) Advisory() *NoCandidatesAvailable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advisory
}

// Preset reports whether the sink was chosen by the calling context.
func (s *Selector) Preset() bool {
	return s.preset
}

// Disabled reports whether the resource dropdown accepts input.
func (s *Selector) Disabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preset || s.advisory != nil
}

// SetType switches the variant and clears the fields of the other one.
func (s *Selector) SetType(st *form.State, t Type) error {
	switch t {
	case TypeResource:
		st.Clear(uriFields...)
	case TypeURI:
		st.Clear(resourceFields...)
	default:
		return errors.New("sink type must be resource or uri")
	}
	if err := st.Set(FieldType, string(t)); err != nil {
		return err
	}
	if t == TypeResource {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.autoSelect(st)
	}
	return nil
}

// Select resolves name against the selectable candidates and stores the
// reference. It switches to the resource variant first.
func (s *Selector) Select(st *form.State, name string) error {
	if s.Disabled() {
		return ErrSelectionDisabled
	}
	ref, err := Resolve(name, s.Candidates())
	if err != nil {
		return err
	}
	if Type(st.String(FieldType)) != TypeResource {
		st.Clear(uriFields...)
		if err := st.Set(FieldType, string(TypeResource)); err != nil {
			return err
		}
	}
	return ref.apply(st)
}

// SetURI stores uri and switches to the URI variant.
func (s *Selector) SetURI(st *form.State, uri string) error {
	if Type(st.String(FieldType)) != TypeURI {
		if err := s.SetType(st, TypeURI); err != nil {
			return err
		}
	}
	return st.Set(FieldURI, uri)
}

// Reference reads the current choice.
func (s *Selector) Reference(st *form.State) Reference {
	return ReferenceFrom(st)
}

// Step returns the wizard step owning the sink fields.
func (s *Selector) Step() wizard.Step {
	return wizard.Step{
		ID:     "sink",
		Title:  "Sink",
		Fields: []string{FieldType, FieldName, FieldAPIVersion, FieldKind, FieldURI},
		Validate: func(st *form.State) wizard.Result {
			return wizard.Result{Errors: ReferenceFrom(st).validate()}
		},
		OnEnter: func(st *form.State) {
			s.mu.Lock()
			defer s.mu.Unlock()
			_ = s.autoSelect(st)
		},
	}
}
