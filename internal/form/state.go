package form

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// State is the mutable value store of one form session. Values are keyed by
// dotted field path ("flavor.memory", "sink.name"); each path also carries a
// touched flag (the user changed it), a validated flag (it passed validation
// on a forward transition) and the messages of its last failed validation.
//
// Values are treated as immutable: callers replace a slice or map value
// instead of mutating it in place.
type State struct {
	initial   map[string]any
	values    map[string]any
	touched   map[string]bool
	validated map[string]bool
	errors    map[string][]string
}

// New seeds a state with initial values. Nested maps in initial are
// flattened into dotted paths, so {"sink": {"name": "x"}} seeds "sink.name".
func New(initial map[string]any) (*State, error) {
	flat := make(map[string]any)
	if err := flatten("", initial, flat); err != nil {
		return nil, err
	}
	return &State{
		initial:   flat,
		values:    cloneValues(flat),
		touched:   make(map[string]bool),
		validated: make(map[string]bool),
		errors:    make(map[string][]string),
	}, nil
}

// Get returns the value stored at path.
func (s *State) Get(path string) (any, bool) {
	v, ok := s.values[path]
	return v, ok
}

// Has reports whether a non-empty value is stored at path.
func (s *State) Has(path string) bool {
	v, ok := s.values[path]
	return ok && !isEmpty(v)
}

// String returns the string at path, or "" when unset or not a string.
func (s *State) String(path string) string {
	v, _ := s.values[path].(string)
	return v
}

// Bool returns the bool at path, or false when unset or not a bool.
func (s *State) Bool(path string) bool {
	v, _ := s.values[path].(bool)
	return v
}

// Set stores value at path and marks the path touched. A nil value removes
// the stored value but keeps the touched mark.
func (s *State) Set(path string, value any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	s.store(path, value)
	s.touched[path] = true
	return nil
}

// SetUntouched stores value at path without marking it touched. It is used
// for values the form derives on the user's behalf (defaults, auto-selection).
func (s *State) SetUntouched(path string, value any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	s.store(path, value)
	return nil
}

func (s *State) store(path string, value any) {
	delete(s.validated, path)
	if value == nil {
		delete(s.values, path)
		return
	}
	s.values[path] = value
}

// Touch marks path touched without changing its value.
func (s *State) Touch(path string) {
	s.touched[path] = true
}

// Touched reports whether the user changed path.
func (s *State) Touched(path string) bool {
	return s.touched[path]
}

// MarkValidated flags paths as having passed validation.
func (s *State) MarkValidated(paths ...string) {
	for _, p := range paths {
		s.validated[p] = true
	}
}

// Validated reports whether path passed validation since its last change.
func (s *State) Validated(path string) bool {
	return s.validated[path]
}

// Clear removes the values, flags and errors of each path and of every path
// below it ("sink" clears "sink.name" and "sink.uri").
func (s *State) Clear(paths ...string) {
	for _, p := range paths {
		for k := range s.values {
			if covers(p, k) {
				delete(s.values, k)
			}
		}
		for k := range s.touched {
			if covers(p, k) {
				delete(s.touched, k)
			}
		}
		for k := range s.validated {
			if covers(p, k) {
				delete(s.validated, k)
			}
		}
		for k := range s.errors {
			if covers(p, k) {
				delete(s.errors, k)
			}
		}
	}
}

// SetErrors replaces the validation messages of path.
func (s *State) SetErrors(path string, msgs ...string) {
	if len(msgs) == 0 {
		delete(s.errors, path)
		return
	}
	s.errors[path] = append([]string(nil), msgs...)
}

// AddError appends a validation message to path.
func (s *State) AddError(path, msg string) {
	s.errors[path] = append(s.errors[path], msg)
}

// ErrorsFor returns the validation messages attached to path.
func (s *State) ErrorsFor(path string) []string {
	return s.errors[path]
}

// ClearErrors drops the validation messages of the given paths.
func (s *State) ClearErrors(paths ...string) {
	for _, p := range paths {
		for k := range s.errors {
			if covers(p, k) {
				delete(s.errors, k)
			}
		}
	}
}

// Paths returns every path holding a value, sorted.
func (s *State) Paths() []string {
	out := make([]string, 0, len(s.values))
	for k := range s.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Initial returns the seed value of path.
func (s *State) Initial(path string) (any, bool) {
	v, ok := s.initial[path]
	return v, ok
}

// InitialString returns the seed string of path.
func (s *State) InitialString(path string) string {
	v, _ := s.initial[path].(string)
	return v
}

// Snapshot returns a copy of all values.
func (s *State) Snapshot() map[string]any {
	return cloneValues(s.values)
}

// Project returns exactly the requested paths. Paths without a value map to
// nil so that the key set of the result always equals the requested set.
func (s *State) Project(paths []string) map[string]any {
	out := make(map[string]any, len(paths))
	for _, p := range paths {
		if v, ok := s.values[p]; ok {
			out[p] = deepCopy(v)
			continue
		}
		out[p] = nil
	}
	return out
}

// Nested expands a flat path map into nested objects. Nil values are
// dropped; every other value is normalised to its JSON form first.
func Nested(flat map[string]any) (map[string]any, error) {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any)
	for _, k := range keys {
		v := flat[k]
		if v == nil {
			continue
		}
		normalized, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		if err := unstructured.SetNestedField(out, normalized, strings.Split(k, ".")...); err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
	}
	return out, nil
}

// normalize converts a Go value into the map/slice/scalar form accepted by
// unstructured helpers.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, in map[string]any, out map[string]any) error {
	for k, v := range in {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if err := ValidatePath(path); err != nil {
			return err
		}
		if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
			if err := flatten(path, nested, out); err != nil {
				return err
			}
			continue
		}
		if v == nil {
			continue
		}
		out[path] = v
	}
	return nil
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}

func isEmpty(v any) bool {
	switch typed := v.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case []string:
		return len(typed) == 0
	case []any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	default:
		return false
	}
}
