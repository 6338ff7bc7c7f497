package wizard

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/imamik/kconsole/internal/form"
)

// Payload is the read-only projection of the form state that a submission
// sends. Its key set is exactly the union of the fields owned by the active
// steps; unset fields map to nil.
type Payload map[string]any

// Keys returns the payload paths, sorted.
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value at path.
func (p Payload) Get(path string) any {
	return p[path]
}

// String returns the string at path, or "".
func (p Payload) String(path string) string {
	s, _ := p[path].(string)
	return s
}

// Bool returns the bool at path, or false.
func (p Payload) Bool(path string) bool {
	b, _ := p[path].(bool)
	return b
}

// Nested expands the payload into nested objects, dropping unset fields.
func (p Payload) Nested() (map[string]any, error) {
	return form.Nested(p)
}

func (p Payload) clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func ownedFields(steps []Step) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range steps {
		for _, f := range s.Fields {
			if seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// List reads a list field of p. Values stored by a wizard keep their type;
// values that went through a generic decoder are converted via JSON.
func List[T any](p Payload, path string) ([]T, error) {
	switch v := p.Get(path).(type) {
	case nil:
		return nil, nil
	case []T:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", path, err)
		}
		var out []T
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("field %s: %w", path, err)
		}
		return out, nil
	}
}
