package sink

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Resolve turns a selection into a resource reference. Candidates owned by a
// broker are never considered. An exact name match wins; otherwise the
// selection must fuzzy-match exactly one candidate name. A selection of the
// form "Kind/name" restricts matching to that kind, which disambiguates
// objects of different kinds sharing a name.
func Resolve(selected string, candidates []Candidate) (Reference, error) {
	kind, name := splitSelection(strings.TrimSpace(selected))
	if name == "" {
		return Reference{}, newNoMatch("no resource selected")
	}

	pool := make([]Candidate, 0, len(candidates))
	for _, c := range Filter(candidates) {
		if kind == "" || strings.EqualFold(c.GVK.Kind, kind) {
			pool = append(pool, c)
		}
	}

	var exact []Candidate
	for _, c := range pool {
		if c.Name == name {
			exact = append(exact, c)
		}
	}
	switch len(exact) {
	case 1:
		return referenceTo(exact[0]), nil
	case 0:
	default:
		return Reference{}, newAmbiguous("%q names %d resources (%s), select one as Kind/name", selected, len(exact), keys(exact))
	}

	var matches []Candidate
	for _, c := range pool {
		if fuzzy.MatchFold(name, c.Name) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return Reference{}, newNoMatch("no resource matches %q", selected)
	case 1:
		return referenceTo(matches[0]), nil
	default:
		return Reference{}, newAmbiguous("%q matches %d resources (%s)", selected, len(matches), keys(matches))
	}
}

// Match returns the candidates whose name fuzzy-matches filter, in order.
// An empty filter matches everything.
func Match(filter string, candidates []Candidate) []Candidate {
	filter = strings.TrimSpace(filter)
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if filter == "" || fuzzy.MatchFold(filter, c.Name) {
			out = append(out, c)
		}
	}
	return out
}

func referenceTo(c Candidate) Reference {
	return Reference{
		Type:       TypeResource,
		Name:       c.Name,
		APIVersion: c.APIVersion(),
		Kind:       c.GVK.Kind,
	}
}

func splitSelection(s string) (kind, name string) {
	if i := strings.Index(s, "/"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}

func keys(cs []Candidate) string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Key()
	}
	return strings.Join(out, ", ")
}
