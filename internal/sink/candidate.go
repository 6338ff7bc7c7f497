package sink

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/imamik/kconsole/api/v1alpha1"
)

// OwnerRelation is an "owned-by" edge of a candidate.
type OwnerRelation struct {
	Kind       string
	Name       string
	APIVersion string
	Controller bool
}

// Candidate is a resource that can receive events.
type Candidate struct {
	Name      string
	Namespace string
	GVK       schema.GroupVersionKind
	OwnedBy   []OwnerRelation
}

// CandidateFromObject converts an API object into a candidate.
func CandidateFromObject(obj *unstructured.Unstructured) Candidate {
	c := Candidate{
		Name:      obj.GetName(),
		Namespace: obj.GetNamespace(),
		GVK:       obj.GroupVersionKind(),
	}
	for _, ref := range obj.GetOwnerReferences() {
		c.OwnedBy = append(c.OwnedBy, OwnerRelation{
			Kind:       ref.Kind,
			Name:       ref.Name,
			APIVersion: ref.APIVersion,
			Controller: ref.Controller != nil && *ref.Controller,
		})
	}
	return c
}

// CandidatesFromObjects converts a list of API objects.
func CandidatesFromObjects(objs []*unstructured.Unstructured) []Candidate {
	out := make([]Candidate, 0, len(objs))
	for _, obj := range objs {
		out = append(out, CandidateFromObject(obj))
	}
	return out
}

// CollectionFrom converts one fetched resource list into a collection.
func CollectionFrom(objs []*unstructured.Unstructured, loaded bool, err error) Collection {
	return Collection{Items: CandidatesFromObjects(objs), Loaded: loaded, Err: err}
}

// OwnedByKind reports whether any owner of c has the given kind.
func (c Candidate) OwnedByKind(kind string) bool {
	for _, o := range c.OwnedBy {
		if o.Kind == kind {
			return true
		}
	}
	return false
}

// APIVersion returns "group/version", or just the version for the core group.
func (c Candidate) APIVersion() string {
	return c.GVK.GroupVersion().String()
}

// Key identifies the candidate across kinds as "Kind/name".
func (c Candidate) Key() string {
	return c.GVK.Kind + "/" + c.Name
}

// Filter drops candidates owned by a broker. Those are channels and other
// objects a broker created for itself.
func Filter(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.OwnedByKind(v1alpha1.BrokerKind) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Combine concatenates candidate collections in order.
func Combine(collections ...[]Candidate) []Candidate {
	var out []Candidate
	for _, c := range collections {
		out = append(out, c...)
	}
	return out
}
