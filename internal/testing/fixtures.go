package testing

import (
	"strings"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	k8sfake "k8s.io/client-go/kubernetes/fake"

	"github.com/imamik/kconsole/api/v1alpha1"
	"github.com/imamik/kconsole/internal/k8s"
)

// ClusterFixture bundles fake clients and a RESTMapper that knows every kind
// kconsole creates or lists.
type ClusterFixture struct {
	Dynamic   *dynamicfake.FakeDynamicClient
	Clientset *k8sfake.Clientset
	Mapper    meta.RESTMapper
}

// NewClusterFixture seeds the dynamic fake with objs. Typed objects such as
// pods and events go through WithTyped.
func NewClusterFixture(objs ...*unstructured.Unstructured) *ClusterFixture {
	runtimeObjs := make([]runtime.Object, 0, len(objs))
	for _, o := range objs {
		runtimeObjs = append(runtimeObjs, o)
	}
	return &ClusterFixture{
		Dynamic:   dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(), ListKinds(), runtimeObjs...),
		Clientset: k8sfake.NewClientset(),
		Mapper:    NewRESTMapper(),
	}
}

// WithTyped replaces the typed clientset with one seeded with objs.
func (f *ClusterFixture) WithTyped(objs ...runtime.Object) *ClusterFixture {
	f.Clientset = k8sfake.NewClientset(objs...)
	return f
}

// Client returns a k8s.Client over the fakes.
func (f *ClusterFixture) Client(opts ...k8s.Option) *k8s.Client {
	return k8s.NewFromClients(f.Clientset, f.Dynamic, f.Mapper, opts...)
}

// Core resources created by manifest tests, on top of v1alpha1.ListKinds.
var (
	ConfigMapGVR = schema.GroupVersionResource{Version: "v1", Resource: "configmaps"}
	NamespaceGVR = schema.GroupVersionResource{Version: "v1", Resource: "namespaces"}
)

// ListKinds extends v1alpha1.ListKinds with ConfigMapGVR and NamespaceGVR.
func ListKinds() map[schema.GroupVersionResource]string {
	kinds := v1alpha1.ListKinds()
	kinds[ConfigMapGVR] = "ConfigMapList"
	kinds[NamespaceGVR] = "NamespaceList"
	return kinds
}

// NewRESTMapper maps every kind in ListKinds. Namespaces are cluster scoped;
// everything else is namespaced.
func NewRESTMapper() meta.RESTMapper {
	mapper := meta.NewDefaultRESTMapper(nil)
	for gvr, list := range ListKinds() {
		scope := meta.RESTScopeNamespace
		if gvr == NamespaceGVR {
			scope = meta.RESTScopeRoot
		}
		mapper.Add(gvr.GroupVersion().WithKind(strings.TrimSuffix(list, "List")), scope)
	}
	return mapper
}
