package k8s

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic/dynamicinformer"
	"k8s.io/client-go/tools/cache"
)

// Collection is the current content of one subscribed resource.
type Collection struct {
	Items  []*unstructured.Unstructured
	Loaded bool
	Err    error
}

// Subscription keeps live collections of several resources. Changes
// receives a value whenever any collection changed; it is buffered and
// coalesces bursts.
type Subscription struct {
	mu      sync.Mutex
	stores  map[schema.GroupVersionResource]cache.Store
	loaded  map[schema.GroupVersionResource]bool
	errs    map[schema.GroupVersionResource]error
	changes chan struct{}
	cancel  context.CancelFunc
}

// Subscribe starts a shared informer per resource in namespace. The
// subscription ends when ctx is done or Stop is called.
func (c *Client) Subscribe(ctx context.Context, namespace string, gvrs ...schema.GroupVersionResource) (*Subscription, error) {
	if len(gvrs) == 0 {
		return nil, fmt.Errorf("subscribe: no resources given")
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		stores:  make(map[schema.GroupVersionResource]cache.Store, len(gvrs)),
		loaded:  make(map[schema.GroupVersionResource]bool, len(gvrs)),
		errs:    make(map[schema.GroupVersionResource]error, len(gvrs)),
		changes: make(chan struct{}, 1),
		cancel:  cancel,
	}

	factory := dynamicinformer.NewFilteredDynamicSharedInformerFactory(c.dynamic, 0, namespace, nil)
	informers := make(map[schema.GroupVersionResource]cache.SharedIndexInformer, len(gvrs))
	for _, gvr := range gvrs {
		informer := factory.ForResource(gvr).Informer()
		if err := informer.SetWatchErrorHandler(func(_ *cache.Reflector, err error) {
			c.log.V(1).Info("watch failed", "resource", gvr.String(), "error", err.Error())
			s.setErr(gvr, err)
		}); err != nil {
			cancel()
			return nil, fmt.Errorf("subscribe %s: %w", gvr, err)
		}
		if _, err := informer.AddEventHandler(cache.ResourceEventHandlerFuncs{
			AddFunc:    func(any) { s.clearErr(gvr) },
			UpdateFunc: func(any, any) { s.notify() },
			DeleteFunc: func(any) { s.notify() },
		}); err != nil {
			cancel()
			return nil, fmt.Errorf("subscribe %s: %w", gvr, err)
		}
		s.stores[gvr] = informer.GetStore()
		informers[gvr] = informer
	}

	factory.Start(ctx.Done())
	for gvr, informer := range informers {
		go func() {
			if cache.WaitForCacheSync(ctx.Done(), informer.HasSynced) {
				s.mu.Lock()
				s.loaded[gvr] = true
				s.errs[gvr] = nil
				s.mu.Unlock()
				s.notify()
			}
		}()
	}
	go func() {
		<-ctx.Done()
		factory.Shutdown()
	}()
	return s, nil
}

// Collection returns the current items of gvr sorted by namespace and name.
func (s *Subscription) Collection(gvr schema.GroupVersionResource) Collection {
	s.mu.Lock()
	store, ok := s.stores[gvr]
	col := Collection{Loaded: s.loaded[gvr], Err: s.errs[gvr]}
	s.mu.Unlock()
	if !ok {
		return Collection{Err: fmt.Errorf("%s is not subscribed", gvr)}
	}

	for _, item := range store.List() {
		if u, ok := item.(*unstructured.Unstructured); ok {
			col.Items = append(col.Items, u)
		}
	}
	sort.Slice(col.Items, func(i, j int) bool {
		if col.Items[i].GetNamespace() != col.Items[j].GetNamespace() {
			return col.Items[i].GetNamespace() < col.Items[j].GetNamespace()
		}
		return col.Items[i].GetName() < col.Items[j].GetName()
	})
	return col
}

// Changes signals collection changes.
func (s *Subscription) Changes() <-chan struct{} {
	return s.changes
}

// Stop ends the subscription.
func (s *Subscription) Stop() {
	s.cancel()
}

func (s *Subscription) setErr(gvr schema.GroupVersionResource, err error) {
	s.mu.Lock()
	s.errs[gvr] = err
	s.mu.Unlock()
	s.notify()
}

func (s *Subscription) clearErr(gvr schema.GroupVersionResource) {
	s.mu.Lock()
	s.errs[gvr] = nil
	s.mu.Unlock()
	s.notify()
}

func (s *Subscription) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
