// Package k8s is the console's access to the cluster: generic creation of
// wizard payloads and YAML documents, reads, live collection subscriptions
// and the typed lookups used by detail tabs.
package k8s

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/imamik/kconsole/internal/util/retry"
)

// DefaultFieldManager identifies kconsole in managed fields.
const DefaultFieldManager = "kconsole"

// Client wraps the typed and dynamic clients of one cluster connection.
type Client struct {
	clientset    kubernetes.Interface
	dynamic      dynamic.Interface
	mapper       meta.RESTMapper
	namespace    string
	fieldManager string
	log          logr.Logger
	waitOpts     []retry.Option
}

// Option configures a Client.
type Option func(*Client)

// WithFieldManager sets the field manager sent with every write.
func WithFieldManager(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.fieldManager = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithNamespace sets the namespace used when an object or call names none.
func WithNamespace(ns string) Option {
	return func(c *Client) {
		if ns != "" {
			c.namespace = ns
		}
	}
}

// WithWaitTimeout bounds WaitForCreation. Polling starts at interval and
// backs off up to eight times that.
func WithWaitTimeout(timeout, interval time.Duration) Option {
	return func(c *Client) {
		if interval <= 0 {
			interval = 250 * time.Millisecond
		}
		retries := 0
		for d, total := interval, time.Duration(0); total < timeout; retries++ {
			total += d
			d = min(d*2, 8*interval)
		}
		c.waitOpts = []retry.Option{
			retry.WithInitialDelay(interval),
			retry.WithMaxDelay(8 * interval),
			retry.WithMaxRetries(retries),
		}
	}
}

// NewFromKubeconfig connects through a kubeconfig file. An empty path uses
// the standard loading rules ($KUBECONFIG, ~/.kube/config, in-cluster); an
// empty context uses the current one. The default namespace comes from the
// kubeconfig context unless WithNamespace overrides it.
func NewFromKubeconfig(path, context string, opts ...Option) (*Client, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if path != "" {
		rules.ExplicitPath = path
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: context}
	cfg := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)

	restConfig, err := cfg.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create REST config from kubeconfig: %w", err)
	}
	namespace, _, err := cfg.Namespace()
	if err != nil {
		return nil, fmt.Errorf("failed to read namespace from kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}
	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}
	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(discoveryClient))

	return NewFromClients(clientset, dynamicClient, mapper, append([]Option{WithNamespace(namespace)}, opts...)...), nil
}

// NewFromClients creates a Client from pre-configured clients, such as the
// client-go fakes.
func NewFromClients(clientset kubernetes.Interface, dynamicClient dynamic.Interface, mapper meta.RESTMapper, opts ...Option) *Client {
	c := &Client{
		clientset:    clientset,
		dynamic:      dynamicClient,
		mapper:       mapper,
		namespace:    "default",
		fieldManager: DefaultFieldManager,
		log:          logr.Discard(),
	}
	WithWaitTimeout(30*time.Second, 250*time.Millisecond)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Namespace returns the default namespace.
func (c *Client) Namespace() string {
	return c.namespace
}

// FieldManager returns the field manager sent with writes.
func (c *Client) FieldManager() string {
	return c.fieldManager
}
