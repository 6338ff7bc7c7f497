package wizard

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

//go:generate go tool mockgen -source=options.go -destination=mocks/mock_options.go -package=mocks Creator,Waiter

// Creator issues the single create request of a submission.
type Creator interface {
	Create(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error)
}

// Waiter blocks until a created object is observable through the API.
type Waiter interface {
	WaitForCreation(ctx context.Context, obj *unstructured.Unstructured) error
}

// Builder turns the submission payload into the object to create.
type Builder func(p Payload) (*unstructured.Unstructured, error)

// Option configures a Controller.
type Option func(*Controller)

// WithCreator sets the backend used by Submit.
func WithCreator(c Creator) Option {
	return func(w *Controller) {
		w.creator = c
	}
}

// WithBuilder sets the payload-to-object conversion. Without a builder the
// nested payload is submitted as is.
func WithBuilder(b Builder) Option {
	return func(w *Controller) {
		w.builder = b
	}
}

// WithWaiter makes Submit wait until the created object can be read back.
func WithWaiter(wt Waiter) Option {
	return func(w *Controller) {
		w.waiter = wt
	}
}

// WithLogger sets the logger. Events are logged through a LogObserver.
func WithLogger(log logr.Logger) Option {
	return func(w *Controller) {
		w.log = log
	}
}

// WithObserver adds an event observer.
func WithObserver(o Observer) Option {
	return func(w *Controller) {
		w.observers = append(w.observers, o)
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(w *Controller) {
		w.metrics = m
	}
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(w *Controller) {
		w.sessionID = id
	}
}

// WithSubmitTimeout bounds the create request and the wait that follows it.
func WithSubmitTimeout(d time.Duration) Option {
	return func(w *Controller) {
		w.submitTimeout = d
	}
}
