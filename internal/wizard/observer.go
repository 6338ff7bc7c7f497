package wizard

import (
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Observer receives structured events as a wizard session progresses.
type Observer interface {
	Event(event Event)
}

// Event is a structured wizard event.
type Event struct {
	Type      EventType         // Type of event
	Wizard    string            // Wizard name (e.g., "vm", "eventsource")
	SessionID string            // Form session the event belongs to
	Step      string            // Active step when the event happened
	Message   string            // Human-readable message
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of wizard event.
type EventType string

const (
	// EventStepAdvanced indicates a forward transition committed.
	EventStepAdvanced EventType = "step.advanced"
	// EventStepRetreated indicates a backward transition.
	EventStepRetreated EventType = "step.retreated"
	// EventValidationFailed indicates a forward transition was refused.
	EventValidationFailed EventType = "validation.failed"
	// EventSubmissionStarted indicates the create request was issued.
	EventSubmissionStarted EventType = "submission.started"
	// EventSubmissionSucceeded indicates the object was created.
	EventSubmissionSucceeded EventType = "submission.succeeded"
	// EventSubmissionFailed indicates the backend rejected the request.
	EventSubmissionFailed EventType = "submission.failed"
	// EventCancelled indicates the session was discarded.
	EventCancelled EventType = "wizard.cancelled"
)

// LogObserver writes events through a logr.Logger. Failures are logged at
// info level with an "error" key; everything else at V(1).
type LogObserver struct {
	log logr.Logger
}

// NewLogObserver creates an observer that logs to log.
func NewLogObserver(log logr.Logger) *LogObserver {
	return &LogObserver{log: log}
}

// Event implements Observer.
func (o *LogObserver) Event(event Event) {
	kv := []any{"wizard", event.Wizard, "session", event.SessionID, "event", string(event.Type)}
	if event.Step != "" {
		kv = append(kv, "step", event.Step)
	}
	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv = append(kv, k, event.Fields[k])
	}

	switch event.Type {
	case EventSubmissionFailed, EventValidationFailed:
		o.log.Info(event.Message, append(kv, "error", true)...)
	default:
		o.log.V(1).Info(event.Message, kv...)
	}
}

// Recorder keeps every event in memory. The interactive front end uses it
// to show the session history; tests use it to assert on transitions.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Event implements Observer.
func (r *Recorder) Event(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// multiObserver fans events out to several observers.
type multiObserver []Observer

func (m multiObserver) Event(event Event) {
	for _, o := range m {
		o.Event(event)
	}
}
