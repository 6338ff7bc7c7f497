package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/imamik/kconsole/internal/form"
)

// Status is the lifecycle state of a wizard session.
type Status string

const (
	StatusEditing    Status = "editing"
	StatusSubmitting Status = "submitting"
	// StatusSucceeded is the named status observers wait for after a
	// successful create.
	StatusSucceeded Status = "created"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	// StatusUnconfirmed means the object exists but did not become ready.
	// Only Submit, which waits again, and Cancel are accepted.
	StatusUnconfirmed Status = "unconfirmed"
)

// SubmissionResult describes a successful create.
type SubmissionResult struct {
	Object   *unstructured.Unstructured
	Payload  Payload
	Duration time.Duration
}

// Controller drives a linear sequence of steps over one form state. It is
// the only writer of the step index.
type Controller struct {
	mu sync.Mutex

	name      string
	sessionID string
	steps     []Step
	skipped   []string
	index     int
	state     *form.State
	status    Status
	payload   Payload
	lastErr   error

	// submission bookkeeping
	cancelSubmit context.CancelFunc
	attempt      int
	created      *unstructured.Unstructured

	creator       Creator
	builder       Builder
	waiter        Waiter
	log           logr.Logger
	observers     []Observer
	observer      Observer
	metrics       *Metrics
	submitTimeout time.Duration
	now           func() time.Time
}

// New creates a controller. Skip predicates are evaluated here, once, against
// the initial state; the resulting step list never changes.
func New(name string, steps []Step, initial map[string]any, opts ...Option) (*Controller, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	state, err := form.New(initial)
	if err != nil {
		return nil, fmt.Errorf("invalid initial state: %w", err)
	}

	c := &Controller{
		name:   name,
		state:  state,
		status: StatusEditing,
		log:    logr.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	c.observer = multiObserver(append([]Observer{NewLogObserver(c.log)}, c.observers...))

	seen := make(map[string]bool, len(steps))
	for _, s := range steps {
		if s.ID == "" {
			return nil, fmt.Errorf("step %q has no ID", s.Title)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate step ID %q", s.ID)
		}
		seen[s.ID] = true
		if s.Skip != nil && s.Skip(state) {
			c.skipped = append(c.skipped, s.ID)
			continue
		}
		c.steps = append(c.steps, s)
	}
	if len(c.steps) == 0 {
		return nil, fmt.Errorf("all steps of wizard %q are skipped: %w", name, ErrNoSteps)
	}
	if first := c.steps[0]; first.OnEnter != nil {
		first.OnEnter(c.state)
	}
	if c.isTerminal() {
		c.payload = c.project()
	}
	return c, nil
}

// Name returns the wizard name.
func (c *Controller) Name() string {
	return c.name
}

// SessionID returns the ID of this form session.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Index returns the position of the active step.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Current describes the active step.
func (c *Controller) Current() StepInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.steps[c.index]
	return StepInfo{Index: c.index, ID: s.ID, Title: s.Title}
}

// Steps describes the active steps in order.
func (c *Controller) Steps() []StepInfo {
	out := make([]StepInfo, len(c.steps))
	for i, s := range c.steps {
		out[i] = StepInfo{Index: i, ID: s.ID, Title: s.Title}
	}
	return out
}

// Skipped returns the IDs of the steps removed at start.
func (c *Controller) Skipped() []string {
	return append([]string(nil), c.skipped...)
}

// IsTerminal reports whether the review step is active.
func (c *Controller) IsTerminal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isTerminal()
}

func (c *Controller) isTerminal() bool {
	return c.index == len(c.steps)-1
}

// Status returns the lifecycle state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Err returns the error of the last failed submission.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// State returns the form state. It is nil once the wizard was cancelled or
// the object was created.
// Callers outside Update must not mutate it while a submission runs.
func (c *Controller) State() *form.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Payload returns the submission payload. It exists only while the terminal
// step is active.
func (c *Controller) Payload() (Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payload == nil {
		return nil, false
	}
	return c.payload.clone(), true
}

// Update runs fn against the form state. Step actions use it for every
// mutation so that edits are refused while a submission is in flight.
func (c *Controller) Update(fn func(s *form.State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	if err := fn(c.state); err != nil {
		return err
	}
	if c.status == StatusFailed {
		c.status = StatusEditing
	}
	if c.isTerminal() {
		c.payload = c.project()
	}
	return nil
}

// Advance validates the active step and, when it passes, moves to the next
// one. The index never changes when validation fails. At the terminal step
// Advance does nothing.
func (c *Controller) Advance(ignoreWarnings bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	if c.isTerminal() {
		return nil
	}

	step := c.steps[c.index]
	c.state.ClearErrors(step.Fields...)
	res := step.validate(c.state)

	if len(res.Errors) > 0 || (len(res.Warnings) > 0 && !ignoreWarnings) {
		verr := newValidationError(step.ID, res)
		for _, fe := range res.Errors {
			c.state.AddError(fe.Field, errorText(fe.Detail, fe.Error()))
		}
		result := resultInvalid
		if verr.Kind == WarningValidation {
			result = resultWarning
		}
		c.metrics.recordTransition(c.name, step.ID, result)
		c.emit(EventValidationFailed, step.ID, verr.Error(), map[string]string{"kind": string(verr.Kind)})
		return verr
	}

	c.state.MarkValidated(step.Fields...)
	c.index++
	next := c.steps[c.index]
	if next.OnEnter != nil {
		next.OnEnter(c.state)
	}
	if c.isTerminal() {
		c.payload = c.project()
	}
	c.metrics.recordTransition(c.name, step.ID, resultAdvanced)
	c.emit(EventStepAdvanced, next.ID, fmt.Sprintf("%s -> %s", step.ID, next.ID), nil)
	return nil
}

// Retreat moves to the previous step without validating. It does nothing at
// the first step.
func (c *Controller) Retreat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	if c.index == 0 {
		return nil
	}
	from := c.steps[c.index].ID
	c.index--
	c.payload = nil
	to := c.steps[c.index].ID
	c.metrics.recordTransition(c.name, from, resultRetreated)
	c.emit(EventStepRetreated, to, fmt.Sprintf("%s -> %s", from, to), nil)
	return nil
}

// Cancel closes the session and discards the form state. An in-flight
// submission has its context cancelled, but the request may already have
// reached the server; its response is ignored either way.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusCancelled || c.status == StatusSucceeded {
		return
	}
	inflight := c.status == StatusSubmitting
	if c.cancelSubmit != nil {
		c.cancelSubmit()
		c.cancelSubmit = nil
	}
	c.status = StatusCancelled
	c.state = nil
	c.payload = nil
	var fields map[string]string
	if inflight {
		fields = map[string]string{"inflight": "true"}
	}
	c.emit(EventCancelled, c.steps[c.index].ID, "wizard cancelled", fields)
}

// Submit builds the object from the payload and issues exactly one create
// request. It is only allowed from the terminal step. A rejected request
// returns a *SubmissionError and may be retried by calling Submit again.
// Once the server accepted the object it is never created again: if the
// readiness wait fails, Submit returns a *ReadinessError and a later call
// only waits for the same object.
func (c *Controller) Submit(ctx context.Context) (*SubmissionResult, error) {
	c.mu.Lock()
	pending := c.created
	if pending == nil {
		if err := c.editable(); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	} else if c.status != StatusUnconfirmed {
		c.mu.Unlock()
		return nil, c.editable()
	}
	if !c.isTerminal() {
		c.mu.Unlock()
		return nil, ErrNotAtReview
	}
	if c.creator == nil {
		c.mu.Unlock()
		return nil, ErrNoCreator
	}

	obj := pending
	payload := c.payload
	if pending == nil {
		payload = c.project()
		c.payload = payload
		var err error
		obj, err = c.build(payload)
		if err != nil {
			c.mu.Unlock()
			return nil, fmt.Errorf("failed to build %s object: %w", c.name, err)
		}
	}

	if c.submitTimeout > 0 {
		ctx, c.cancelSubmit = context.WithTimeout(ctx, c.submitTimeout)
	} else {
		ctx, c.cancelSubmit = context.WithCancel(ctx)
	}
	cancel := c.cancelSubmit
	defer cancel()
	c.attempt++
	attempt := c.attempt
	c.status = StatusSubmitting
	c.lastErr = nil
	step := c.steps[c.index].ID
	msg := fmt.Sprintf("creating %s %s", obj.GetKind(), obj.GetName())
	if pending != nil {
		msg = fmt.Sprintf("waiting for %s %s", obj.GetKind(), obj.GetName())
	}
	c.emit(EventSubmissionStarted, step, msg, map[string]string{"attempt": fmt.Sprint(attempt)})
	c.mu.Unlock()

	start := c.now()
	created := pending
	var createErr, waitErr error
	if created == nil {
		created, createErr = c.creator.Create(ctx, obj)
	}
	if createErr == nil && c.waiter != nil {
		waitErr = c.waiter.WaitForCreation(ctx, created)
	}
	elapsed := c.now().Sub(start)

	c.mu.Lock()
	defer c.mu.Unlock()
	if createErr == nil {
		c.created = created
	}
	if c.status == StatusCancelled || attempt != c.attempt {
		c.metrics.recordSubmission(c.name, resultCancelled, elapsed)
		return nil, ErrCancelled
	}
	c.cancelSubmit = nil

	if createErr != nil {
		serr := newSubmissionError(createErr)
		c.status = StatusFailed
		c.lastErr = serr
		c.metrics.recordSubmission(c.name, resultRejected, elapsed)
		c.emit(EventSubmissionFailed, step, serr.Message, nil)
		return nil, serr
	}
	if waitErr != nil {
		rerr := &ReadinessError{Object: created, Err: waitErr}
		c.status = StatusUnconfirmed
		c.lastErr = rerr
		c.metrics.recordSubmission(c.name, resultUnconfirmed, elapsed)
		c.emit(EventSubmissionFailed, step, rerr.Error(), map[string]string{"created": "true"})
		return nil, rerr
	}

	c.status = StatusSucceeded
	c.state = nil
	c.metrics.recordSubmission(c.name, resultCreated, elapsed)
	c.emit(EventSubmissionSucceeded, step, fmt.Sprintf("%s %s %s", created.GetKind(), created.GetName(), StatusSucceeded),
		map[string]string{"duration": elapsed.String()})
	return &SubmissionResult{Object: created, Payload: payload, Duration: elapsed}, nil
}

func (c *Controller) editable() error {
	switch c.status {
	case StatusSubmitting:
		return ErrBusy
	case StatusCancelled, StatusSucceeded, StatusUnconfirmed:
		return ErrClosed
	}
	return nil
}

func (c *Controller) project() Payload {
	return Payload(c.state.Project(ownedFields(c.steps)))
}

func (c *Controller) build(p Payload) (*unstructured.Unstructured, error) {
	if c.builder != nil {
		obj, err := c.builder(p)
		if err != nil {
			return nil, err
		}
		if obj == nil {
			return nil, errors.New("builder returned no object")
		}
		return obj, nil
	}
	nested, err := p.Nested()
	if err != nil {
		return nil, err
	}
	return &unstructured.Unstructured{Object: nested}, nil
}

func (c *Controller) emit(t EventType, step, msg string, fields map[string]string) {
	c.observer.Event(Event{
		Type:      t,
		Wizard:    c.name,
		SessionID: c.sessionID,
		Step:      step,
		Message:   msg,
		Timestamp: c.now(),
		Fields:    fields,
	})
}

func errorText(detail, fallback string) string {
	if detail != "" {
		return detail
	}
	return fallback
}
