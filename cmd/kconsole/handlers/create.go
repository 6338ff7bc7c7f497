package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/imamik/kconsole/api/v1alpha1"
	"github.com/imamik/kconsole/internal/config"
	"github.com/imamik/kconsole/internal/eventsource"
	"github.com/imamik/kconsole/internal/k8s"
	"github.com/imamik/kconsole/internal/sink"
	"github.com/imamik/kconsole/internal/ui/prompt"
	"github.com/imamik/kconsole/internal/vmwizard"
	"github.com/imamik/kconsole/internal/wizard"
)

// syncTimeout bounds the initial load of sink candidates when a sink is
// given on the command line.
var syncTimeout = 15 * time.Second

// CreateVM handles the create vm command.
//
// A non-empty template opens the wizard from that template, which skips the
// provision source step.
func CreateVM(ctx context.Context, opts Options, template string) error {
	e, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer e.flushMetrics()

	var initial map[string]any
	if template != "" {
		initial = map[string]any{vmwizard.FieldTemplate: template}
	}
	w, err := vmwizard.New(e.client.Namespace(), initial, e.wizardOptions()...)
	if err != nil {
		return fmt.Errorf("failed to start wizard: %w", err)
	}
	e.log.V(1).Info("starting wizard", "wizard", vmwizard.Name, "session", w.Controller().SessionID())

	res, err := newSession(e.log).RunVM(ctx, w, sshDir)
	return finish(e, res, err)
}

// EventSourceOptions are the flags of the create eventsource command.
type EventSourceOptions struct {
	// Kind presets the source type.
	Kind string
	// Sink presets the sink resource as "name" or "Kind/name".
	Sink string
	// SinkURI presets a URI sink.
	SinkURI string
}

// CreateEventSource handles the create eventsource command.
//
// Sink candidates come from a live subscription to services, brokers and
// the configured channel resources, so resources created while the form is
// open become selectable.
func CreateEventSource(ctx context.Context, opts Options, o EventSourceOptions) error {
	if o.Sink != "" && o.SinkURI != "" {
		return errors.New("--sink and --sink-uri are mutually exclusive")
	}
	e, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer e.flushMetrics()

	gvrs := sinkResources(e.cfg)
	sub, err := e.client.Subscribe(ctx, e.client.Namespace(), gvrs...)
	if err != nil {
		return fmt.Errorf("failed to watch sink candidates: %w", err)
	}
	defer sub.Stop()
	collections := func() []sink.Collection {
		out := make([]sink.Collection, 0, len(gvrs))
		for _, gvr := range gvrs {
			c := sub.Collection(gvr)
			out = append(out, sink.CollectionFrom(c.Items, c.Loaded, c.Err))
		}
		return out
	}

	initial := map[string]any{}
	if o.Kind != "" {
		initial[eventsource.FieldKind] = o.Kind
	}
	switch {
	case o.SinkURI != "":
		initial[sink.FieldType] = string(sink.TypeURI)
		initial[sink.FieldURI] = o.SinkURI
	case o.Sink != "":
		if err := waitLoaded(ctx, sub, gvrs); err != nil {
			return err
		}
		var candidates [][]sink.Candidate
		for _, c := range collections() {
			candidates = append(candidates, c.Items)
		}
		ref, err := sink.Resolve(o.Sink, sink.Combine(candidates...))
		if err != nil {
			return fmt.Errorf("--sink: %w", err)
		}
		initial[sink.FieldName] = ref.Name
		initial[sink.FieldKind] = ref.Kind
		initial[sink.FieldAPIVersion] = ref.APIVersion
	}

	f, err := eventsource.New(e.client.Namespace(), initial, e.wizardOptions()...)
	if err != nil {
		return fmt.Errorf("failed to start form: %w", err)
	}
	e.log.V(1).Info("starting wizard", "wizard", eventsource.Name, "session", f.Controller().SessionID())

	res, err := newSession(e.log).RunEventSource(ctx, f, collections)
	return finish(e, res, err)
}

func sinkResources(cfg *config.Config) []schema.GroupVersionResource {
	return append([]schema.GroupVersionResource{v1alpha1.ServingServiceGVR, v1alpha1.BrokerGVR}, cfg.Channels()...)
}

// waitLoaded blocks until every collection has loaded or failed.
func waitLoaded(ctx context.Context, sub *k8s.Subscription, gvrs []schema.GroupVersionResource) error {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()
	for {
		done := true
		for _, gvr := range gvrs {
			if c := sub.Collection(gvr); !c.Loaded && c.Err == nil {
				done = false
			}
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out loading sink candidates: %w", ctx.Err())
		case <-sub.Changes():
		}
	}
}

func finish(e *env, res *wizard.SubmissionResult, err error) error {
	if errors.Is(err, prompt.ErrAborted) {
		fmt.Fprintln(stdout, "Aborted.")
		return nil
	}
	if err != nil {
		return err
	}
	e.log.Info("created", "kind", res.Object.GetKind(), "name", res.Object.GetName(),
		"namespace", res.Object.GetNamespace(), "duration", res.Duration.String())
	return nil
}
