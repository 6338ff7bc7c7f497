package eventsource

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/imamik/kconsole/internal/form"
	"github.com/imamik/kconsole/internal/sink"
	"github.com/imamik/kconsole/internal/wizard"
)

// Name identifies the event source form in events and metrics.
const Name = "eventsource"

// Form is the event source creation form. It wraps a wizard controller and
// the sink selector of the session.
type Form struct {
	ctrl      *wizard.Controller
	sinks     *sink.Selector
	namespace string
}

// New opens the form in namespace. initial may preset the source kind
// ("type") and the sink ("sink.name", "sink.kind", "sink.apiVersion"), in
// which case the sink dropdown is disabled. The resource sink variant is
// active unless initial selects another one.
func New(namespace string, initial map[string]any, opts ...wizard.Option) (*Form, error) {
	seed := maps.Clone(initial)
	if seed == nil {
		seed = map[string]any{}
	}
	st, err := form.New(seed)
	if err != nil {
		return nil, err
	}
	if !st.Has(sink.FieldType) {
		seed[sink.FieldType] = string(sink.TypeResource)
	}
	if kind := st.String(FieldKind); kind != "" && !slices.Contains(Kinds, kind) {
		return nil, fmt.Errorf("unsupported source type %q", kind)
	}

	selector := sink.NewSelector(st)
	opts = append([]wizard.Option{wizard.WithBuilder(Builder(namespace))}, opts...)
	ctrl, err := wizard.New(Name, Steps(selector), seed, opts...)
	if err != nil {
		return nil, err
	}
	return &Form{ctrl: ctrl, sinks: selector, namespace: namespace}, nil
}

// Controller exposes the underlying controller.
func (f *Form) Controller() *wizard.Controller {
	return f.ctrl
}

// Sinks exposes the sink selector, for rendering its options and advisory.
func (f *Form) Sinks() *sink.Selector {
	return f.sinks
}

// SelectKind switches the source kind, clearing the fields of the others.
func (f *Form) SelectKind(kind string) error {
	if !slices.Contains(Kinds, kind) {
		return fmt.Errorf("unsupported source type %q", kind)
	}
	return f.ctrl.Update(func(s *form.State) error {
		for k, fields := range kindFields {
			if k != kind {
				s.Clear(fields...)
			}
		}
		return s.Set(FieldKind, kind)
	})
}

// SetPing configures a PingSource.
func (f *Form) SetPing(schedule, data string) error {
	return f.ctrl.Update(func(s *form.State) error {
		if err := s.Set(FieldPingSchedule, schedule); err != nil {
			return err
		}
		return s.Set(FieldPingData, data)
	})
}

// SetAPIServer configures an ApiServerSource.
func (f *Form) SetAPIServer(mode, serviceAccount string, res []Resource) error {
	return f.ctrl.Update(func(s *form.State) error {
		if err := s.Set(FieldAPIServerMode, mode); err != nil {
			return err
		}
		if err := s.Set(FieldAPIServerServiceAccount, serviceAccount); err != nil {
			return err
		}
		return s.Set(FieldAPIServerResources, slices.Clone(res))
	})
}

// SetContainer configures a ContainerSource.
func (f *Form) SetContainer(image string, args []string, env []EnvVar) error {
	return f.ctrl.Update(func(s *form.State) error {
		if err := s.Set(FieldContainerImage, image); err != nil {
			return err
		}
		if err := s.Set(FieldContainerArgs, slices.Clone(args)); err != nil {
			return err
		}
		return s.Set(FieldContainerEnv, slices.Clone(env))
	})
}

// SetSubject configures the workload bound by a SinkBinding.
func (f *Form) SetSubject(subject Subject) error {
	return f.ctrl.Update(func(s *form.State) error {
		for path, v := range map[string]string{
			FieldSubjectAPIVersion: subject.APIVersion,
			FieldSubjectKind:       subject.Kind,
			FieldSubjectName:       subject.Name,
		} {
			if err := s.Set(path, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateSinks feeds fresh candidate collections into the selector.
func (f *Form) UpdateSinks(collections ...sink.Collection) error {
	return f.ctrl.Update(func(s *form.State) error {
		return f.sinks.Update(s, collections...)
	})
}

// SelectSink picks a sink resource by name.
func (f *Form) SelectSink(name string) error {
	return f.ctrl.Update(func(s *form.State) error {
		return f.sinks.Select(s, name)
	})
}

// SetSinkType switches between the resource and URI variants.
func (f *Form) SetSinkType(t sink.Type) error {
	return f.ctrl.Update(func(s *form.State) error {
		return f.sinks.SetType(s, t)
	})
}

// SetSinkURI delivers events to uri.
func (f *Form) SetSinkURI(uri string) error {
	return f.ctrl.Update(func(s *form.State) error {
		return f.sinks.SetURI(s, uri)
	})
}

// SetName overrides the generated name.
func (f *Form) SetName(name string) error {
	return f.ctrl.Update(func(s *form.State) error {
		return s.Set(FieldName, name)
	})
}

// SetApplication groups the source into an application.
func (f *Form) SetApplication(app string) error {
	return f.ctrl.Update(func(s *form.State) error {
		return s.Set(FieldApplication, app)
	})
}

// Next advances to the next step.
func (f *Form) Next() error {
	return f.ctrl.Advance(false)
}

// Back returns to the previous step.
func (f *Form) Back() error {
	return f.ctrl.Retreat()
}

// Cancel closes the form.
func (f *Form) Cancel() {
	f.ctrl.Cancel()
}

// Create submits the event source from the review step.
func (f *Form) Create(ctx context.Context) (*wizard.SubmissionResult, error) {
	return f.ctrl.Submit(ctx)
}

// Current returns the active step.
func (f *Form) Current() wizard.StepInfo {
	return f.ctrl.Current()
}
