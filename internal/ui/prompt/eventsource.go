package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/imamik/kconsole/internal/eventsource"
	"github.com/imamik/kconsole/internal/sink"
	"github.com/imamik/kconsole/internal/wizard"
)

// Collections returns the current sink candidate collections.
type Collections func() []sink.Collection

// RunEventSource walks the event source form. collections is read each
// time the sink step is shown.
func (s *Session) RunEventSource(ctx context.Context, f *eventsource.Form, collections Collections) (*wizard.SubmissionResult, error) {
	return s.run(ctx, &eventSourceFlow{f: f, collections: collections, note: s.warn})
}

type eventSourceFlow struct {
	f           *eventsource.Form
	collections Collections
	note        func(string)
}

func (f *eventSourceFlow) controller() *wizard.Controller { return f.f.Controller() }
func (f *eventSourceFlow) back() error                    { return f.f.Back() }
func (f *eventSourceFlow) cancel()                        { f.f.Cancel() }

func (f *eventSourceFlow) next(bool) error {
	return f.f.Next()
}

func (f *eventSourceFlow) create(ctx context.Context) (*wizard.SubmissionResult, error) {
	return f.f.Create(ctx)
}

func (f *eventSourceFlow) panel(step string) panel {
	state := f.f.Controller().State()
	switch step {
	case eventsource.StepSource:
		return &eventSourcePanel{
			f:          f.f,
			presetKind: state.InitialString(eventsource.FieldKind) != "",
			kind:       orDefault(state.String(eventsource.FieldKind), eventsource.KindPing),
			schedule:   state.String(eventsource.FieldPingSchedule),
			data:       state.String(eventsource.FieldPingData),
			mode:       orDefault(state.String(eventsource.FieldAPIServerMode), eventsource.ModeReference),
			sa:         state.String(eventsource.FieldAPIServerServiceAccount),
			image:      state.String(eventsource.FieldContainerImage),
			subject: eventsource.Subject{
				APIVersion: state.String(eventsource.FieldSubjectAPIVersion),
				Kind:       state.String(eventsource.FieldSubjectKind),
				Name:       state.String(eventsource.FieldSubjectName),
			},
		}
	case eventsource.StepSink:
		if f.collections != nil {
			if err := f.f.UpdateSinks(f.collections()...); err != nil {
				f.note(err.Error())
			}
		}
		sel := f.f.Sinks()
		if sel.Preset() {
			return nil
		}
		if adv := sel.Advisory(); adv != nil {
			f.note(adv.Error())
		}
		typ := sink.Type(orDefault(state.String(sink.FieldType), string(sink.TypeResource)))
		if sel.Disabled() {
			typ = sink.TypeURI
		}
		return &sinkPanel{
			f:        f.f,
			disabled: sel.Disabled(),
			options:  sel.Options(""),
			typ:      string(typ),
			selected: selectedKey(state.String(sink.FieldKind), state.String(sink.FieldName)),
			uri:      state.String(sink.FieldURI),
		}
	case eventsource.StepNaming:
		return &namingPanel{
			f:    f.f,
			name: state.String(eventsource.FieldName),
			app:  state.String(eventsource.FieldApplication),
		}
	case eventsource.StepReview:
		return &reviewPanel{ctrl: f.f.Controller()}
	}
	return nil
}

type eventSourcePanel struct {
	f          *eventsource.Form
	presetKind bool

	kind             string
	schedule, data   string
	mode, sa, rs     string
	image, args, env string
	subject          eventsource.Subject
}

func (p *eventSourcePanel) form() *huh.Form {
	only := func(kind string) func() bool {
		return func() bool { return p.kind != kind }
	}
	var groups []*huh.Group
	if !p.presetKind {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().Title("Source type").Options(stringOptions(eventsource.Kinds...)...).Value(&p.kind),
		))
	}
	groups = append(groups,
		huh.NewGroup(
			huh.NewInput().Title("Schedule").Description("Cron expression, for example */2 * * * *").Value(&p.schedule),
			huh.NewInput().Title("Data").Description("Optional event payload").Value(&p.data),
		).Title(eventsource.KindPing).WithHideFunc(only(eventsource.KindPing)),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Mode").Options(stringOptions(eventsource.ModeReference, eventsource.ModeResource)...).Value(&p.mode),
			huh.NewInput().Title("Service account").Value(&p.sa),
			huh.NewText().Title("Resources").Description("One \"apiVersion kind\" per line").Lines(3).Value(&p.rs),
		).Title(eventsource.KindAPIServer).WithHideFunc(only(eventsource.KindAPIServer)),
		huh.NewGroup(
			huh.NewInput().Title("Image").Value(&p.image),
			huh.NewText().Title("Arguments").Description("One per line").Lines(3).Value(&p.args),
			huh.NewText().Title("Environment").Description("One NAME=value per line").Lines(3).Value(&p.env),
		).Title(eventsource.KindContainer).WithHideFunc(only(eventsource.KindContainer)),
		huh.NewGroup(
			huh.NewInput().Title("Subject apiVersion").Placeholder("apps/v1").Value(&p.subject.APIVersion),
			huh.NewInput().Title("Subject kind").Placeholder("Deployment").Value(&p.subject.Kind),
			huh.NewInput().Title("Subject name").Value(&p.subject.Name),
		).Title(eventsource.KindSinkBinding).WithHideFunc(only(eventsource.KindSinkBinding)),
	)
	return huh.NewForm(groups...)
}

func (p *eventSourcePanel) apply() (bool, error) {
	if !p.presetKind {
		if err := p.f.SelectKind(p.kind); err != nil {
			return false, err
		}
	}
	switch p.kind {
	case eventsource.KindPing:
		return false, p.f.SetPing(strings.TrimSpace(p.schedule), p.data)
	case eventsource.KindAPIServer:
		res, err := parseResources(p.rs)
		if err != nil {
			return false, err
		}
		return false, p.f.SetAPIServer(p.mode, strings.TrimSpace(p.sa), res)
	case eventsource.KindContainer:
		env, err := parseEnv(p.env)
		if err != nil {
			return false, err
		}
		return false, p.f.SetContainer(strings.TrimSpace(p.image), splitLines(p.args), env)
	case eventsource.KindSinkBinding:
		return false, p.f.SetSubject(p.subject)
	}
	return false, fmt.Errorf("unsupported source type %q", p.kind)
}

type sinkPanel struct {
	f        *eventsource.Form
	disabled bool
	options  []sink.Candidate

	typ, selected, uri string
}

func (p *sinkPanel) form() *huh.Form {
	opts := make([]huh.Option[string], 0, len(p.options))
	for _, c := range p.options {
		opts = append(opts, huh.NewOption(c.Key(), c.Key()))
	}
	var groups []*huh.Group
	if !p.disabled {
		groups = append(groups,
			huh.NewGroup(
				huh.NewSelect[string]().Title("Sink").Options(
					huh.NewOption("Resource", string(sink.TypeResource)),
					huh.NewOption("URI", string(sink.TypeURI)),
				).Value(&p.typ),
			),
			huh.NewGroup(
				huh.NewSelect[string]().Title("Resource").Options(opts...).Value(&p.selected),
			).WithHideFunc(func() bool { return p.typ != string(sink.TypeResource) }),
		)
	}
	groups = append(groups, huh.NewGroup(
		huh.NewInput().Title("URI").Placeholder("https://").Value(&p.uri),
	).WithHideFunc(func() bool { return p.typ != string(sink.TypeURI) }))
	return huh.NewForm(groups...)
}

func (p *sinkPanel) apply() (bool, error) {
	if err := p.f.SetSinkType(sink.Type(p.typ)); err != nil {
		return false, err
	}
	if sink.Type(p.typ) == sink.TypeURI {
		return false, p.f.SetSinkURI(strings.TrimSpace(p.uri))
	}
	if p.selected == "" {
		return false, nil
	}
	return false, p.f.SelectSink(p.selected)
}

type namingPanel struct {
	f *eventsource.Form

	name, app string
}

func (p *namingPanel) form() *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Name").Value(&p.name),
		huh.NewInput().Title("Application").Description("Optional; groups the source with other resources").Value(&p.app),
	))
}

func (p *namingPanel) apply() (bool, error) {
	if err := p.f.SetName(strings.TrimSpace(p.name)); err != nil {
		return false, err
	}
	if app := strings.TrimSpace(p.app); app != "" {
		return false, p.f.SetApplication(app)
	}
	return false, nil
}

type reviewPanel struct {
	ctrl *wizard.Controller
}

func (p *reviewPanel) form() *huh.Form {
	payload, _ := p.ctrl.Payload()
	return huh.NewForm(huh.NewGroup(
		huh.NewNote().Title("Review").Description(summary(payload)),
	))
}

func (p *reviewPanel) apply() (bool, error) {
	return false, nil
}

func selectedKey(kind, name string) string {
	if name == "" {
		return ""
	}
	return kind + "/" + name
}

func parseResources(text string) ([]eventsource.Resource, error) {
	var out []eventsource.Resource
	for _, line := range splitLines(text) {
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("resource %q: expected \"apiVersion kind\"", line)
		}
		out = append(out, eventsource.Resource{APIVersion: parts[0], Kind: parts[1]})
	}
	return out, nil
}

func parseEnv(text string) ([]eventsource.EnvVar, error) {
	var out []eventsource.EnvVar
	for _, line := range splitLines(text) {
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("environment %q: expected NAME=value", line)
		}
		out = append(out, eventsource.EnvVar{Name: strings.TrimSpace(name), Value: value})
	}
	return out, nil
}
