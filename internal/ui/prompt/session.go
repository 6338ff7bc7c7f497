package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"

	"github.com/imamik/kconsole/internal/wizard"
)

// ErrAborted is returned when the user interrupts a form.
var ErrAborted = errors.New("aborted by user")

// panel is the form of one step, or one round of a repeating step such as
// "add another NIC".
type panel interface {
	form() *huh.Form
	// apply writes the answers through the wizard actions. again asks the
	// session to show a fresh panel of the same step.
	apply() (again bool, err error)
}

// flow adapts one wizard to the session loop.
type flow interface {
	controller() *wizard.Controller
	// panel returns the next panel of step, or nil when the step asks
	// nothing.
	panel(step string) panel
	next(ignoreWarnings bool) error
	back() error
	cancel()
	create(ctx context.Context) (*wizard.SubmissionResult, error)
}

// Session runs wizards interactively.
type Session struct {
	out        io.Writer
	accessible bool
	log        logr.Logger
	ask        func(ctx context.Context, p panel) error
	spin       func(ctx context.Context, title string, action func(context.Context) error) error
}

// Option configures a Session.
type Option func(*Session)

// WithOutput sets where step titles and messages are printed.
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		s.out = w
	}
}

// WithAccessible forces huh's accessible mode and disables the spinner.
func WithAccessible(accessible bool) Option {
	return func(s *Session) {
		s.accessible = accessible
	}
}

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewSession creates a session writing to stdout. Accessible mode is
// enabled when stdout is not a terminal.
func NewSession(opts ...Option) *Session {
	s := &Session{
		out:        os.Stdout,
		accessible: !IsTerminal(os.Stdout),
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ask == nil {
		s.ask = func(ctx context.Context, p panel) error {
			return p.form().WithAccessible(s.accessible).RunWithContext(ctx)
		}
	}
	if s.spin == nil {
		s.spin = func(ctx context.Context, title string, action func(context.Context) error) error {
			if s.accessible {
				fmt.Fprintln(s.out, dimStyle.Render(title))
				return action(ctx)
			}
			return spinner.New().Title(title).Context(ctx).ActionWithErr(action).Run()
		}
	}
	return s
}

func (s *Session) run(ctx context.Context, f flow) (*wizard.SubmissionResult, error) {
	ctrl := f.controller()
	total := len(ctrl.Steps())
	for {
		step := ctrl.Current()
		fmt.Fprintln(s.out, sectionStyle.Render(fmt.Sprintf("%s (%d/%d)", step.Title, step.Index+1, total)))
		s.log.V(1).Info("showing step", "wizard", ctrl.Name(), "step", step.ID)

		if err := s.askStep(ctx, f, step.ID); err != nil {
			return nil, s.abort(f, err)
		}
		if ctrl.IsTerminal() {
			res, done, err := s.review(ctx, f)
			if done || err != nil {
				return res, err
			}
			continue
		}
		if err := s.advance(ctx, f); err != nil {
			return nil, s.abort(f, err)
		}
	}
}

func (s *Session) askStep(ctx context.Context, f flow, step string) error {
	for {
		p := f.panel(step)
		if p == nil {
			return nil
		}
		if err := s.ask(ctx, p); err != nil {
			return err
		}
		again, err := p.apply()
		switch {
		case errors.Is(err, wizard.ErrClosed), errors.Is(err, wizard.ErrBusy):
			return err
		case err != nil:
			s.fail(err.Error())
			continue
		}
		if !again {
			return nil
		}
	}
}

// advance moves past the current step. Validation problems are printed and
// leave the step active so that the loop asks it again.
func (s *Session) advance(ctx context.Context, f flow) error {
	err := f.next(false)
	var verr *wizard.ValidationError
	if err == nil || !errors.As(err, &verr) {
		return err
	}
	if verr.Kind != wizard.WarningValidation {
		s.fail(verr.Message())
		return nil
	}

	s.warn(verr.Message())
	ok, err := s.confirm(ctx, "Continue anyway?", false)
	if err != nil || !ok {
		return err
	}
	err = f.next(true)
	if errors.As(err, &verr) {
		s.fail(verr.Message())
		return nil
	}
	return err
}

// review confirms and submits. done is false when the user went back to
// edit.
func (s *Session) review(ctx context.Context, f flow) (*wizard.SubmissionResult, bool, error) {
	ok, err := s.confirm(ctx, "Create?", true)
	if err != nil {
		return nil, true, s.abort(f, err)
	}
	if !ok {
		return nil, false, f.back()
	}

	for {
		var res *wizard.SubmissionResult
		err := s.spin(ctx, "Creating...", func(ctx context.Context) error {
			var err error
			res, err = f.create(ctx)
			return err
		})
		if err == nil {
			s.ok(fmt.Sprintf("%s %s created", res.Object.GetKind(), res.Object.GetName()))
			return res, true, nil
		}
		title := "Retry?"
		switch {
		case wizard.IsReadinessError(err):
			title = "Wait again?"
		case !wizard.IsSubmissionError(err):
			return nil, true, err
		}
		s.fail(err.Error())
		retry, cerr := s.confirm(ctx, title, true)
		if cerr != nil || !retry {
			f.cancel()
			return nil, true, err
		}
	}
}

func (s *Session) confirm(ctx context.Context, title string, def bool) (bool, error) {
	p := &confirmPanel{title: title, value: def}
	if err := s.ask(ctx, p); err != nil {
		return false, err
	}
	return p.value, nil
}

func (s *Session) abort(f flow, err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		f.cancel()
		return ErrAborted
	}
	return err
}

func (s *Session) ok(msg string) {
	fmt.Fprintln(s.out, readyStyle.Render(checkMark+" "+msg))
}

func (s *Session) fail(msg string) {
	for _, line := range strings.Split(msg, "\n") {
		fmt.Fprintln(s.out, failedStyle.Render(crossMark+" "+line))
	}
}

func (s *Session) warn(msg string) {
	for _, line := range strings.Split(msg, "\n") {
		fmt.Fprintln(s.out, warningStyle.Render(warnMark+" "+line))
	}
}

type confirmPanel struct {
	title string
	value bool
}

func (p *confirmPanel) form() *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(p.title).Value(&p.value),
	))
}

func (p *confirmPanel) apply() (bool, error) {
	return false, nil
}
