package prompt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/imamik/kconsole/api/v1alpha1"
	"github.com/imamik/kconsole/internal/eventsource"
	"github.com/imamik/kconsole/internal/sink"
	kctesting "github.com/imamik/kconsole/internal/testing"
	"github.com/imamik/kconsole/internal/vmwizard"
	"github.com/imamik/kconsole/internal/wizard"
)

// script answers panels in place of a terminal. Each handler sees how many
// times its panel type was asked before.
type script struct {
	calls    map[string]int
	handlers map[string]func(p panel, call int) error
}

func newScript() *script {
	return &script{calls: map[string]int{}, handlers: map[string]func(panel, int) error{}}
}

func (s *script) on(p panel, fn func(p panel, call int) error) *script {
	s.handlers[fmt.Sprintf("%T", p)] = fn
	return s
}

func (s *script) ask(_ context.Context, p panel) error {
	key := fmt.Sprintf("%T", p)
	call := s.calls[key]
	s.calls[key]++
	if fn, ok := s.handlers[key]; ok {
		return fn(p, call)
	}
	return nil
}

func newTestSession(s *script) (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	sess := NewSession(WithOutput(&out), WithAccessible(true))
	sess.ask = s.ask
	return sess, &out
}

// vmScript creates a PXE machine with one NIC, confirming everything.
func vmScript() *script {
	return newScript().
		on(&generalPanel{}, func(p panel, _ int) error {
			g := p.(*generalPanel)
			g.name, g.flavor = "vm1", vmwizard.FlavorTiny
			return nil
		}).
		on(&sourcePanel{}, func(p panel, _ int) error {
			sp := p.(*sourcePanel)
			sp.method, sp.os, sp.workload = vmwizard.ProvisionPXE, "fedora32", "server"
			return nil
		}).
		on(&nicPanel{}, func(p panel, call int) error {
			n := p.(*nicPanel)
			n.add = call == 0
			n.name = "nic0"
			return nil
		}).
		on(&vmReviewPanel{}, func(p panel, _ int) error {
			p.(*vmReviewPanel).start = true
			return nil
		}).
		on(&confirmPanel{}, func(p panel, _ int) error {
			p.(*confirmPanel).value = true
			return nil
		})
}

func createdVM() *unstructured.Unstructured {
	return kctesting.NewObject(v1alpha1.VirtualMachineGVK, "vm1").InNamespace("demo").Build()
}

func TestRunVM(t *testing.T) {
	creator := &kctesting.MockCreator{}
	creator.On("Create", mock.Anything, mock.Anything).Return(createdVM(), nil).Once()

	w, err := vmwizard.New("demo", nil, wizard.WithCreator(creator))
	require.NoError(t, err)
	s := vmScript()
	sess, out := newTestSession(s)

	res, err := sess.RunVM(kctesting.TestContext(t), w, t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "vm1", res.Payload.String(vmwizard.FieldName))
	assert.Equal(t, "nic0", res.Payload.String(vmwizard.FieldBootSource))
	assert.True(t, res.Payload.Bool(vmwizard.FieldStartOnCreation))
	assert.Equal(t, 2, s.calls["*prompt.nicPanel"], "asks for NICs until the user declines")
	assert.Contains(t, out.String(), "VirtualMachine vm1 created")
	creator.AssertExpectations(t)

	sent := creator.Calls[0].Arguments.Get(1).(*unstructured.Unstructured)
	assert.Equal(t, "VirtualMachine", sent.GetKind())
}

func TestRunVM_ValidationFailureAsksStepAgain(t *testing.T) {
	creator := &kctesting.MockCreator{}
	creator.On("Create", mock.Anything, mock.Anything).Return(createdVM(), nil)

	w, err := vmwizard.New("demo", nil, wizard.WithCreator(creator))
	require.NoError(t, err)
	s := vmScript().on(&generalPanel{}, func(p panel, call int) error {
		g := p.(*generalPanel)
		g.flavor = vmwizard.FlavorTiny
		if call > 0 {
			g.name = "vm1"
		}
		return nil
	})
	sess, out := newTestSession(s)

	_, err = sess.RunVM(kctesting.TestContext(t), w, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 2, s.calls["*prompt.generalPanel"])
	assert.Contains(t, out.String(), crossMark)
}

func TestRunVM_ActionErrorIsShownAndAskedAgain(t *testing.T) {
	creator := &kctesting.MockCreator{}
	creator.On("Create", mock.Anything, mock.Anything).Return(createdVM(), nil)

	w, err := vmwizard.New("demo", nil, wizard.WithCreator(creator))
	require.NoError(t, err)
	s := vmScript().on(&generalPanel{}, func(p panel, call int) error {
		g := p.(*generalPanel)
		g.name = "vm1"
		g.flavor = vmwizard.FlavorCustom
		g.memory = "2Gi"
		if call > 0 {
			g.cpu = "2"
		}
		return nil
	})
	sess, out := newTestSession(s)

	res, err := sess.RunVM(kctesting.TestContext(t), w, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out.String(), vmwizard.ErrCustomFlavor.Error())
	assert.Equal(t, "2", res.Payload.String(vmwizard.FieldCPU))
}

func TestRunVM_AbortCancelsWizard(t *testing.T) {
	w, err := vmwizard.New("demo", nil, wizard.WithCreator(&kctesting.MockCreator{}))
	require.NoError(t, err)
	s := newScript().on(&generalPanel{}, func(panel, int) error { return huh.ErrUserAborted })
	sess, _ := newTestSession(s)

	_, err = sess.RunVM(kctesting.TestContext(t), w, t.TempDir())
	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, w.FillName("late"), wizard.ErrClosed)
}

func TestRunVM_SubmissionFailureRetries(t *testing.T) {
	forbidden := apierrors.NewForbidden(v1alpha1.VirtualMachineGVR.GroupResource(), "vm1", errors.New("quota exceeded"))
	creator := &kctesting.MockCreator{}
	creator.On("Create", mock.Anything, mock.Anything).Return(nil, forbidden).Once()
	creator.On("Create", mock.Anything, mock.Anything).Return(createdVM(), nil).Once()

	w, err := vmwizard.New("demo", nil, wizard.WithCreator(creator))
	require.NoError(t, err)
	s := vmScript()
	sess, out := newTestSession(s)

	_, err = sess.RunVM(kctesting.TestContext(t), w, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "quota exceeded")
	creator.AssertNumberOfCalls(t, "Create", 2)
}

func TestRunVM_ReadinessFailureWaitsWithoutRecreating(t *testing.T) {
	creator := &kctesting.MockCreator{}
	creator.On("Create", mock.Anything, mock.Anything).Return(createdVM(), nil).Once()
	creator.On("WaitForCreation", mock.Anything, mock.Anything).Return(errors.New("timed out")).Once()
	creator.On("WaitForCreation", mock.Anything, mock.Anything).Return(nil).Once()

	w, err := vmwizard.New("demo", nil, wizard.WithCreator(creator), wizard.WithWaiter(creator))
	require.NoError(t, err)
	var titles []string
	s := vmScript().on(&confirmPanel{}, func(p panel, _ int) error {
		c := p.(*confirmPanel)
		titles = append(titles, c.title)
		c.value = true
		return nil
	})
	sess, out := newTestSession(s)

	res, err := sess.RunVM(kctesting.TestContext(t), w, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "vm1", res.Object.GetName())
	assert.Contains(t, out.String(), "was created but is not ready")
	assert.Contains(t, titles, "Wait again?")
	assert.NotContains(t, titles, "Retry?")
	creator.AssertNumberOfCalls(t, "Create", 1)
	creator.AssertNumberOfCalls(t, "WaitForCreation", 2)
}

func TestRunVM_DecliningRetryCancels(t *testing.T) {
	forbidden := apierrors.NewForbidden(v1alpha1.VirtualMachineGVR.GroupResource(), "vm1", errors.New("quota exceeded"))
	creator := &kctesting.MockCreator{}
	creator.On("Create", mock.Anything, mock.Anything).Return(nil, forbidden)

	w, err := vmwizard.New("demo", nil, wizard.WithCreator(creator))
	require.NoError(t, err)
	s := vmScript().on(&confirmPanel{}, func(p panel, _ int) error {
		c := p.(*confirmPanel)
		c.value = c.title != "Retry?"
		return nil
	})
	sess, _ := newTestSession(s)

	_, err = sess.RunVM(kctesting.TestContext(t), w, t.TempDir())
	require.Error(t, err)
	assert.True(t, apierrors.IsForbidden(err))
	assert.ErrorIs(t, w.FillName("late"), wizard.ErrClosed)
}

func TestRunVM_GeneratesSSHKey(t *testing.T) {
	creator := &kctesting.MockCreator{}
	creator.On("Create", mock.Anything, mock.Anything).Return(createdVM(), nil)
	w, err := vmwizard.New("demo", nil, wizard.WithCreator(creator))
	require.NoError(t, err)

	sshDir := t.TempDir()
	s := vmScript().on(&cloudInitPanel{}, func(p panel, _ int) error {
		c := p.(*cloudInitPanel)
		assert.Empty(t, c.keys, "no local keys to offer")
		c.enabled, c.generate = true, true
		return nil
	})
	sess, out := newTestSession(s)

	res, err := sess.RunVM(kctesting.TestContext(t), w, sshDir)
	require.NoError(t, err)
	keys, err := wizard.List[string](res.Payload, vmwizard.FieldCloudInitSSHKeys)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "vm1@kconsole")
	assert.FileExists(t, filepath.Join(sshDir, "kconsole_vm1"))
	assert.Contains(t, out.String(), "private key written to")
}

func TestRunEventSource(t *testing.T) {
	created := kctesting.PingSource("ping", "demo").Build()
	creator := &kctesting.MockCreator{}
	creator.On("Create", mock.Anything, mock.Anything).Return(created, nil)

	f, err := eventsource.New("demo", nil, wizard.WithCreator(creator))
	require.NoError(t, err)
	collections := func() []sink.Collection {
		svc := kctesting.KnativeService("shop", "demo").Build()
		return []sink.Collection{{Items: []sink.Candidate{sink.CandidateFromObject(svc)}, Loaded: true}}
	}
	s := newScript().
		on(&eventSourcePanel{}, func(p panel, _ int) error {
			e := p.(*eventSourcePanel)
			e.kind, e.schedule = eventsource.KindPing, "*/5 * * * *"
			return nil
		}).
		on(&sinkPanel{}, func(p panel, _ int) error {
			sp := p.(*sinkPanel)
			require.Len(t, sp.options, 1)
			sp.selected = sp.options[0].Key()
			return nil
		}).
		on(&confirmPanel{}, func(p panel, _ int) error {
			p.(*confirmPanel).value = true
			return nil
		})
	sess, _ := newTestSession(s)

	res, err := sess.RunEventSource(kctesting.TestContext(t), f, collections)
	require.NoError(t, err)
	assert.Equal(t, "shop", res.Payload.String(sink.FieldName))
	assert.Equal(t, "Service", res.Payload.String(sink.FieldKind))
	assert.Regexp(t, `^ping-source-`, res.Payload.String(eventsource.FieldName))
}

func TestRunEventSource_NoCandidatesOffersURI(t *testing.T) {
	creator := &kctesting.MockCreator{}
	creator.On("Create", mock.Anything, mock.Anything).Return(kctesting.PingSource("ping", "demo").Build(), nil)
	f, err := eventsource.New("demo", nil, wizard.WithCreator(creator))
	require.NoError(t, err)

	empty := func() []sink.Collection { return []sink.Collection{{Loaded: true}} }
	s := newScript().
		on(&eventSourcePanel{}, func(p panel, _ int) error {
			p.(*eventSourcePanel).schedule = "@hourly"
			return nil
		}).
		on(&sinkPanel{}, func(p panel, _ int) error {
			sp := p.(*sinkPanel)
			assert.True(t, sp.disabled)
			assert.Equal(t, string(sink.TypeURI), sp.typ)
			sp.uri = "https://events.example.com"
			return nil
		}).
		on(&confirmPanel{}, func(p panel, _ int) error {
			p.(*confirmPanel).value = true
			return nil
		})
	sess, out := newTestSession(s)

	res, err := sess.RunEventSource(kctesting.TestContext(t), f, empty)
	require.NoError(t, err)
	assert.Equal(t, "https://events.example.com", res.Payload.String(sink.FieldURI))
	assert.Contains(t, out.String(), warnMark)
}

func TestParseHelpers(t *testing.T) {
	res, err := parseResources("v1 Event\n\n apps/v1  Deployment \n")
	require.NoError(t, err)
	assert.Equal(t, []eventsource.Resource{{APIVersion: "v1", Kind: "Event"}, {APIVersion: "apps/v1", Kind: "Deployment"}}, res)
	_, err = parseResources("v1")
	assert.Error(t, err)

	env, err := parseEnv("A=1\nB=x=y\n")
	require.NoError(t, err)
	assert.Equal(t, []eventsource.EnvVar{{Name: "A", Value: "1"}, {Name: "B", Value: "x=y"}}, env)
	_, err = parseEnv("nope")
	assert.Error(t, err)

	assert.Equal(t, []string{"a", "b"}, splitLines(" a \n\n b"))
}

func TestSummary(t *testing.T) {
	p := wizard.Payload{
		"name":     "vm1",
		"networks": []any{map[string]any{"name": "nic0"}},
		"template": nil,
		"running":  true,
	}
	assert.Equal(t, "name: vm1\nnetworks: - name: nic0\nrunning: true\ntemplate: -", summary(p))
}
