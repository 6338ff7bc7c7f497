// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/kconsole/internal/config"
	"github.com/imamik/kconsole/internal/eventsource"
	"github.com/imamik/kconsole/internal/k8s"
	"github.com/imamik/kconsole/internal/registry"
	"github.com/imamik/kconsole/internal/table"
	"github.com/imamik/kconsole/internal/ui/listview"
	"github.com/imamik/kconsole/internal/ui/prompt"
	"github.com/imamik/kconsole/internal/vmwizard"
	"github.com/imamik/kconsole/internal/wizard"
)

// Options are the global flags shared by every command.
type Options struct {
	ConfigPath string
	Kubeconfig string
	Context    string
	Namespace  string
}

// Session runs wizards interactively.
type Session interface {
	RunVM(ctx context.Context, w *vmwizard.Wizard, sshDir string) (*wizard.SubmissionResult, error)
	RunEventSource(ctx context.Context, f *eventsource.Form, collections prompt.Collections) (*wizard.SubmissionResult, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig loads the configuration file.
	loadConfig = config.Load

	// newClient connects to the cluster.
	newClient = func(cfg *config.Config, log logr.Logger) (*k8s.Client, error) {
		return k8s.NewFromKubeconfig(cfg.Kubeconfig, cfg.Context,
			k8s.WithFieldManager(cfg.FieldManager),
			k8s.WithNamespace(cfg.Namespace),
			k8s.WithWaitTimeout(cfg.WaitTimeout, 0),
			k8s.WithLogger(log.WithName("k8s")),
		)
	}

	// newSession creates the interactive prompt session.
	newSession = func(log logr.Logger) Session {
		return prompt.NewSession(prompt.WithLogger(log.WithName("prompt")))
	}

	// runLive shows a live list until the user quits.
	runLive = listview.Run

	// stdout receives command output.
	stdout io.Writer = os.Stdout

	// terminalWidth returns the width tables are rendered for.
	terminalWidth = func() int { return listview.TerminalWidth(os.Stdout) }

	// isInteractive reports whether live views can take over the terminal.
	isInteractive = func() bool { return prompt.IsTerminal(os.Stdout) }

	// sshDir is where the VM wizard looks for and writes SSH keys; empty
	// means ~/.ssh.
	sshDir = ""
)

// env is the per-command state built from Options.
type env struct {
	cfg     *config.Config
	client  *k8s.Client
	log     logr.Logger
	metrics *wizard.Metrics
	reg     *prometheus.Registry
}

// setup loads the configuration, applies flag overrides and connects.
func setup(ctx context.Context, opts Options) (*env, error) {
	log := ctrllog.FromContext(ctx)

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Kubeconfig != "" {
		cfg.Kubeconfig = opts.Kubeconfig
	}
	if opts.Context != "" {
		cfg.Context = opts.Context
	}
	if cfg.Debug && !log.V(1).Enabled() {
		log = NewLogger(os.Stderr, true)
	}
	if opts.Namespace != "" {
		cfg.Namespace = opts.Namespace
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --namespace: %w", err)
		}
	}

	if err := registry.Init(table.RegisterBuiltins); err != nil {
		return nil, fmt.Errorf("failed to register detail tabs: %w", err)
	}

	client, err := newClient(cfg, log)
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	log.V(1).Info("connected", "namespace", client.Namespace(), "fieldManager", client.FieldManager())
	return &env{cfg: cfg, client: client, log: log, metrics: wizard.NewMetrics(reg), reg: reg}, nil
}

// wizardOptions wires the client, logging and metrics into a wizard.
func (e *env) wizardOptions() []wizard.Option {
	opts := []wizard.Option{
		wizard.WithCreator(e.client),
		wizard.WithLogger(e.log.WithName("wizard")),
		wizard.WithMetrics(e.metrics),
		wizard.WithSubmitTimeout(e.cfg.SubmitTimeout),
	}
	if e.cfg.WaitTimeout > 0 {
		opts = append(opts, wizard.WithWaiter(e.client))
	}
	return opts
}

// flushMetrics writes the wizard metrics when a textfile is configured.
func (e *env) flushMetrics() {
	if e.cfg.MetricsTextfile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(e.cfg.MetricsTextfile, e.reg); err != nil {
		e.log.Error(err, "failed to write metrics", "path", e.cfg.MetricsTextfile)
	}
}

// definition finds the table definition of kind, extended with the
// registered detail tabs.
func definition(kind string) (table.Definition, error) {
	if err := registry.Init(table.RegisterBuiltins); err != nil {
		return table.Definition{}, fmt.Errorf("failed to register detail tabs: %w", err)
	}
	def, ok := table.Find(kind)
	if !ok {
		var known []string
		for _, d := range table.Definitions() {
			known = append(known, d.Plural)
		}
		return table.Definition{}, fmt.Errorf("unknown resource kind %q (known: %v)", kind, known)
	}
	return def.WithProviders(registry.Default()), nil
}
