// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/kconsole/cmd/kconsole/handlers"
	"github.com/imamik/kconsole/internal/config"
)

// Root returns the root command for the kconsole CLI.
//
// The root command owns the flags shared by every subcommand and configures
// logging before any of them runs.
func Root() *cobra.Command {
	opts := &handlers.Options{}
	var debug bool

	cmd := &cobra.Command{
		Use:          "kconsole",
		Short:        "Create and inspect cluster resources from the terminal",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger := handlers.NewLogger(cmd.ErrOrStderr(), debug)
			ctrllog.SetLogger(logger)
			cmd.SetContext(ctrllog.IntoContext(cmd.Context(), logger))
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: $HOME/"+config.FileName+")")
	flags.StringVar(&opts.Kubeconfig, "kubeconfig", "", "Path to the kubeconfig file")
	flags.StringVar(&opts.Context, "context", "", "Kubeconfig context to use")
	flags.StringVarP(&opts.Namespace, "namespace", "n", "", "Namespace to work in")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(Create(opts))
	cmd.AddCommand(List(opts))
	cmd.AddCommand(Get(opts))
	cmd.AddCommand(Apply(opts))
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
