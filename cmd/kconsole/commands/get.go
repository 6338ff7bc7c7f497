package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/kconsole/cmd/kconsole/handlers"
)

// Get returns the command for showing one detail tab of a resource.
func Get(opts *handlers.Options) *cobra.Command {
	var tab string

	cmd := &cobra.Command{
		Use:   "get <kind> <name>",
		Short: "Show the details of a resource",
		Long: `Show one detail tab of a resource.

Every kind has a yaml and an events tab; daemon sets add details, pods and
environment. Extensions can register further tabs.

Examples:
  # Show the details of a daemon set
  kconsole get daemonset fluentd

  # Show the pods of a daemon set
  kconsole get ds fluentd --tab pods`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: handlers.Kinds(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Get(cmd.Context(), *opts, args[0], args[1], tab)
		},
	}

	cmd.Flags().StringVar(&tab, "tab", "", "Tab to show (default: the first tab of the kind)")
	_ = cmd.RegisterFlagCompletionFunc("tab", func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return handlers.TabNames(args[0]), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}
