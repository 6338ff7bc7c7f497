package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/kconsole/cmd/kconsole/handlers"
	"github.com/imamik/kconsole/internal/eventsource"
)

// Create returns the parent command of the creation wizards.
func Create(opts *handlers.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a resource with a guided wizard",
	}
	cmd.AddCommand(createVM(opts))
	cmd.AddCommand(createEventSource(opts))
	return cmd
}

// createVM returns the command for the virtual machine wizard.
//
// Optional flags:
//
//	--template, -t: Create from a template; the provision source step is skipped
func createVM(opts *handlers.Options) *cobra.Command {
	var template string

	cmd := &cobra.Command{
		Use:     "vm",
		Aliases: []string{"virtualmachine"},
		Short:   "Create a virtual machine",
		Long: `Create a virtual machine with a guided wizard.

The wizard walks through general settings and flavor, provision source,
networking, storage, cloud-init, hardware and a final review. Each step is
validated before the next one opens; warnings can be confirmed to continue.

Examples:
  # Create a virtual machine in the current namespace
  kconsole create vm

  # Create from a template in another namespace
  kconsole create vm --template fedora-server -n vms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.CreateVM(cmd.Context(), *opts, template)
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "Template to create the virtual machine from")

	return cmd
}

// createEventSource returns the command for the event source form.
//
// Optional flags:
//
//	--kind, -k: Preset the source type
//	--sink: Preset the sink resource as name or Kind/name
//	--sink-uri: Preset a URI sink
func createEventSource(opts *handlers.Options) *cobra.Command {
	var o handlers.EventSourceOptions

	cmd := &cobra.Command{
		Use:     "eventsource",
		Aliases: []string{"source"},
		Short:   "Create an event source",
		Long: `Create an event source with a guided form.

The sink step offers the services, channels and brokers of the namespace
and follows them live. A sink given on the command line is matched against
them by exact name first, then by fuzzy name; a match must be unique.

Examples:
  # Create a ping source, choosing the sink interactively
  kconsole create eventsource --kind PingSource

  # Deliver to a Knative service
  kconsole create eventsource --kind PingSource --sink Service/event-display

  # Deliver to an external endpoint
  kconsole create eventsource --sink-uri https://events.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.CreateEventSource(cmd.Context(), *opts, o)
		},
	}

	cmd.Flags().StringVarP(&o.Kind, "kind", "k", "", "Source type")
	cmd.Flags().StringVar(&o.Sink, "sink", "", "Sink resource as name or Kind/name")
	cmd.Flags().StringVar(&o.SinkURI, "sink-uri", "", "Sink URI")
	cmd.MarkFlagsMutuallyExclusive("sink", "sink-uri")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return eventsource.Kinds, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}
