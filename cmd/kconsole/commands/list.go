package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/kconsole/cmd/kconsole/handlers"
)

// List returns the command for listing resources.
//
// Optional flags:
//
//	--watch, -w: Follow changes in an interactive view
//	--sort-by: Column to sort by
//	--desc: Sort descending
func List(opts *handlers.Options) *cobra.Command {
	var o handlers.ListOptions

	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List resources of a kind",
		Long: `List resources of a kind as a table.

Columns adapt to the terminal width: narrow terminals hide the less
important columns. With --watch the table stays open and follows changes;
press s to cycle the sort column, r to reverse it and q to quit.

Examples:
  # List daemon sets
  kconsole list daemonsets

  # Watch virtual machines, sorted by name
  kconsole list vms --watch --sort-by name`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: handlers.Kinds(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.List(cmd.Context(), *opts, args[0], o)
		},
	}

	cmd.Flags().BoolVarP(&o.Watch, "watch", "w", false, "Follow changes in an interactive view")
	cmd.Flags().StringVar(&o.SortBy, "sort-by", "", "Column to sort by")
	cmd.Flags().BoolVar(&o.Descending, "desc", false, "Sort descending")

	return cmd
}
