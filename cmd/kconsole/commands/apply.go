package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/kconsole/cmd/kconsole/handlers"
)

// Apply returns the command for importing YAML.
//
// Required flags:
//
//	--filename, -f: Manifest to import, or - for stdin
//
// Optional flags:
//
//	--server-side: Apply instead of create
func Apply(opts *handlers.Options) *cobra.Command {
	var file string
	var serverSide bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create resources from a YAML manifest",
		Long: `Create every document of a multi-document YAML manifest, in order.

Creation stops at the first rejected document. With --server-side the
documents are applied, so existing objects are updated.

Examples:
  kconsole apply -f vm.yaml
  cat sources.yaml | kconsole apply -f - --server-side`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), *opts, file, serverSide)
		},
	}

	cmd.Flags().StringVarP(&file, "filename", "f", "", "Manifest to import, or - for stdin")
	cmd.Flags().BoolVar(&serverSide, "server-side", false, "Apply instead of create")
	_ = cmd.MarkFlagRequired("filename")

	return cmd
}
