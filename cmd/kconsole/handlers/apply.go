package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
)

// stdin is read when the file argument is "-".
var stdin io.Reader = os.Stdin

// Apply handles the apply command: every document of the YAML file is
// created, or applied server-side when serverSide is set. Creation stops at
// the first failing document; the objects created before it are reported.
func Apply(ctx context.Context, opts Options, file string, serverSide bool) error {
	data, err := readInput(file)
	if err != nil {
		return err
	}
	e, err := setup(ctx, opts)
	if err != nil {
		return err
	}

	created, err := e.client.CreateFromYAML(ctx, data, serverSide)
	verb := "created"
	if serverSide {
		verb = "applied"
	}
	for _, obj := range created {
		fmt.Fprintf(stdout, "%s/%s %s\n", obj.GetKind(), obj.GetName(), verb)
	}
	return err
}

func readInput(file string) ([]byte, error) {
	if file == "" {
		return nil, fmt.Errorf("no input file given, use -f <file> or -f -")
	}
	if file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	// #nosec G304
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return data, nil
}
