package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func find(t *testing.T, root *cobra.Command, args ...string) *cobra.Command {
	t.Helper()
	cmd, _, err := root.Find(args)
	require.NoError(t, err)
	return cmd
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()
	assert.Equal(t, "kconsole", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"create", "list", "get", "apply", "version", "completion"}, names)

	create := find(t, cmd, "create")
	var wizards []string
	for _, sub := range create.Commands() {
		wizards = append(wizards, sub.Name())
	}
	assert.ElementsMatch(t, []string{"vm", "eventsource"}, wizards)
}

func TestRoot_PersistentFlags(t *testing.T) {
	flags := Root().PersistentFlags()
	for _, name := range []string{"config", "kubeconfig", "context", "namespace", "debug"} {
		assert.NotNil(t, flags.Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "n", flags.Lookup("namespace").Shorthand)
}

func TestCommandFlags(t *testing.T) {
	root := Root()
	tests := []struct {
		path  []string
		flags []string
	}{
		{[]string{"create", "vm"}, []string{"template"}},
		{[]string{"create", "eventsource"}, []string{"kind", "sink", "sink-uri"}},
		{[]string{"list"}, []string{"watch", "sort-by", "desc"}},
		{[]string{"get"}, []string{"tab"}},
		{[]string{"apply"}, []string{"filename", "server-side"}},
	}
	for _, tt := range tests {
		cmd := find(t, root, tt.path...)
		for _, f := range tt.flags {
			assert.NotNil(t, cmd.Flags().Lookup(f), "%v: missing --%s", tt.path, f)
		}
	}
}

func TestArgsValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"list without kind", []string{"list"}},
		{"get without name", []string{"get", "daemonsets"}},
		{"apply without file", []string{"apply"}},
		{"sink and sink-uri", []string{"create", "eventsource", "--sink", "a", "--sink-uri", "https://x"}},
		{"vm with positional", []string{"create", "vm", "extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := Root()
			root.SetArgs(tt.args)
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			assert.Error(t, root.Execute())
		})
	}
}

func TestVersion_Output(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	defer SetVersionInfo(origVersion, origCommit, origDate)

	SetVersionInfo("1.2.3", "abc123", "2026-01-01")
	root := Root()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "kconsole 1.2.3\n  commit: abc123\n  built:  2026-01-01\n", out.String())
}

func TestCompletion_Shells(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := Root()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})
			require.NoError(t, root.Execute())
			assert.Contains(t, out.String(), "kconsole")
		})
	}
}

func TestCompletion_HelpShowsEveryShell(t *testing.T) {
	cmd := Completion()
	for _, shell := range cmd.ValidArgs {
		assert.Contains(t, cmd.Long, "kconsole completion "+shell)
	}
}

func TestCompletion_RejectsUnknownShell(t *testing.T) {
	root := Root()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"completion", "tcsh"})
	assert.Error(t, root.Execute())
}

func TestGet_CompletesTabs(t *testing.T) {
	root := Root()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{cobra.ShellCompNoDescRequestCmd, "get", "daemonsets", "fluentd", "--tab", ""})
	require.NoError(t, root.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Subset(t, lines, []string{"details", "yaml", "pods", "environment", "events", "scheduling"},
		"built-in and registered tabs are offered")
}

func TestGet_CompletesNoTabsForUnknownKind(t *testing.T) {
	root := Root()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{cobra.ShellCompNoDescRequestCmd, "get", "widgets", "x", "--tab", ""})
	require.NoError(t, root.Execute())

	assert.NotContains(t, out.String(), "yaml")
}
