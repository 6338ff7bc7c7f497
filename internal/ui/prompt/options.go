package prompt

import (
	"github.com/charmbracelet/huh"

	"github.com/imamik/kconsole/internal/vmwizard"
)

func flavorOptions() []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(vmwizard.Flavors))
	for _, f := range vmwizard.Flavors {
		out = append(out, huh.NewOption(f.Label+" ("+f.Description+")", f.Value))
	}
	return out
}

func choiceOptions(choices []vmwizard.ChoiceOption) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(choices))
	for _, c := range choices {
		label := c.Label
		if c.Description != "" {
			label += " - " + c.Description
		}
		out = append(out, huh.NewOption(label, c.Value))
	}
	return out
}

func stringOptions(values ...string) []huh.Option[string] {
	return huh.NewOptions(values...)
}
