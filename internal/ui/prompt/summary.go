package prompt

import (
	"fmt"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/imamik/kconsole/internal/wizard"
)

// summary renders a payload as "path: value" lines in key order. Lists and
// maps are shown as flow YAML.
func summary(p wizard.Payload) string {
	var b strings.Builder
	for _, k := range p.Keys() {
		fmt.Fprintf(&b, "%s: %s\n", k, renderValue(p.Get(k)))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "-"
	case string:
		if v == "" {
			return "-"
		}
		return v
	case bool, int, int64, float64:
		return fmt.Sprint(v)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(strings.ReplaceAll(string(data), "\n", "; "))
}
