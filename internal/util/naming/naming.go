package naming

import (
	"strings"
	"unicode"

	"k8s.io/apimachinery/pkg/util/rand"
	"k8s.io/apimachinery/pkg/util/validation"
)

const suffixLength = 5

// suffix is replaced in tests.
var suffix = func() string { return rand.String(suffixLength) }

// Kebab converts a kind such as "ApiServerSource" to "api-server-source".
// Runs of capitals stay together: "DNSRecord" becomes "dns-record".
func Kebab(kind string) string {
	runes := []rune(kind)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if r == '_' || r == ' ' || r == '.' {
			b.WriteByte('-')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Default returns a generated object name for kind.
func Default(kind string) string {
	base := Kebab(kind)
	if limit := validation.DNS1123LabelMaxLength - suffixLength - 1; len(base) > limit {
		base = strings.TrimRight(base[:limit], "-")
	}
	return base + "-" + suffix()
}

// DataVolume returns the name of the data volume backing disk of vm.
func DataVolume(vm, disk string) string {
	return vm + "-" + disk
}
