package match

import (
	"strings"
	"unicode"
)

// Normalize case-folds a name and strips the separators users mix up in
// NetBox names: "virtual-machines", "virtual_machines" and "VirtualMachines"
// all normalize to "virtualmachines".
func Normalize(s string) string {
	var sb strings.Builder

	sb.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}
