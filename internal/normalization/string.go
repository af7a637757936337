package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	return normalized
}

// TrimInputString keeps the original casing, for display fields like full
// names where lowercasing would mangle the value.
func TrimInputString(input string) string {
	return strings.TrimSpace(input)
}
