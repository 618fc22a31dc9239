package ir

import "strings"

// TrimQuoted strips the #"..." wrapper from a quoted M identifier and
// unfolds the "" escape, so the result is the display name other queries
// know it by. Bare identifiers pass through unchanged apart from
// surrounding whitespace.
func TrimQuoted(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, `#"`) && strings.HasSuffix(name, `"`) && len(name) > 3 {
		inner := name[2 : len(name)-1]
		name = strings.TrimSpace(strings.ReplaceAll(inner, `""`, `"`))
	}
	return name
}

// IsQuotedName reports whether name is written in the #"..." form.
func IsQuotedName(name string) bool {
	name = strings.TrimSpace(name)
	return strings.HasPrefix(name, `#"`) && strings.HasSuffix(name, `"`) && len(name) > 3
}
