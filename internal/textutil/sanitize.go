package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName maps a creator key (username, channel id) to a single path
// element. Separators and reserved characters become dashes, control
// characters are dropped and leading dots are stripped so the result can never
// name a parent or hidden file. An input with nothing usable returns "".
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			b.WriteByte('-')
		case r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(strings.TrimLeft(b.String(), "."))
}
