package codegen

import (
	"fmt"
	"strings"
)

// Sanitize turns an object name into an assembler label. Anything other
// than ASCII letters, digits and underscores becomes an underscore and a
// leading digit gets an underscore prefix. An empty result returns "".
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return s
}

// labels assigns a unique label to every name. Unnamed objects are called
// object1, object2 and so on by position and later duplicates get a numeric
// suffix, so the result only depends on the order of names.
func labels(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]struct{}, len(names))

	for i, name := range names {
		base := Sanitize(name)
		if base == "" {
			base = fmt.Sprintf("object%d", i+1)
		}

		label := base
		for n := 2; ; n++ {
			if _, ok := used[strings.ToLower(label)]; !ok {
				break
			}
			label = fmt.Sprintf("%s_%d", base, n)
		}

		used[strings.ToLower(label)] = struct{}{}
		out[i] = label
	}

	return out
}
