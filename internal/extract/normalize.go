package extract

import "strings"

// Normalize drops blank lines and trims every remaining line.
// Line order and non-whitespace content are preserved.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}
