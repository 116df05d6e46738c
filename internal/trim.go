package internal

import "strings"

const trimMarker = "[...]"

// TrimToRect keeps at most maxHeight lines of s, each at most maxWidth runes.
// Cut lines and a cut tail are marked with "[...]".
func TrimToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	cut := len(lines) > maxHeight
	if cut {
		lines = lines[:maxHeight]
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if r := []rune(line); len(r) > maxWidth {
			b.WriteString(string(r[:maxWidth]))
			b.WriteString(trimMarker)
			continue
		}
		b.WriteString(line)
	}
	if cut {
		b.WriteByte('\n')
		b.WriteString(trimMarker)
	}
	return b.String()
}
