package core

import (
	"strings"
	"unicode"
)

const MaxPreviewLen = 280

// Normalize trims s and collapses whitespace runs to single spaces, then
// truncates to MaxPreviewLen runes. Used for previews only; item content is
// always stored verbatim.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	space := false
	n := 0
	for _, r := range s {
		if n >= MaxPreviewLen {
			break
		}
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
				n++
			}
			continue
		}
		space = false
		b.WriteRune(r)
		n++
	}
	return strings.TrimSpace(b.String())
}
