package utils

import (
	"strings"
	"unicode"
)

// FoldKey normalises an area name for case-insensitive matching.
func FoldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TitleCase upper-cases the first letter of every run of letters and
// lower-cases the rest, so "ambegaon budruk" becomes "Ambegaon Budruk" and
// "baner-balewadi" becomes "Baner-Balewadi".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
