// Package strings holds the small text helpers shared by config parsing and
// file naming.
package strings

import (
	"strings"
	"unicode"
)

// SplitList splits a sep-joined value such as an env var into its trimmed,
// non-empty, first-seen-unique parts. It returns nil when nothing is left.
func SplitList(raw, sep string) []string {
	var out []string
	seen := map[string]bool{}
	for part := range strings.SplitSeq(raw, sep) {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

// CollapseNonAlnum replaces every run of characters that are not letters or
// digits with a single sep and trims sep from both ends.
//
//	CollapseNonAlnum("Intro to Go: Part 1!", "_") // "Intro_to_Go_Part_1"
func CollapseNonAlnum(s, sep string) string {
	var b strings.Builder
	b.Grow(len(s))
	gap := false
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			gap = true
			continue
		}
		if gap && b.Len() > 0 {
			b.WriteString(sep)
		}
		gap = false
		b.WriteRune(r)
	}
	return b.String()
}
