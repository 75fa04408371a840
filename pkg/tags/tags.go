// Package tags turns raw user input (comma lists, free text) into canonical
// tag tokens. All functions are total over any input string.
package tags

import "strings"

// Normalize splits a comma-separated list, trims each segment and drops
// empty ones. Order is preserved and duplicates are kept; dedup is the
// caller's responsibility.
func Normalize(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Canonical lowercases, trims and collapses internal whitespace runs to a
// single hyphen. This is the one canonical form stored on prompts and
// matched by the tag filter.
func Canonical(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(raw))), "-")
}

// CanonicalAll applies Canonical to every element of Normalize(raw) and
// drops segments that collapse to nothing.
func CanonicalAll(raw string) []string {
	norm := Normalize(raw)
	out := make([]string, 0, len(norm))
	for _, t := range norm {
		if c := Canonical(t); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// CanonicalSlice canonicalizes an already-split tag list, preserving order
// and keeping duplicates.
func CanonicalSlice(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if c := Canonical(t); c != "" {
			out = append(out, c)
		}
	}
	return out
}
