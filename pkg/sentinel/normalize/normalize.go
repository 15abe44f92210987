// Package normalize maps raw topic strings to canonical comparison keys.
//
// Two suggestions refer to the same candidate iff their keys match
// exactly. There is no fuzzy or semantic matching at this layer.
package normalize

import "strings"

// Key returns the canonical comparison key for a topic name: leading and
// trailing whitespace trimmed, internal whitespace runs collapsed to a
// single space, case-folded.
func Key(s string) string {
	return strings.ToLower(Clean(s))
}

// Clean trims and collapses whitespace while preserving the original
// casing. Used for display names, where the first-seen casing wins.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
