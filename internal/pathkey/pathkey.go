// Package pathkey does segment arithmetic on slash-delimited parameter names.
//
// Names start with "/", so the first segment of "/prod/api/KEY" is the empty
// string and Depth reports 4. Levels and segment indexes below follow that
// convention: level 1 of "/prod/api/KEY" is "/prod".
package pathkey

import "strings"

// Separator between name segments
const Separator = "/"

// Wildcard is the cosmetic suffix a template may end with
const Wildcard = "/*"

// Segments splits a name on the separator
func Segments(name string) []string {
	return strings.Split(name, Separator)
}

// Depth is the number of segments, i.e. the slash count plus one
func Depth(name string) int {
	return strings.Count(name, Separator) + 1
}

// Level truncates name to its first level+1 segments.
// A level beyond the name's depth returns the whole name.
func Level(name string, level int) string {
	if level < 0 {
		return ""
	}
	parts := Segments(name)
	if level+1 >= len(parts) {
		return name
	}
	return strings.Join(parts[:level+1], Separator)
}

// Segment returns the segment at index, false when the name is too short
func Segment(name string, index int) (string, bool) {
	parts := Segments(name)
	if index < 0 || index >= len(parts) {
		return "", false
	}
	return parts[index], true
}

// HasPrefix reports whether name lies strictly below prefix.
// "/dev/api/KEY" is under "/dev/api" but "/dev/apiv2/KEY" is not.
func HasPrefix(name, prefix string) bool {
	return strings.HasPrefix(name, prefix+Separator)
}

// ReplacePrefix swaps the leading prefix of name for another one
func ReplacePrefix(name, from, to string) (string, bool) {
	if !HasPrefix(name, from) {
		return name, false
	}
	return to + name[len(from):], true
}

// Local drops the first n segments and returns the rest
func Local(name string, n int) string {
	parts := Segments(name)
	if n >= len(parts) {
		return ""
	}
	if n < 0 {
		n = 0
	}
	return strings.Join(parts[n:], Separator)
}

// Join appends a relative key to a prefix
func Join(prefix, local string) string {
	if local == "" {
		return prefix
	}
	return strings.TrimSuffix(prefix, Separator) + Separator + strings.TrimPrefix(local, Separator)
}

// TrimWildcard strips a trailing "/*"
func TrimWildcard(s string) string {
	return strings.TrimSuffix(s, Wildcard)
}
