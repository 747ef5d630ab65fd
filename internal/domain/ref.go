package domain

import "strings"

// IDFromRef resolves a weak reference to its id. Refs are either a bare id or
// a path ("users/abc", "/tickets/t1"); the id is the last path segment.
// Returns "" when the ref is empty or ends in a separator.
func IDFromRef(ref string) string {
	if ref == "" {
		return ""
	}

	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}

	return ref
}
