// Package naming derives short display names for watched paths.
package naming

import (
	"path/filepath"
	"strconv"
	"strings"
)

// rootName names a path that has no segments at all, such as "/".
const rootName = "root"

// NameFor returns the last segment of path with trailing separators stripped,
// or "root" when path has no segments.
func NameFor(path string) string {
	segments := split(path)
	if len(segments) == 0 {
		return rootName
	}
	return segments[len(segments)-1]
}

// NamesFor returns one unique name per path, in input order.
//
// A path whose leaf name is already taken walks up its own parents and uses
// the first parent segment that is still free, so /a/x/photos and
// /b/y/photos become "photos" and "y". If every segment is taken the leaf
// name gets a numeric suffix ("photos-2", "photos-3", ...).
func NamesFor(paths []string) []string {
	names := make([]string, 0, len(paths))
	taken := make(map[string]bool, len(paths))

	for _, path := range paths {
		name := uniqueName(split(path), taken)
		taken[name] = true
		names = append(names, name)
	}
	return names
}

func uniqueName(segments []string, taken map[string]bool) string {
	for i := len(segments) - 1; i >= 0; i-- {
		if !taken[segments[i]] {
			return segments[i]
		}
	}

	base := rootName
	if len(segments) > 0 {
		base = segments[len(segments)-1]
	}
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}

func split(path string) []string {
	path = filepath.ToSlash(path)
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}
