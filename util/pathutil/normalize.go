package pathutil

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizeForLookup returns a canonical form of path for comparisons: made
// absolute, symlinks resolved when the path exists, and lower-cased on
// case-insensitive systems.
func NormalizeForLookup(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	canonicalPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		canonicalPath = absPath
	}

	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		return strings.ToLower(canonicalPath), nil
	}
	return canonicalPath, nil
}

// Duplicates returns the paths that refer to a location already named
// earlier in paths, in order.
func Duplicates(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var dups []string
	for _, p := range paths {
		key, err := NormalizeForLookup(p)
		if err != nil {
			key = p
		}
		if seen[key] {
			dups = append(dups, p)
			continue
		}
		seen[key] = true
	}
	return dups
}
