package util

import (
	"path/filepath"
	"strings"
)

// MatchAny reports whether any pattern matches the slash-separated relative
// path, either as a whole or against one of its segments (so a bare ".git"
// or "*.tmp" pattern applies anywhere in the tree).
func MatchAny(patterns []string, relPath string) bool {
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, relPath); err == nil && matched {
			return true
		}

		for _, part := range strings.Split(relPath, "/") {
			if matched, err := filepath.Match(pattern, part); err == nil && matched {
				return true
			}
		}
	}

	return false
}

// Selected applies the include/exclude pattern pair: exclusion wins, and an
// empty include set selects everything.
func Selected(relPath string, include, exclude []string) bool {
	if MatchAny(exclude, relPath) {
		return false
	}

	if len(include) == 0 {
		return true
	}

	return MatchAny(include, relPath)
}
