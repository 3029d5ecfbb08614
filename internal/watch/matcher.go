package watch

import (
	"path"
	"path/filepath"
	"strings"
)

// matcher decides which paths belong to the watch set based on include
// and exclude glob patterns.
type matcher struct {
	include []string
	exclude []string
}

func newMatcher(include, exclude []string) *matcher {
	return &matcher{include: include, exclude: exclude}
}

// matches reports whether a file path is watched: not excluded, and
// matching at least one include pattern (an empty include list matches
// everything).
func (m *matcher) matches(fullPath string) bool {
	if m.excluded(fullPath) {
		return false
	}
	if len(m.include) == 0 {
		return true
	}
	name := filepath.Base(fullPath)
	for _, pattern := range m.include {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// excluded reports whether a path matches any exclude pattern. Patterns
// without a separator match either the base name (globs) or any path
// segment (literals); patterns with separators match segment runs.
func (m *matcher) excluded(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range m.exclude {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/") || strings.Contains(pattern, "\\")
		hasGlob := strings.ContainsAny(pattern, "*?[")

		if hasGlob {
			if hasPathSep {
				if matched, _ := path.Match(filepath.ToSlash(pattern), normalized); matched {
					return true
				}
			} else {
				if matched, _ := filepath.Match(pattern, name); matched {
					return true
				}
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, filepath.ToSlash(pattern)) {
				return true
			}
			continue
		}

		if pathHasSegment(normalized, pattern) {
			return true
		}
	}

	return false
}

func pathHasSegment(path, segment string) bool {
	if segment == "" {
		return false
	}
	for _, part := range splitPathSegments(path) {
		if part == segment {
			return true
		}
	}
	return false
}

func pathMatchesSegments(path, pattern string) bool {
	pathParts := splitPathSegments(path)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}

	return false
}

func splitPathSegments(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
