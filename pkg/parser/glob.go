package parser

import (
	"fmt"
	"path/filepath"
	"sort"
)

// ExpandDumpPaths expands file paths and glob patterns into a deduplicated,
// sorted list. Patterns that match nothing are kept as literal paths so the
// caller reports a proper file-not-found error. "-" (stdin) is passed
// through and always ordered first.
func ExpandDumpPaths(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	stdin := false

	for _, pattern := range patterns {
		if pattern == StdinPath {
			stdin = true
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			matches = []string{pattern}
		}

		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				result = append(result, match)
			}
		}
	}

	sort.Strings(result)

	if stdin {
		result = append([]string{StdinPath}, result...)
	}
	return result, nil
}
