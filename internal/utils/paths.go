package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandGlobs takes user-provided paths and glob patterns and returns the
// matching regular files, deduplicated, relative patterns resolved against
// baseDir. A literal path that does not exist is an error; a glob that
// matches nothing is not.
func ExpandGlobs(patterns []string, baseDir string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		resolved, err := expandPattern(pattern, baseDir)
		if err != nil {
			return nil, err
		}
		for _, f := range resolved {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	return files, nil
}

func expandPattern(pattern, baseDir string) ([]string, error) {
	absPattern := pattern
	if !filepath.IsAbs(pattern) {
		absPattern = filepath.Join(baseDir, pattern)
	}

	// Globs go through doublestar for ** support.
	if strings.ContainsAny(pattern, "*?[") {
		matches, err := doublestar.FilepathGlob(absPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		var files []string
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			files = append(files, m)
		}
		return files, nil
	}

	info, err := os.Stat(absPattern)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", pattern)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory (use a glob like %s to select files inside it)", pattern, filepath.Join(pattern, "*"))
	}

	return []string{absPattern}, nil
}

// FormatPaths renders a list of paths as an indented block for final
// command messages.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, p := range paths {
		b.WriteString("    " + p + "\n")
	}
	return b.String()
}
