package analyzer

import (
	"path"
	"sort"
	"strings"
)

// directoryShape derives per-directory file counts (root-level files
// excluded), the maximum path depth in segments, and the directories
// holding more than three files. Directory order is lexical.
func directoryShape(files []FileFacts) ([]DirCount, int, []string) {
	counts := make(map[string]int)
	maxDepth := 0
	for _, f := range files {
		if depth := strings.Count(f.Path, "/") + 1; depth > maxDepth {
			maxDepth = depth
		}
		if dir := path.Dir(f.Path); dir != "." {
			counts[dir]++
		}
	}

	names := make([]string, 0, len(counts))
	for dir := range counts {
		names = append(names, dir)
	}
	sort.Strings(names)

	dirs := make([]DirCount, 0, len(names))
	var common []string
	for _, dir := range names {
		dirs = append(dirs, DirCount{Dir: dir, Files: counts[dir]})
		if counts[dir] > 3 {
			common = append(common, dir)
		}
	}
	return dirs, maxDepth, common
}

// detectPatterns derives architectural signals from directory names.
func detectPatterns(dirs []DirCount) PatternFlags {
	containsAny := func(markers ...string) bool {
		for _, d := range dirs {
			lower := strings.ToLower(d.Dir)
			for _, marker := range markers {
				if strings.Contains(lower, marker) {
					return true
				}
			}
		}
		return false
	}

	return PatternFlags{
		MVC:      containsAny("models", "views", "controllers"),
		Layered:  containsAny("service", "repository", "controller", "entity"),
		HasTests: containsAny("test"),
		Modular:  len(dirs) > 3,
	}
}
