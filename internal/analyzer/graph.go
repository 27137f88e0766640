package analyzer

import (
	"path"
	"sort"
	"strings"
)

// sourceExtensions are extensions stripped when normalizing path-style
// imports into candidate module names.
var sourceExtensions = map[string]bool{
	".py": true, ".pyi": true,
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true,
	".go": true, ".java": true,
	".c": true, ".h": true, ".cpp": true, ".cc": true, ".hpp": true,
	".rb": true, ".php": true,
}

// resolveDependencies maps each file to the in-tree files its imports
// refer to. Matching is by candidate module name: the dotted relative
// path without extension, and the bare basename. Later files overwrite
// earlier candidates on collision. Imports that match nothing are
// dropped; a file never depends on itself.
func resolveDependencies(files []FileFacts) map[string][]string {
	candidates := make(map[string]string, len(files)*2)
	for _, f := range files {
		trimmed := strings.TrimSuffix(f.Path, path.Ext(f.Path))
		candidates[strings.ReplaceAll(trimmed, "/", ".")] = f.Path
		candidates[path.Base(trimmed)] = f.Path
	}

	deps := make(map[string][]string)
	for _, f := range files {
		fromDir := path.Dir(f.Path)
		for _, imp := range f.Imports {
			target, ok := lookupImport(candidates, imp, fromDir)
			if !ok || target == f.Path {
				continue
			}
			deps[f.Path] = appendUnique(deps[f.Path], target)
		}
	}
	return deps
}

// lookupImport resolves an import string to a candidate file. Dotted
// module names get an exact lookup (extension-stripped for includes);
// path-style imports are resolved against the importing file's directory
// and fall back to their basename.
func lookupImport(candidates map[string]string, imp, fromDir string) (string, bool) {
	if target, ok := candidates[imp]; ok {
		return target, true
	}

	normalized := imp
	if ext := path.Ext(normalized); sourceExtensions[ext] {
		normalized = strings.TrimSuffix(normalized, ext)
	}
	if !strings.Contains(normalized, "/") {
		target, ok := candidates[normalized]
		return target, ok
	}

	if strings.HasPrefix(normalized, "./") || strings.HasPrefix(normalized, "../") {
		normalized = path.Join(fromDir, normalized)
	}
	if target, ok := candidates[strings.ReplaceAll(normalized, "/", ".")]; ok {
		return target, true
	}
	if target, ok := candidates[path.Base(normalized)]; ok {
		return target, true
	}
	return "", false
}

// rankCoreModules ranks files by how many distinct files depend on them.
// Order is non-increasing by dependent count with first-seen tie-break;
// at most ten entries, never a file with zero dependents.
func rankCoreModules(files []FileFacts, deps map[string][]string) []CoreModule {
	counts := make(map[string]int)
	var order []string
	for _, f := range files {
		for _, target := range deps[f.Path] {
			if _, seen := counts[target]; !seen {
				order = append(order, target)
			}
			counts[target]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 10 {
		order = order[:10]
	}

	modules := make([]CoreModule, 0, len(order))
	for _, p := range order {
		modules = append(modules, CoreModule{Path: p, Dependents: counts[p]})
	}
	return modules
}
