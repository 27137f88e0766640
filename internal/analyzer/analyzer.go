// Package analyzer derives structural facts from a codebase snapshot.
//
// Analysis is purely static: no file is executed, compiled, or
// type-checked. Extraction is best-effort per language (precise parsing
// for Go with a heuristic fallback, regex heuristics elsewhere) and never
// fails on malformed source. The result is deterministic for a given
// input, which downstream prompt construction relies on.
package analyzer

import (
	"path"
	"strings"

	"github.com/lorekeep/lore/internal/source"
)

// entryBasenames are filenames treated as entry points regardless of
// content.
var entryBasenames = map[string]bool{
	"main.py":   true,
	"app.py":    true,
	"server.py": true,
	"index.js":  true,
	"main.go":   true,
	"main.java": true,
}

// initBasenames are package-initializer files that only count as entry
// points when they carry real content.
var initBasenames = map[string]bool{
	"setup.py":    true,
	"__init__.py": true,
}

// configNameIndicators mark configuration files by basename substring.
var configNameIndicators = []string{
	"config", "settings", ".env", "package.json", "requirements.txt",
	"go.mod", "cargo.toml", "pom.xml", "makefile", "dockerfile",
}

// configExtensions mark configuration files by extension.
var configExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".toml": true,
	".ini":  true,
	".cfg":  true,
}

// Analyze builds the structural report for a file set. It is pure and
// never returns an error: unparseable files simply contribute fewer facts.
func Analyze(files []source.File) *Report {
	report := &Report{
		FileTypes:    make(map[string]int, 8),
		Dependencies: make(map[string][]string),
	}

	report.Files = make([]FileFacts, 0, len(files))
	for _, f := range files {
		report.Files = append(report.Files, extractFacts(f))
		report.FileTypes[path.Ext(f.Path)]++
	}

	report.Dependencies = resolveDependencies(report.Files)
	report.EntryPoints = identifyEntryPoints(report.Files)
	report.CoreModules = rankCoreModules(report.Files, report.Dependencies)

	report.Directories, report.MaxDepth, report.CommonDirs = directoryShape(report.Files)
	report.Patterns = detectPatterns(report.Directories)

	return report
}

// extractFacts analyzes a single file, dispatching on language.
func extractFacts(f source.File) FileFacts {
	facts := FileFacts{
		Path:     f.Path,
		Language: f.Language,
		Size:     f.Size,
		Lines:    f.Lines,
	}

	switch f.Language {
	case "python":
		analyzePython(f.Content, &facts)
	case "javascript", "typescript":
		analyzeJSTS(f.Content, &facts)
	case "go":
		analyzeGo(f.Content, &facts)
	case "java":
		analyzeJava(f.Content, &facts)
	case "c", "cpp":
		analyzeCFamily(f.Content, &facts)
	}

	facts.IsConfig = isConfigFile(f.Path)
	return facts
}

// isConfigFile reports whether a path looks like configuration, judged by
// basename substrings and extension.
func isConfigFile(filePath string) bool {
	base := strings.ToLower(path.Base(filePath))
	for _, indicator := range configNameIndicators {
		if strings.Contains(base, indicator) {
			return true
		}
	}
	return configExtensions[path.Ext(base)]
}

// identifyEntryPoints returns likely entry points in input order.
func identifyEntryPoints(files []FileFacts) []string {
	var entries []string
	for _, f := range files {
		base := strings.ToLower(path.Base(f.Path))
		switch {
		case f.HasEntryMarker:
			entries = append(entries, f.Path)
		case entryBasenames[base]:
			entries = append(entries, f.Path)
		case initBasenames[base] && f.Size > 100:
			entries = append(entries, f.Path)
		}
	}
	return entries
}

// appendUnique appends name to list unless empty or already present.
func appendUnique(list []string, name string) []string {
	if name == "" {
		return list
	}
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}
