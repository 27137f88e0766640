package analyzer

import (
	"fmt"
	"sort"
	"strings"
)

// FileFacts holds the structural facts extracted from one file.
type FileFacts struct {
	// Path is the file's slash-separated relative path.
	Path string `json:"path"`

	// Language is the detected language, or "unknown".
	Language string `json:"language"`

	// Size is the content length in bytes.
	Size int `json:"size"`

	// Lines is the line count.
	Lines int `json:"lines"`

	// Imports holds imported module names, deduplicated in order of
	// first appearance.
	Imports []string `json:"imports,omitempty"`

	// Exports holds exported symbol names or export markers.
	Exports []string `json:"exports,omitempty"`

	// Functions holds declared function names.
	Functions []string `json:"functions,omitempty"`

	// Types holds declared class/type names.
	Types []string `json:"types,omitempty"`

	// HasEntryMarker reports a language-level entry marker (a main
	// function or equivalent).
	HasEntryMarker bool `json:"has_entry_marker,omitempty"`

	// IsConfig reports whether the file looks like configuration.
	IsConfig bool `json:"is_config,omitempty"`
}

// CoreModule is one highly-depended-upon file.
type CoreModule struct {
	Path       string `json:"path"`
	Dependents int    `json:"dependents"`
}

// DirCount is the number of files directly inside one directory.
type DirCount struct {
	Dir   string `json:"dir"`
	Files int    `json:"files"`
}

// PatternFlags are coarse architectural signals derived from directory
// names alone.
type PatternFlags struct {
	MVC      bool `json:"mvc"`
	Layered  bool `json:"layered"`
	HasTests bool `json:"has_tests"`
	Modular  bool `json:"modular"`
}

// Report is the complete structural analysis of one file set. Re-running
// the analyzer on identical input produces a deeply equal Report.
type Report struct {
	// Files holds per-file facts in input order.
	Files []FileFacts `json:"files"`

	// FileTypes counts files per extension (empty string for none).
	FileTypes map[string]int `json:"file_types"`

	// Dependencies maps a file to the files it imports. No self-edges;
	// every target is a file present in the input set.
	Dependencies map[string][]string `json:"dependencies"`

	// EntryPoints lists likely entry point files in input order.
	EntryPoints []string `json:"entry_points"`

	// CoreModules ranks the most depended-upon files, at most ten,
	// dependent counts non-increasing.
	CoreModules []CoreModule `json:"core_modules"`

	// Directories counts files per directory, root-level files excluded,
	// sorted by directory name.
	Directories []DirCount `json:"directories"`

	// MaxDepth is the deepest path's segment count.
	MaxDepth int `json:"max_depth"`

	// CommonDirs lists directories holding more than three files.
	CommonDirs []string `json:"common_dirs"`

	// Patterns holds the detected architectural signals.
	Patterns PatternFlags `json:"patterns"`
}

// Summarize renders the report as compact deterministic text for use in
// reasoning prompts.
func (r *Report) Summarize() string {
	var b strings.Builder

	totalLines := 0
	for _, f := range r.Files {
		totalLines += f.Lines
	}
	fmt.Fprintf(&b, "Files: %d (%d lines total)\n", len(r.Files), totalLines)

	if len(r.FileTypes) > 0 {
		type extCount struct {
			ext   string
			count int
		}
		counts := make([]extCount, 0, len(r.FileTypes))
		for ext, n := range r.FileTypes {
			counts = append(counts, extCount{ext, n})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].count != counts[j].count {
				return counts[i].count > counts[j].count
			}
			return counts[i].ext < counts[j].ext
		})
		parts := make([]string, 0, len(counts))
		for _, c := range counts {
			ext := c.ext
			if ext == "" {
				ext = "(none)"
			}
			parts = append(parts, fmt.Sprintf("%s=%d", ext, c.count))
		}
		fmt.Fprintf(&b, "File types: %s\n", strings.Join(parts, ", "))
	}

	fmt.Fprintf(&b, "Directory depth: %d\n", r.MaxDepth)
	if len(r.CommonDirs) > 0 {
		fmt.Fprintf(&b, "Main directories: %s\n", strings.Join(r.CommonDirs, ", "))
	}
	if len(r.EntryPoints) > 0 {
		fmt.Fprintf(&b, "Entry points: %s\n", strings.Join(r.EntryPoints, ", "))
	}
	if len(r.CoreModules) > 0 {
		b.WriteString("Core modules (by dependents):\n")
		for _, m := range r.CoreModules {
			fmt.Fprintf(&b, "  %s (%d)\n", m.Path, m.Dependents)
		}
	}

	var patterns []string
	if r.Patterns.MVC {
		patterns = append(patterns, "mvc")
	}
	if r.Patterns.Layered {
		patterns = append(patterns, "layered")
	}
	if r.Patterns.HasTests {
		patterns = append(patterns, "has_tests")
	}
	if r.Patterns.Modular {
		patterns = append(patterns, "modular")
	}
	if len(patterns) > 0 {
		fmt.Fprintf(&b, "Detected patterns: %s\n", strings.Join(patterns, ", "))
	}

	withImports, withExports := 0, 0
	for _, f := range r.Files {
		if len(f.Imports) > 0 {
			withImports++
		}
		if len(f.Exports) > 0 {
			withExports++
		}
	}
	fmt.Fprintf(&b, "Files with imports: %d, with exports: %d\n", withImports, withExports)

	return b.String()
}
