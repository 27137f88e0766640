// Package source fetches codebase snapshots for documentation runs.
//
// A Provider returns the complete, filtered set of files for one run. The
// local provider walks a directory tree; the git provider clones a remote
// repository into a temporary directory and walks the clone. Both honor
// the same Filters and produce slash-separated relative paths in lexical
// walk order, which downstream packages rely on for determinism.
package source

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// ErrNoFiles is returned when a fetch finds no files after filtering.
// An empty snapshot cannot be analyzed, so callers treat this as fatal.
var ErrNoFiles = errors.New("no files matched after filtering")

// DefaultMaxFileSize is the per-file size cutoff when Filters leaves it unset.
const DefaultMaxFileSize int64 = 100_000

// File is one fetched source file. Files are immutable after fetch and are
// carried as an ordered slice; order is discovery order.
type File struct {
	// Path is the slash-separated path relative to the fetched root.
	Path string `json:"path"`

	// Content is the full file text.
	Content string `json:"-"`

	// Size is the content length in bytes.
	Size int `json:"size"`

	// Lines is the number of newline-terminated lines.
	Lines int `json:"lines"`

	// Language is the detected language, or "unknown".
	Language string `json:"language"`
}

// Provider fetches the file set for one documentation run.
type Provider interface {
	Fetch(ctx context.Context) ([]File, error)
}

// Filters controls which files a provider admits.
type Filters struct {
	// Include holds glob patterns matched against the relative path or the
	// basename. Empty means every supported file is admitted.
	Include []string

	// Exclude holds gitignore-style patterns applied in addition to the
	// tree's own .gitignore and the built-in skip list.
	Exclude []string

	// MaxFileSize is the per-file byte cutoff; zero selects the default.
	MaxFileSize int64
}

func (f Filters) maxSize() int64 {
	if f.MaxFileSize > 0 {
		return f.MaxFileSize
	}
	return DefaultMaxFileSize
}

// admitsPath reports whether the include patterns admit relPath.
func (f Filters) admitsPath(relPath string) bool {
	if len(f.Include) == 0 {
		return true
	}
	base := path.Base(relPath)
	for _, pattern := range f.Include {
		if ok, err := path.Match(pattern, relPath); err == nil && ok {
			return true
		}
		if ok, err := path.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// languageByExt maps file extensions to language names.
var languageByExt = map[string]string{
	".py":    "python",
	".pyi":   "python",
	".pyx":   "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".go":    "go",
	".java":  "java",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".cxx":   "cpp",
	".rs":    "rust",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
}

// DetectLanguage returns the language for a filename, or "unknown".
func DetectLanguage(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}
	return "unknown"
}

// DeriveName derives a project name from a fetch target: the last segment
// of a repository URL minus any .git suffix, or the basename of a local
// directory path.
func DeriveName(target string) string {
	trimmed := strings.TrimRight(target, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	name := trimmed
	if idx := strings.LastIndexAny(trimmed, "/\\"); idx >= 0 {
		name = trimmed[idx+1:]
	}
	if name == "" || name == "." {
		if abs, err := filepath.Abs(target); err == nil {
			name = filepath.Base(abs)
		}
	}
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "project"
	}
	return name
}

func newFile(relPath string, content []byte) File {
	text := string(content)
	lines := strings.Count(text, "\n")
	if len(text) > 0 && !strings.HasSuffix(text, "\n") {
		lines++
	}
	return File{
		Path:     filepath.ToSlash(relPath),
		Content:  text,
		Size:     len(content),
		Lines:    lines,
		Language: DetectLanguage(relPath),
	}
}
