package source

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Default patterns to skip (in addition to .gitignore and Filters.Exclude).
var defaultIgnorePatterns = []string{
	".git/",
	"node_modules/",
	"vendor/",
	"dist/",
	"build/",
	"target/",
	"__pycache__/",
	".venv/",
	"venv/",
	".idea/",
	".tox/",
	".pytest_cache/",
	".mypy_cache/",
	"*.pyc",
	"*.pyo",
	".DS_Store",
	"Thumbs.db",
}

// Local fetches files by walking a directory tree.
type Local struct {
	root    string
	filters Filters
	logger  *log.Logger
}

// NewLocal returns a provider over the given directory root.
func NewLocal(root string, filters Filters, logger *log.Logger) *Local {
	return &Local{root: root, filters: filters, logger: logger}
}

// Fetch walks the root and returns every admitted file in lexical order.
func (l *Local) Fetch(ctx context.Context) ([]File, error) {
	info, err := os.Stat(l.root)
	if err != nil {
		return nil, fmt.Errorf("stat source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %q is not a directory", l.root)
	}

	matcher := buildMatcher(l.root, l.filters.Exclude)
	maxSize := l.filters.maxSize()

	var files []File
	err = filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		relPath, relErr := filepath.Rel(l.root, p)
		if relErr != nil {
			return relErr
		}

		if d.IsDir() {
			if relPath == "." {
				return nil
			}
			if d.Name() == ".git" || matcher.Match(splitPath(relPath), true) {
				return filepath.SkipDir
			}
			return nil
		}

		if matcher.Match(splitPath(relPath), false) {
			return nil
		}

		slashPath := filepath.ToSlash(relPath)
		if !l.filters.admitsPath(slashPath) {
			return nil
		}

		fi, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if fi.Size() > maxSize {
			l.logger.Debug("skipping oversized file", "path", slashPath, "size", fi.Size())
			return nil
		}

		content, readErr := os.ReadFile(p)
		if readErr != nil {
			l.logger.Debug("skipping unreadable file", "path", slashPath, "error", readErr)
			return nil
		}
		if bytes.IndexByte(content, 0) >= 0 {
			// Binary file, not analyzable text.
			return nil
		}

		files = append(files, newFile(relPath, content))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", l.root, err)
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	l.logger.Debug("local fetch complete", "root", l.root, "files", len(files))
	return files, nil
}

// buildMatcher combines the default skip list, the tree's .gitignore, and
// any user-supplied exclude patterns into one matcher.
func buildMatcher(root string, excludes []string) gitignore.Matcher {
	patterns := make([]gitignore.Pattern, 0, len(defaultIgnorePatterns)+len(excludes))
	for _, p := range defaultIgnorePatterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	patterns = append(patterns, loadGitignore(root)...)
	for _, p := range excludes {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	return gitignore.NewMatcher(patterns)
}

// loadGitignore parses .gitignore patterns from the tree root, if present.
func loadGitignore(root string) []gitignore.Pattern {
	content, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns
}

// splitPath splits a path into its components.
func splitPath(path string) []string {
	return strings.Split(path, string(filepath.Separator))
}
