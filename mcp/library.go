package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lorekeep/lore/internal/render"
)

const readCacheSize = 64

// Project describes one generated document set.
type Project struct {
	Name      string
	Documents int
	Modified  time.Time
}

// SearchHit is one document matching a search query.
type SearchHit struct {
	Document string
	Hits     int
	Snippet  string
}

// Library reads generated document sets from the output root. Document
// contents sit behind an LRU so repeated agent reads stay off disk;
// Invalidate drops the cache after the sets change.
type Library struct {
	root   string
	logger *log.Logger
	cache  *lru.Cache[string, string]
}

// NewLibrary returns a library over the given output root. The root may
// not exist yet; an empty listing is not an error.
func NewLibrary(root string, logger *log.Logger) *Library {
	// Never fails for sizes > 0.
	cache, _ := lru.New[string, string](readCacheSize)
	return &Library{root: root, logger: logger, cache: cache}
}

// Root returns the output root the library serves.
func (l *Library) Root() string {
	return l.root
}

// Projects lists the document sets under the root in directory order.
func (l *Library) Projects(ctx context.Context) ([]Project, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading output root: %w", err)
	}

	var projects []Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		docs, err := l.Documents(ctx, entry.Name())
		if err != nil || len(docs) == 0 {
			continue
		}

		var modified time.Time
		if info, err := entry.Info(); err == nil {
			modified = info.ModTime()
		}
		projects = append(projects, Project{
			Name:      entry.Name(),
			Documents: len(docs),
			Modified:  modified,
		})
	}

	return projects, nil
}

var chapterFilePattern = regexp.MustCompile(`^\d{2,}_.+\.md$`)

// Documents lists one set's files in reading order: the index first,
// then chapters by number, then the project overview.
func (l *Library) Documents(ctx context.Context, project string) ([]string, error) {
	dir, err := l.projectDir(project)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project %q not found", project)
		}
		return nil, fmt.Errorf("reading project %s: %w", project, err)
	}

	var docs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		docs = append(docs, entry.Name())
	}

	// ReadDir returns names sorted, so chapters keep their numeric order
	// within the same rank.
	sort.SliceStable(docs, func(i, j int) bool {
		return docRank(docs[i]) < docRank(docs[j])
	})
	return docs, nil
}

// Read returns one document's markdown, from cache when possible.
func (l *Library) Read(ctx context.Context, project, document string) (string, error) {
	dir, err := l.projectDir(project)
	if err != nil {
		return "", err
	}
	if !validDocName(document) {
		return "", fmt.Errorf("document %q not found in %q", document, project)
	}

	key := project + "/" + document
	if text, ok := l.cache.Get(key); ok {
		return text, nil
	}

	content, err := os.ReadFile(filepath.Join(dir, document))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("document %q not found in %q", document, project)
		}
		return "", fmt.Errorf("reading %s: %w", document, err)
	}

	text := string(content)
	l.cache.Add(key, text)
	return text, nil
}

// Search scans one set's documents for the query tokens and ranks the
// matches by hit count. Ties break on document name so results are
// stable across runs.
func (l *Library) Search(ctx context.Context, project, query string, limit int) ([]SearchHit, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	docs, err := l.Documents(ctx, project)
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	for _, doc := range docs {
		content, err := l.Read(ctx, project, doc)
		if err != nil {
			continue
		}
		count := countHits(content, tokens)
		if count == 0 {
			continue
		}
		hits = append(hits, SearchHit{
			Document: doc,
			Hits:     count,
			Snippet:  snippetFor(content, tokens),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Hits != hits[j].Hits {
			return hits[i].Hits > hits[j].Hits
		}
		return hits[i].Document < hits[j].Document
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Invalidate drops all cached document contents.
func (l *Library) Invalidate() {
	l.cache.Purge()
	l.logger.Debug("document cache invalidated")
}

// projectDir validates a client-supplied project name and resolves its
// directory. Generated set directories only ever carry sanitized names,
// so anything else (path separators included) is rejected before the
// filesystem is touched.
func (l *Library) projectDir(project string) (string, error) {
	if project == "" || project != render.SanitizeName(project) {
		return "", fmt.Errorf("project %q not found", project)
	}
	return filepath.Join(l.root, project), nil
}

// validDocName admits the filenames the renderer produces and nothing
// that could escape the set directory.
func validDocName(document string) bool {
	return strings.HasSuffix(document, ".md") && !strings.ContainsAny(document, `/\`)
}

// docRank orders a set's documents for reading: index, chapters,
// overview, then anything else.
func docRank(name string) int {
	switch {
	case name == "index.md":
		return 0
	case chapterFilePattern.MatchString(name):
		return 1
	case name == "project_overview.md":
		return 2
	default:
		return 3
	}
}
