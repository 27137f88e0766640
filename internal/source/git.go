package source

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Git fetches files by shallow-cloning a remote repository into a temp
// directory and walking the clone. The clone is removed after the fetch.
type Git struct {
	url     string
	ref     string
	token   string
	filters Filters
	logger  *log.Logger
}

// NewGit returns a provider for the given repository URL. ref selects a
// branch or tag (empty means the remote default); token enables HTTP basic
// auth for private repositories.
func NewGit(url, ref, token string, filters Filters, logger *log.Logger) *Git {
	return &Git{url: url, ref: ref, token: token, filters: filters, logger: logger}
}

// Fetch clones the repository and returns its admitted files.
func (g *Git) Fetch(ctx context.Context) ([]File, error) {
	tmp, err := os.MkdirTemp("", "lore-clone-*")
	if err != nil {
		return nil, fmt.Errorf("create clone dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	opts := &git.CloneOptions{
		URL:   g.url,
		Depth: 1,
	}
	if g.ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(g.ref)
		opts.SingleBranch = true
	}
	if g.token != "" {
		opts.Auth = &githttp.BasicAuth{Username: "git", Password: g.token}
	}

	g.logger.Debug("cloning repository", "url", g.url, "ref", g.ref)
	if _, err := git.PlainCloneContext(ctx, tmp, false, opts); err != nil {
		return nil, fmt.Errorf("clone %s: %w", g.url, err)
	}

	return NewLocal(tmp, g.filters, g.logger).Fetch(ctx)
}
