package pipeline

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/lorekeep/lore/internal/reason"
)

// coreSelectStage asks the model which files best represent the
// codebase. The selection is bounded so the abstraction stage's prompt
// stays within a workable size even for large trees.
type coreSelectStage struct {
	svc    reason.Service
	logger *log.Logger
}

type coreSelection struct {
	CoreFiles []coreFileEntry `yaml:"core_files"`
}

// coreFileEntry mirrors one item of the selection response. Index is a
// pointer so an entry that omits it can be told apart from index 0 and
// skipped.
type coreFileEntry struct {
	Index      *int   `yaml:"index"`
	Path       string `yaml:"path"`
	Importance string `yaml:"importance"`
	Reason     string `yaml:"reason"`
}

func (s *coreSelectStage) Name() string    { return "select-core-files" }
func (s *coreSelectStage) Requires() []Key { return []Key{KeyProjectName, KeyFiles, KeyStructure} }
func (s *coreSelectStage) Provides() []Key { return []Key{KeyCoreFiles} }
func (s *coreSelectStage) Policy() Policy  { return lightRetry }

func (s *coreSelectStage) Run(ctx context.Context, rc *Context) error {
	limit := maxCoreFiles(len(rc.Files))
	resp, err := s.svc.Complete(ctx, coreSelectPrompt(rc.ProjectName, limit, rc.Files, rc.Structure, rc.Insights))
	if err != nil {
		return err
	}

	var sel coreSelection
	if err := reason.DecodeBlock(resp, &sel); err != nil {
		return err
	}

	seen := make(map[int]bool)
	var indices []int
	for _, entry := range sel.CoreFiles {
		if entry.Index == nil {
			continue
		}
		idx := *entry.Index
		if idx < 0 || idx >= len(rc.Files) || seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, idx)
		if len(indices) == limit {
			break
		}
	}
	if len(indices) == 0 {
		return errors.New("no valid core files selected")
	}

	rc.CoreFiles = indices
	s.logger.Info("core files selected", "selected", len(indices), "total", len(rc.Files))
	return nil
}

// maxCoreFiles caps the selection at 20 files or half the codebase,
// whichever is smaller, but never below one.
func maxCoreFiles(total int) int {
	limit := total / 2
	if limit > 20 {
		limit = 20
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}
