package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/lorekeep/lore/internal/source"
)

// fetchStage pulls the file snapshot from the configured provider and
// settles the project name. Fetch failures are not retried: a missing
// directory or unreachable repository will not fix itself in twenty
// seconds.
type fetchStage struct {
	provider source.Provider
	logger   *log.Logger
}

func (s *fetchStage) Name() string    { return "fetch" }
func (s *fetchStage) Requires() []Key { return nil }
func (s *fetchStage) Provides() []Key { return []Key{KeyProjectName, KeyFiles} }
func (s *fetchStage) Policy() Policy  { return runOnce }

func (s *fetchStage) Run(ctx context.Context, rc *Context) error {
	s.logger.Info("fetching files", "source", rc.Source)
	files, err := s.provider.Fetch(ctx)
	if err != nil {
		return err
	}
	rc.Files = files
	if rc.ProjectName == "" {
		rc.ProjectName = source.DeriveName(rc.Source)
	}
	s.logger.Info("fetched files", "project", rc.ProjectName, "files", len(files))
	return nil
}
